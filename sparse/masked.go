package sparse

// A RowMasked is a view of a subset of another matrix's
// rows.
// Reads are translated to the backing matrix; no row data
// is copied.
type RowMasked struct {
	m    RowReader
	rows []int
}

// NewRowMasked creates a view whose i-th row is row
// rows[i] of m.
//
// The rows slice is retained and must not be modified
// while the view is in use.
func NewRowMasked(m RowReader, rows []int) *RowMasked {
	return &RowMasked{m: m, rows: rows}
}

// NumRows returns the number of rows in the view.
func (r *RowMasked) NumRows() int {
	return len(r.rows)
}

// NumCols returns the number of columns of the backing
// matrix.
func (r *RowMasked) NumCols() int {
	return r.m.NumCols()
}

// RowVector reads the i-th row of the view.
func (r *RowMasked) RowVector(i int) (*Vector, error) {
	if i < 0 || i >= len(r.rows) {
		return nil, ErrIndexOutOfRange
	}
	return r.m.RowVector(r.rows[i])
}

// PhysicalRow returns the backing row of the i-th row of
// the view.
func (r *RowMasked) PhysicalRow(i int) int {
	return r.rows[i]
}
