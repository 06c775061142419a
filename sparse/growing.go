package sparse

import (
	"sort"
	"sync"
	"sync/atomic"
)

// A GrowingMatrix is a sparse count matrix that grows to
// fit whatever cells are written.
//
// A GrowingMatrix is safe for concurrent use.
// Writers to different rows never contend; the matrix
// lock is only taken exclusively to add rows.
type GrowingMatrix struct {
	mu   sync.RWMutex
	rows []*growingRow
	cols atomic.Int64
}

type growingRow struct {
	mu    sync.Mutex
	cells map[int]int64
}

// NewGrowingMatrix creates an empty GrowingMatrix.
func NewGrowingMatrix() *GrowingMatrix {
	return &GrowingMatrix{}
}

// AddAndGet adds delta to the cell and returns the new
// value.
func (g *GrowingMatrix) AddAndGet(row, col int, delta int64) int64 {
	r := g.row(row)
	r.mu.Lock()
	r.cells[col] += delta
	val := r.cells[col]
	r.mu.Unlock()

	for {
		cols := g.cols.Load()
		if int64(col) < cols || g.cols.CompareAndSwap(cols, int64(col)+1) {
			break
		}
	}
	return val
}

// Get reads a cell.
func (g *GrowingMatrix) Get(row, col int) int64 {
	r := g.existingRow(row)
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cells[col]
}

// NumRows returns one more than the largest row written.
func (g *GrowingMatrix) NumRows() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rows)
}

// NumCols returns one more than the largest column
// written.
func (g *GrowingMatrix) NumCols() int {
	return int(g.cols.Load())
}

// RowCounts returns the non-zero cells of a row, sorted by
// column.
func (g *GrowingMatrix) RowCounts(row int) (cols []int, counts []int64) {
	r := g.existingRow(row)
	if r == nil {
		return nil, nil
	}
	r.mu.Lock()
	for col, count := range r.cells {
		if count != 0 {
			cols = append(cols, col)
		}
	}
	sort.Ints(cols)
	counts = make([]int64, len(cols))
	for i, col := range cols {
		counts[i] = r.cells[col]
	}
	r.mu.Unlock()
	return cols, counts
}

// RowVector returns a copy of a row as a Vector.
func (g *GrowingMatrix) RowVector(row int) (*Vector, error) {
	if row < 0 {
		return nil, ErrIndexOutOfRange
	}
	cols, counts := g.RowCounts(row)
	res := &Vector{Len: g.NumCols()}
	if len(cols) > 0 {
		res.Indices = cols
		res.Values = make([]float32, len(counts))
		for i, c := range counts {
			res.Values[i] = float32(c)
		}
	}
	return res, nil
}

func (g *GrowingMatrix) existingRow(row int) *growingRow {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if row < 0 || row >= len(g.rows) {
		return nil
	}
	return g.rows[row]
}

func (g *GrowingMatrix) row(row int) *growingRow {
	if r := g.existingRow(row); r != nil {
		return r
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for len(g.rows) <= row {
		g.rows = append(g.rows, &growingRow{cells: map[int]int64{}})
	}
	return g.rows[row]
}
