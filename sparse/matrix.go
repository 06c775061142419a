package sparse

import (
	"errors"
	"fmt"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

var ErrIndexOutOfRange = errors.New("sparse: row index out of range")

func init() {
	serializer.RegisterTypedDeserializer((&Matrix{}).SerializerType(),
		DeserializeMatrix)
}

// A RowReader is a matrix whose rows can be read as
// sparse vectors.
//
// Callers must not modify the returned vectors.
type RowReader interface {
	NumRows() int
	NumCols() int
	RowVector(row int) (*Vector, error)
}

// A Matrix is an in-memory sparse matrix.
type Matrix struct {
	Rows []*Vector
}

// DeserializeMatrix deserializes a Matrix.
func DeserializeMatrix(d []byte) (mat *Matrix, err error) {
	defer essentials.AddCtxTo("deserialize Matrix", &err)
	rows, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, err
	}
	var res Matrix
	for _, row := range rows {
		if obj, ok := row.(*Vector); ok {
			res.Rows = append(res.Rows, obj)
		} else {
			return nil, fmt.Errorf("unexpected type: %T", row)
		}
	}
	return &res, nil
}

// NewMatrix creates a zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	res := &Matrix{Rows: make([]*Vector, rows)}
	for i := range res.Rows {
		res.Rows[i] = &Vector{Len: cols}
	}
	return res
}

// Set sets an entry in the matrix.
func (m *Matrix) Set(row, col int, val float32) {
	m.Rows[row].Set(col, val)
}

// NumRows returns the number of rows.
func (m *Matrix) NumRows() int {
	return len(m.Rows)
}

// NumCols returns the number of columns.
func (m *Matrix) NumCols() int {
	if len(m.Rows) == 0 {
		return 0
	}
	return m.Rows[0].Len
}

// RowVector returns a row of the matrix.
func (m *Matrix) RowVector(row int) (*Vector, error) {
	if row < 0 || row >= len(m.Rows) {
		return nil, ErrIndexOutOfRange
	}
	return m.Rows[row], nil
}

// SerializerType returns the unique ID used to serialize
// a Matrix with the serializer package.
func (m *Matrix) SerializerType() string {
	return "github.com/unixpickle/wordsense/sparse.Matrix"
}

// Serialize serializes the Matrix.
func (m *Matrix) Serialize() ([]byte, error) {
	var res []serializer.Serializer
	for _, obj := range m.Rows {
		res = append(res, obj)
	}
	return serializer.SerializeSlice(res)
}
