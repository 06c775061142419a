package diskmat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/unixpickle/essentials"

	"github.com/unixpickle/wordsense/sparse"
)

// A FileStore keeps rows in a single file.
//
// Each row is stored as a little-endian uint32 count of
// entries followed by (uint32 column, float32 value)
// pairs. Row offsets are kept in memory.
type FileStore struct {
	cols  int
	cache *rowCache

	mu      sync.Mutex
	file    *os.File
	w       *bufio.Writer
	offsets []int64
	size    int64
	sealed  bool
	closed  bool
}

// NewFileStore creates an empty FileStore in dir.
func NewFileStore(dir string, cols, cacheRows int) (*FileStore, error) {
	cache, err := newRowCache(cacheRows)
	if err != nil {
		return nil, essentials.AddCtx("create file store", err)
	}
	f, err := os.CreateTemp(dir, "wordsense-contexts-*.mat")
	if err != nil {
		return nil, essentials.AddCtx("create file store", err)
	}
	return &FileStore{
		cols:    cols,
		cache:   cache,
		file:    f,
		w:       bufio.NewWriterSize(f, 1<<16),
		offsets: []int64{0},
	}, nil
}

// Path returns the location of the backing file.
func (f *FileStore) Path() string {
	return f.file.Name()
}

// Append writes the next row.
func (f *FileStore) Append(row *sparse.Vector) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sealed {
		return 0, ErrSealed
	}

	buf := make([]byte, 4+8*len(row.Indices))
	binary.LittleEndian.PutUint32(buf, uint32(len(row.Indices)))
	for i, col := range row.Indices {
		if col < 0 || col >= f.cols {
			return 0, fmt.Errorf("diskmat: column %d out of range [0, %d)", col, f.cols)
		}
		binary.LittleEndian.PutUint32(buf[4+8*i:], uint32(col))
		binary.LittleEndian.PutUint32(buf[8+8*i:], math.Float32bits(row.Values[i]))
	}
	if _, err := f.w.Write(buf); err != nil {
		return 0, essentials.AddCtx("append row", err)
	}
	f.size += int64(len(buf))
	f.offsets = append(f.offsets, f.size)
	return len(f.offsets) - 2, nil
}

// Seal flushes pending rows.
func (f *FileStore) Seal() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sealed {
		return nil
	}
	if err := f.w.Flush(); err != nil {
		return essentials.AddCtx("seal file store", err)
	}
	f.sealed = true
	return nil
}

// NumRows returns the number of rows appended.
func (f *FileStore) NumRows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.offsets) - 1
}

// NumCols returns the number of columns.
func (f *FileStore) NumCols() int {
	return f.cols
}

// RowVector reads a row from a sealed store.
func (f *FileStore) RowVector(row int) (*sparse.Vector, error) {
	if v, ok := f.cache.get(row); ok {
		return v, nil
	}

	f.mu.Lock()
	if !f.sealed {
		f.mu.Unlock()
		return nil, ErrNotSealed
	}
	if row < 0 || row >= len(f.offsets)-1 {
		f.mu.Unlock()
		return nil, ErrRowRange
	}
	start, end := f.offsets[row], f.offsets[row+1]
	f.mu.Unlock()

	buf := make([]byte, end-start)
	if _, err := f.file.ReadAt(buf, start); err != nil {
		return nil, essentials.AddCtx(fmt.Sprintf("read row %d", row), err)
	}
	n := int(binary.LittleEndian.Uint32(buf))
	if 4+8*n != len(buf) {
		return nil, fmt.Errorf("diskmat: row %d: %d entries in %d bytes", row, n, len(buf))
	}
	res := &sparse.Vector{Len: f.cols}
	if n > 0 {
		res.Indices = make([]int, n)
		res.Values = make([]float32, n)
		for i := 0; i < n; i++ {
			res.Indices[i] = int(binary.LittleEndian.Uint32(buf[4+8*i:]))
			res.Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[8+8*i:]))
		}
	}
	f.cache.add(row, res)
	return res, nil
}

// Close closes and deletes the backing file.
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.sealed = true
	f.cache.purge()
	closeErr := f.file.Close()
	if err := os.Remove(f.file.Name()); err != nil {
		return essentials.AddCtx("remove file store", err)
	}
	return closeErr
}
