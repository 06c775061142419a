// Package diskmat implements append-only sparse matrices
// whose rows live on disk.
//
// Rows are appended in order while a matrix is being
// built. Once sealed, a matrix is read-only and safe for
// concurrent readers.
package diskmat

import (
	"errors"
	"fmt"

	"github.com/unixpickle/wordsense/sparse"
)

const (
	FileBackend   = "file"
	SQLiteBackend = "sqlite"

	defaultCacheRows = 4096
)

var (
	ErrSealed    = errors.New("diskmat: matrix is sealed")
	ErrNotSealed = errors.New("diskmat: matrix is not sealed")
	ErrRowRange  = errors.New("diskmat: row out of range")
)

// A Store is a disk-backed sparse matrix.
type Store interface {
	sparse.RowReader

	// Append writes the next row and returns its index.
	Append(row *sparse.Vector) (int, error)

	// Seal finishes writing. Rows can only be read from a
	// sealed Store.
	Seal() error

	// Close releases the Store and deletes its files.
	Close() error
}

// Config selects and tunes a Store.
type Config struct {
	// Backend is FileBackend or SQLiteBackend.
	// If empty, FileBackend is used.
	Backend string `yaml:"backend"`

	// Dir is where backing files are created.
	// If empty, the default temporary directory is used.
	Dir string `yaml:"dir"`

	// CacheRows is the number of decoded rows kept in
	// memory for reads.
	// If 0, 4096 is used; if negative, no cache is used.
	CacheRows int `yaml:"cache_rows"`
}

// New creates an empty Store with the given number of
// columns.
func New(c Config, cols int) (Store, error) {
	switch c.Backend {
	case "", FileBackend:
		return NewFileStore(c.Dir, cols, c.cacheRows())
	case SQLiteBackend:
		return NewSQLiteStore(c.Dir, cols, c.cacheRows())
	default:
		return nil, fmt.Errorf("diskmat: unknown backend %q", c.Backend)
	}
}

func (c Config) cacheRows() int {
	if c.CacheRows == 0 {
		return defaultCacheRows
	}
	return c.CacheRows
}
