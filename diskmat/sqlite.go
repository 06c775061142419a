package diskmat

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/unixpickle/essentials"
	_ "modernc.org/sqlite"

	"github.com/unixpickle/wordsense/sparse"
)

const sqliteBatchRows = 4096

var sqliteSchema = []string{
	`PRAGMA journal_mode = OFF`,
	`PRAGMA synchronous = OFF`,
	`CREATE TABLE IF NOT EXISTS contexts (
		row   INTEGER NOT NULL,
		col   INTEGER NOT NULL,
		value REAL    NOT NULL,
		PRIMARY KEY (row, col)
	) WITHOUT ROWID`,
}

// A SQLiteStore keeps rows in a SQLite table with one
// record per non-zero entry.
type SQLiteStore struct {
	cols  int
	cache *rowCache
	dir   string
	db    *sql.DB

	mu      sync.Mutex
	tx      *sql.Tx
	insert  *sql.Stmt
	pending int
	rows    int
	sealed  bool
	closed  bool
}

// NewSQLiteStore creates an empty SQLiteStore in a new
// directory under dir.
func NewSQLiteStore(dir string, cols, cacheRows int) (store *SQLiteStore, err error) {
	defer essentials.AddCtxTo("create sqlite store", &err)

	cache, err := newRowCache(cacheRows)
	if err != nil {
		return nil, err
	}
	storeDir, err := os.MkdirTemp(dir, "wordsense-contexts-*")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(storeDir, "contexts.db"))
	if err != nil {
		os.RemoveAll(storeDir)
		return nil, err
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			os.RemoveAll(storeDir)
			return nil, err
		}
	}
	return &SQLiteStore{cols: cols, cache: cache, dir: storeDir, db: db}, nil
}

// Append writes the next row.
func (s *SQLiteStore) Append(row *sparse.Vector) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return 0, ErrSealed
	}
	if s.tx == nil {
		if err := s.begin(); err != nil {
			return 0, essentials.AddCtx("append row", err)
		}
	}

	idx := s.rows
	for i, col := range row.Indices {
		if col < 0 || col >= s.cols {
			return 0, fmt.Errorf("diskmat: column %d out of range [0, %d)", col, s.cols)
		}
		if _, err := s.insert.Exec(idx, col, row.Values[i]); err != nil {
			return 0, essentials.AddCtx("append row", err)
		}
	}
	s.rows++
	s.pending++
	if s.pending >= sqliteBatchRows {
		if err := s.commit(); err != nil {
			return 0, essentials.AddCtx("append row", err)
		}
	}
	return idx, nil
}

// Seal commits pending rows.
func (s *SQLiteStore) Seal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return nil
	}
	if err := s.commit(); err != nil {
		return essentials.AddCtx("seal sqlite store", err)
	}
	s.sealed = true
	return nil
}

// NumRows returns the number of rows appended.
func (s *SQLiteStore) NumRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// NumCols returns the number of columns.
func (s *SQLiteStore) NumCols() int {
	return s.cols
}

// RowVector reads a row from a sealed store.
func (s *SQLiteStore) RowVector(row int) (*sparse.Vector, error) {
	if v, ok := s.cache.get(row); ok {
		return v, nil
	}

	s.mu.Lock()
	sealed, rows := s.sealed, s.rows
	s.mu.Unlock()
	if !sealed {
		return nil, ErrNotSealed
	}
	if row < 0 || row >= rows {
		return nil, ErrRowRange
	}

	res := &sparse.Vector{Len: s.cols}
	results, err := s.db.Query(`SELECT col, value FROM contexts WHERE row = ? ORDER BY col`, row)
	if err != nil {
		return nil, essentials.AddCtx(fmt.Sprintf("read row %d", row), err)
	}
	defer results.Close()
	for results.Next() {
		var col int
		var value float64
		if err := results.Scan(&col, &value); err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("read row %d", row), err)
		}
		res.Indices = append(res.Indices, col)
		res.Values = append(res.Values, float32(value))
	}
	if err := results.Err(); err != nil {
		return nil, essentials.AddCtx(fmt.Sprintf("read row %d", row), err)
	}
	s.cache.add(row, res)
	return res, nil
}

// Close closes the database and deletes its directory.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.sealed = true
	s.cache.purge()
	if s.tx != nil {
		s.insert.Close()
		s.tx.Rollback()
		s.tx = nil
	}
	closeErr := s.db.Close()
	if err := os.RemoveAll(s.dir); err != nil {
		return essentials.AddCtx("remove sqlite store", err)
	}
	return closeErr
}

func (s *SQLiteStore) begin() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	insert, err := tx.Prepare(`INSERT INTO contexts (row, col, value) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	s.tx, s.insert = tx, insert
	return nil
}

func (s *SQLiteStore) commit() error {
	if s.tx == nil {
		return nil
	}
	s.insert.Close()
	err := s.tx.Commit()
	s.tx, s.insert, s.pending = nil, nil, 0
	return err
}
