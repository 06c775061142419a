// Package spool stores tokenized documents as sequences
// of term IDs in a transient binary file.
//
// Each record is a big-endian int32 document length
// followed by that many big-endian int32 term IDs.
// The ID -1 marks a filtered token.
package spool

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/unixpickle/essentials"
)

// FilteredID is the ID stored for a filtered token.
const FilteredID = -1

var (
	ErrCorrupt = errors.New("spool: corrupt record")
	ErrClosed  = errors.New("spool: writer closed")
)

// A Writer appends documents to a spool file.
//
// WriteDocument may be called concurrently; records are
// never interleaved.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	w      *bufio.Writer
	docs   int
	ids    int64
	closed bool
}

// Create makes a new spool file in dir.
// If dir is empty, the default temporary directory is
// used.
func Create(dir string) (*Writer, error) {
	f, err := os.CreateTemp(dir, "wordsense-corpus-*.dat")
	if err != nil {
		return nil, essentials.AddCtx("create spool", err)
	}
	return &Writer{file: f, w: bufio.NewWriterSize(f, 1<<16)}, nil
}

// Path returns the location of the spool file.
func (w *Writer) Path() string {
	return w.file.Name()
}

// WriteDocument appends one document.
func (w *Writer) WriteDocument(ids []int32) error {
	record := make([]byte, 4*(len(ids)+1))
	binary.BigEndian.PutUint32(record, uint32(len(ids)))
	for i, id := range ids {
		binary.BigEndian.PutUint32(record[4*(i+1):], uint32(id))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if _, err := w.w.Write(record); err != nil {
		return essentials.AddCtx("write spool", err)
	}
	w.docs++
	w.ids += int64(len(ids))
	return nil
}

// Documents returns the number of documents written.
func (w *Writer) Documents() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.docs
}

// Close flushes and closes the file.
// It is safe to call Close more than once.
func (w *Writer) Close() (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	defer essentials.AddCtxTo("close spool", &err)
	if err := w.w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Remove closes the writer and deletes the file.
func (w *Writer) Remove() error {
	closeErr := w.Close()
	if err := os.Remove(w.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return essentials.AddCtx("remove spool", err)
	}
	return closeErr
}

// A Reader reads documents back from a spool file in the
// order they were written.
type Reader struct {
	file  *os.File
	r     *bufio.Reader
	docs  int
	limit int
}

// Open opens a spool file for reading.
//
// If vocabSize is positive, any ID at or above it is
// reported as corruption.
func Open(path string, vocabSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("open spool", err)
	}
	return &Reader{file: f, r: bufio.NewReaderSize(f, 1<<16), limit: vocabSize}, nil
}

// Next reads the next document.
// It returns io.EOF once every document has been read.
func (r *Reader) Next() ([]int32, error) {
	var header [4]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, r.corrupt("truncated length", err)
	}
	n := int32(binary.BigEndian.Uint32(header[:]))
	if n < 0 {
		return nil, r.corrupt(fmt.Sprintf("negative length %d", n), nil)
	}

	body := make([]byte, 4*int(n))
	if _, err := io.ReadFull(r.r, body); err != nil {
		return nil, r.corrupt(fmt.Sprintf("expected %d ids", n), err)
	}
	ids := make([]int32, n)
	for i := range ids {
		id := int32(binary.BigEndian.Uint32(body[4*i:]))
		if id < FilteredID || (r.limit > 0 && int(id) >= r.limit) {
			return nil, r.corrupt(fmt.Sprintf("invalid id %d", id), nil)
		}
		ids[i] = id
	}
	r.docs++
	return ids, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

func (r *Reader) corrupt(msg string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: document %d: %s: %v", ErrCorrupt, r.docs, msg, err)
	}
	return fmt.Errorf("%w: document %d: %s", ErrCorrupt, r.docs, msg)
}
