package spool

import (
	"encoding/binary"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string, vocab int) [][]int32 {
	r, err := Open(path, vocab)
	require.NoError(t, err)
	defer r.Close()
	var docs [][]int32
	for {
		doc, err := r.Next()
		if err == io.EOF {
			return docs
		}
		require.NoError(t, err)
		docs = append(docs, doc)
	}
}

func TestRoundTrip(t *testing.T) {
	w, err := Create(t.TempDir())
	require.NoError(t, err)

	docs := [][]int32{{0, 1, 0, 2}, {}, {1, FilteredID, 3}}
	for _, doc := range docs {
		require.NoError(t, w.WriteDocument(doc))
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 3, w.Documents())

	assert.Equal(t, docs, readAll(t, w.Path(), 4))

	info, err := os.Stat(w.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(4*(3+4+0+3)), info.Size())
}

func TestWriteAfterClose(t *testing.T) {
	w, err := Create(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteDocument([]int32{1}), ErrClosed)
}

func TestConcurrentWritesStayWhole(t *testing.T) {
	w, err := Create(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := make([]int32, i+1)
			for j := range doc {
				doc[j] = int32(i)
			}
			assert.NoError(t, w.WriteDocument(doc))
		}(i)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	docs := readAll(t, w.Path(), 0)
	require.Len(t, docs, 20)
	for _, doc := range docs {
		for _, id := range doc {
			assert.Equal(t, int32(len(doc)-1), id)
		}
	}
}

func TestTruncatedRecord(t *testing.T) {
	w, err := Create(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.WriteDocument([]int32{1, 2}))
	require.NoError(t, w.Close())

	f, err := os.OpenFile(w.Path(), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	var header [8]byte
	binary.BigEndian.PutUint32(header[:], 5)
	binary.BigEndian.PutUint32(header[4:], 1)
	_, err = f.Write(header[:])
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(w.Path(), 0)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOutOfVocabulary(t *testing.T) {
	w, err := Create(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.WriteDocument([]int32{0, 7}))
	require.NoError(t, w.Close())

	r, err := Open(w.Path(), 3)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Next()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRemove(t *testing.T) {
	w, err := Create(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.WriteDocument([]int32{0}))
	require.NoError(t, w.Remove())
	_, err = os.Stat(w.Path())
	assert.True(t, os.IsNotExist(err))
}
