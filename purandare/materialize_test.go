package purandare

import (
	"context"
	"os"
	"sort"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/diskmat"
	"github.com/unixpickle/wordsense/spool"
)

func fullMasks(n int) []*bitset.BitSet {
	res := make([]*bitset.BitSet, n)
	for i := range res {
		res[i] = bitset.New(uint(n))
		for j := 0; j < n; j++ {
			res[i].Set(uint(j))
		}
	}
	return res
}

func materializeTest(t *testing.T, backend string, window int, masks []*bitset.BitSet,
	docs ...[]string) (*Encoder, *Contexts) {
	e, w := newTestEncoder(t, 1, true)
	for _, doc := range docs {
		require.NoError(t, e.Encode(doc))
	}
	require.NoError(t, w.Close())
	if masks == nil {
		masks = fullMasks(e.Terms.Len())
	}
	store, err := diskmat.New(diskmat.Config{Backend: backend, Dir: t.TempDir()}, e.Terms.Len())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	contexts, err := Materialize(context.Background(), w.Path(), e.Terms, masks, window, store)
	require.NoError(t, err)
	return e, contexts
}

func rowMap(t *testing.T, c *Contexts, row int) map[int]float32 {
	vec, err := c.Matrix.RowVector(row)
	require.NoError(t, err)
	res := map[int]float32{}
	for i, idx := range vec.Indices {
		res[idx] = vec.Values[i]
	}
	return res
}

func TestMaterialize(t *testing.T) {
	for _, backend := range []string{diskmat.FileBackend, diskmat.SQLiteBackend} {
		t.Run(backend, func(t *testing.T) {
			_, c := materializeTest(t, backend, 20, nil,
				[]string{"a", "b", "a", "c"},
				[]string{"b", wordsense.EmptyToken, "a", "d"})

			require.Equal(t, 7, c.Matrix.NumRows())
			assert.Equal(t, [][]int{{0, 2, 5}, {1, 4}, {3}, {6}}, c.Index)

			assert.Equal(t, map[int]float32{0: 1, 1: 1, 2: 1}, rowMap(t, c, 0))
			assert.Equal(t, map[int]float32{0: 2, 2: 1}, rowMap(t, c, 1))
			assert.Equal(t, map[int]float32{0: 2, 1: 1}, rowMap(t, c, 3))
			assert.Equal(t, map[int]float32{0: 1, 3: 1}, rowMap(t, c, 4))
			assert.Equal(t, map[int]float32{1: 1, 0: 1}, rowMap(t, c, 6))
		})
	}
}

func TestMaterializeWindowAndMask(t *testing.T) {
	masks := fullMasks(4)
	masks[0].Clear(2)
	_, c := materializeTest(t, diskmat.FileBackend, 1, masks,
		[]string{"a", "b", "a", "c"},
		[]string{"d"})

	assert.Equal(t, map[int]float32{1: 1}, rowMap(t, c, 0))
	assert.Equal(t, map[int]float32{0: 2}, rowMap(t, c, 1))
	// c is not a feature of a.
	assert.Equal(t, map[int]float32{1: 1}, rowMap(t, c, 2))
	assert.Equal(t, map[int]float32{0: 1}, rowMap(t, c, 3))
	assert.Empty(t, rowMap(t, c, 4))
}

func TestMaterializePartition(t *testing.T) {
	words := []string{"river", "bank", "money", wordsense.EmptyToken, "loan", "bank"}
	var docs [][]string
	for i := 0; i < 30; i++ {
		doc := make([]string, i%7+1)
		for j := range doc {
			doc[j] = words[(i*3+j*5)%len(words)]
		}
		docs = append(docs, doc)
	}
	e, c := materializeTest(t, diskmat.FileBackend, 3, nil, docs...)

	var all []int
	for term, rows := range c.Index {
		assert.Equal(t, e.Terms.Occurrences(term), int64(len(rows)))
		assert.True(t, sort.IntsAreSorted(rows))
		all = append(all, rows...)
	}
	sort.Ints(all)
	require.Len(t, all, c.Matrix.NumRows())
	for i, row := range all {
		assert.Equal(t, i, row)
	}
	assert.Equal(t, e.Terms.TotalOccurrences(), int64(c.Matrix.NumRows()))
}

func TestMaterializeErrors(t *testing.T) {
	e, w := newTestEncoder(t, 1, true)
	encodeAll(t, e, "a b")
	require.NoError(t, w.Close())

	store, err := diskmat.New(diskmat.Config{Dir: t.TempDir()}, e.Terms.Len())
	require.NoError(t, err)
	defer store.Close()
	_, err = Materialize(context.Background(), w.Path(), e.Terms, fullMasks(1), 5, store)
	assert.ErrorIs(t, err, ErrCorrupt)

	// Occurrences that never reached the spool.
	e.Terms.IncrementOccurrence(0)
	_, err = Materialize(context.Background(), w.Path(), e.Terms, fullMasks(2), 5, store)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestMaterializeTruncatedSpool(t *testing.T) {
	e, w := newTestEncoder(t, 1, true)
	encodeAll(t, e, "a b c d")
	require.NoError(t, w.Close())
	info, err := os.Stat(w.Path())
	require.NoError(t, err)
	require.NoError(t, os.Truncate(w.Path(), info.Size()-2))

	store, err := diskmat.New(diskmat.Config{Dir: t.TempDir()}, e.Terms.Len())
	require.NoError(t, err)
	defer store.Close()
	_, err = Materialize(context.Background(), w.Path(), e.Terms, fullMasks(4), 5, store)
	assert.ErrorIs(t, err, spool.ErrCorrupt)
}
