package purandare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/unixpickle/essentials"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/diskmat"
	"github.com/unixpickle/wordsense/sparse"
	"github.com/unixpickle/wordsense/spool"
)

var ErrCorrupt = errors.New("purandare: corrupt intermediate data")

// Contexts holds one row per term occurrence.
type Contexts struct {
	// Matrix has one row per non-filtered token in the
	// corpus, in corpus order, and one column per term ID.
	Matrix diskmat.Store

	// Index lists, for each term ID, the rows of Matrix for
	// that term's occurrences in ascending order.
	Index [][]int
}

// Rows returns a view of the rows of a term.
func (c *Contexts) Rows(term int) *sparse.RowMasked {
	return sparse.NewRowMasked(c.Matrix, c.Index[term])
}

// Materialize reads the spooled corpus and appends a
// context row for every occurrence of every term.
//
// A context row counts the terms within window positions
// of the occurrence that are set in the occurring term's
// feature mask.
// The store is sealed before Materialize returns.
func Materialize(ctx context.Context, spoolPath string, terms *wordsense.TermTable,
	masks []*bitset.BitSet, window int, store diskmat.Store) (*Contexts, error) {
	numTerms := terms.Len()
	if len(masks) != numTerms {
		return nil, fmt.Errorf("%w: %d feature masks for %d terms", ErrCorrupt, len(masks),
			numTerms)
	}

	r, err := spool.Open(spoolPath, numTerms)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	res := &Contexts{Matrix: store, Index: make([][]int, numTerms)}
	var contexts int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := r.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("materialize contexts: %w", err)
		}
		for i, id := range doc {
			if id == spool.FilteredID {
				continue
			}
			row := contextRow(doc, i, window, masks[id], numTerms)
			idx, err := store.Append(row)
			if err != nil {
				return nil, essentials.AddCtx("materialize contexts", err)
			}
			if idx != contexts {
				return nil, fmt.Errorf("%w: row %d appended as %d", ErrCorrupt, contexts, idx)
			}
			res.Index[id] = append(res.Index[id], idx)
			contexts++
		}
	}

	if err := store.Seal(); err != nil {
		return nil, essentials.AddCtx("materialize contexts", err)
	}
	if total := terms.TotalOccurrences(); int64(contexts) != total {
		return nil, fmt.Errorf("%w: %d contexts for %d occurrences", ErrCorrupt, contexts, total)
	}
	return res, nil
}

func contextRow(doc []int32, i, window int, mask *bitset.BitSet, numTerms int) *sparse.Vector {
	counts := map[int]float32{}
	start, end := max(0, i-window), min(len(doc)-1, i+window)
	for j := start; j <= end; j++ {
		if j == i || doc[j] == spool.FilteredID {
			continue
		}
		if f := uint(doc[j]); mask.Test(f) {
			counts[int(f)]++
		}
	}

	row := sparse.NewVector(numTerms)
	if len(counts) == 0 {
		return row
	}
	row.Indices = make([]int, 0, len(counts))
	for f := range counts {
		row.Indices = append(row.Indices, f)
	}
	sort.Ints(row.Indices)
	row.Values = make([]float32, len(row.Indices))
	for k, f := range row.Indices {
		row.Values[k] = counts[f]
	}
	return row
}
