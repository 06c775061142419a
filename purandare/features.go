package purandare

import (
	"context"
	"math"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/sparse"
)

// LogLikelihood computes the G2 statistic of a 2x2
// contingency table.
//
// The cells are: a, both terms present; b, only the
// feature present; c, only the focus term present; d,
// neither present.
// Empty cells contribute nothing, and a table with no
// observations scores 0.
func LogLikelihood(a, b, c, d float64) float64 {
	n := a + b + c + d
	if n <= 0 {
		return 0
	}
	row1, row2 := a+c, b+d
	col1, col2 := a+b, c+d
	observed := [4]float64{a, c, b, d}
	expected := [4]float64{
		row1 * col1 / n,
		row1 * col2 / n,
		row2 * col1 / n,
		row2 * col2 / n,
	}
	var sum float64
	for i, o := range observed {
		if o > 0 && expected[i] > 0 {
			sum += o * math.Log(o/expected[i])
		}
	}
	return 2 * sum
}

// SelectFeatures decides, for every term, which of its
// co-occurring terms are significant features.
//
// The result has one mask per term ID, each with one bit
// per term ID.
// A feature f is set in term t's mask if the G2 statistic
// of their co-occurrence exceeds cutoff.
func SelectFeatures(ctx context.Context, terms *wordsense.TermTable,
	cooc *sparse.GrowingMatrix, cutoff float64, workers int) ([]*bitset.BitSet, error) {
	numTerms := terms.Len()
	occurrences := make([]float64, numTerms)
	var corpusSize float64
	for i := range occurrences {
		occurrences[i] = float64(terms.Occurrences(i))
		corpusSize += occurrences[i]
	}

	masks := make([]*bitset.BitSet, numTerms)
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for t := 0; t < numTerms && groupCtx.Err() == nil; t++ {
		t := t
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			masks[t] = selectTermFeatures(t, cooc, occurrences, corpusSize, cutoff)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return masks, nil
}

func selectTermFeatures(t int, cooc *sparse.GrowingMatrix, occurrences []float64,
	corpusSize, cutoff float64) *bitset.BitSet {
	mask := bitset.New(uint(len(occurrences)))
	cols, counts := cooc.RowCounts(t)
	for i, f := range cols {
		a := float64(counts[i])
		if a == 0 || f >= len(occurrences) {
			continue
		}
		b := occurrences[f] - a
		c := occurrences[t] - a
		d := corpusSize - (a + b + c)
		if b < 0 || c < 0 || d < 0 {
			continue
		}
		if LogLikelihood(a, b, c, d) > cutoff {
			mask.Set(uint(f))
		}
	}
	return mask
}
