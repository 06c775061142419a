package purandare

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLikelihood(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d float64
		expected   float64
	}{
		{"independent", 10, 10, 10, 10, 0},
		{"empty", 0, 0, 0, 0, 0},
		{"perfect", 10, 0, 0, 10, 40 * math.Ln2},
		{"single", 1, 0, 0, 0, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := LogLikelihood(test.a, test.b, test.c, test.d)
			assert.False(t, math.IsNaN(actual))
			assert.InDelta(t, test.expected, actual, 1e-9)
		})
	}
}

func TestSelectFeaturesScenario(t *testing.T) {
	e, _ := newTestEncoder(t, 1, false)
	encodeAll(t, e, "a b a c", "b a d")

	masks, err := SelectFeatures(context.Background(), e.Terms, e.Cooccurrences,
		DefaultCutoff, 2)
	require.NoError(t, err)
	require.Len(t, masks, 4)
	for _, mask := range masks {
		assert.Equal(t, uint(4), mask.Len())
	}

	// a and b co-occur more often than b occurs, and the
	// rare pairs fall below the cutoff.
	assert.True(t, masks[1].None())
	assert.True(t, masks[2].None())
	assert.True(t, masks[3].None())
	assert.LessOrEqual(t, masks[0].Count(), uint(3))
}

func TestSelectFeaturesMonotonic(t *testing.T) {
	e, _ := newTestEncoder(t, 1, false)
	rng := rand.New(rand.NewSource(42))
	words := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i := 0; i < 100; i++ {
		doc := make([]string, 20)
		for j := range doc {
			// Skew towards a few words to get strong pairs.
			if j > 0 && doc[j-1] == "a" && rng.Intn(2) == 0 {
				doc[j] = "b"
			} else {
				doc[j] = words[rng.Intn(len(words))]
			}
		}
		require.NoError(t, e.Encode(doc))
	}

	var last []uint
	for _, cutoff := range []float64{0, 1, DefaultCutoff, 10, 100} {
		masks, err := SelectFeatures(context.Background(), e.Terms, e.Cooccurrences, cutoff, 3)
		require.NoError(t, err)
		counts := make([]uint, len(masks))
		for i, mask := range masks {
			counts[i] = mask.Count()
			if last != nil {
				assert.LessOrEqual(t, counts[i], last[i], "cutoff %f term %d", cutoff, i)
			}
		}
		last = counts
	}

	a, _ := e.Terms.Lookup("a")
	b, _ := e.Terms.Lookup("b")
	masks, err := SelectFeatures(context.Background(), e.Terms, e.Cooccurrences,
		DefaultCutoff, 1)
	require.NoError(t, err)
	assert.True(t, masks[a].Test(uint(b)))
}

func TestSelectFeaturesBigram(t *testing.T) {
	filler := []string{"the", "city", "is", "big", "and", "old", "we", "saw", "a", "park",
		"with", "many", "trees", "near", "river", "on", "sunday", "after", "lunch", "today"}
	for _, directional := range []bool{false, true} {
		c := Config{Directional: directional}.withDefaults()
		e, _ := newTestEncoder(t, c.WindowSize, c.Directional)
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 200; i++ {
			doc := make([]string, 12)
			for j := range doc {
				doc[j] = filler[rng.Intn(len(filler))]
			}
			pos := rng.Intn(len(doc) - 1)
			doc[pos], doc[pos+1] = "new", "york"
			require.NoError(t, e.Encode(doc))
		}

		masks, err := SelectFeatures(context.Background(), e.Terms, e.Cooccurrences,
			c.Cutoff, 2)
		require.NoError(t, err)
		n, _ := e.Terms.Lookup("new")
		y, _ := e.Terms.Lookup("york")
		assert.Equal(t, int64(200), e.Cooccurrences.Get(n, y))
		assert.True(t, masks[n].Test(uint(y)), "directional=%v", directional)
		if directional {
			assert.Equal(t, int64(0), e.Cooccurrences.Get(y, n))
			assert.False(t, masks[y].Test(uint(n)))
		} else {
			assert.Equal(t, int64(200), e.Cooccurrences.Get(y, n))
			assert.True(t, masks[y].Test(uint(n)))
		}
	}
}

func TestSelectFeaturesCanceled(t *testing.T) {
	e, _ := newTestEncoder(t, 1, false)
	encodeAll(t, e, "a b a c")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SelectFeatures(ctx, e.Terms, e.Cooccurrences, DefaultCutoff, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
