package wordsense

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/serializer"
)

func TestTermTableFirstSeenOrder(t *testing.T) {
	table := NewTermTable()
	for _, tok := range []string{"a", "b", "a", "c", "b", "a", "d"} {
		table.IDFor(tok)
	}
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, Vocabulary{"a", "b", "c", "d"}, table.Terms())

	id, ok := table.Lookup("c")
	assert.True(t, ok)
	assert.Equal(t, 2, id)

	id, ok = table.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, NoTerm, id)
	assert.Equal(t, 4, table.Len(), "Lookup must not allocate")

	assert.Equal(t, "d", table.Term(3))
	assert.Equal(t, "", table.Term(4))
	assert.Equal(t, "", table.Term(-1))
}

func TestTermTableConcurrentIDs(t *testing.T) {
	const workers = 16
	const terms = 500

	table := NewTermTable()
	results := make([]map[string]int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			seen := map[string]int{}
			for i := 0; i < terms; i++ {
				// Each worker walks the terms in a different order.
				term := fmt.Sprintf("t%d", (i*(w+1))%terms)
				id := table.IDFor(term)
				table.IncrementOccurrence(id)
				seen[term] = id
			}
			results[w] = seen
		}(w)
	}
	wg.Wait()

	require.Equal(t, terms, table.Len())

	ids := map[int]string{}
	for _, seen := range results {
		for term, id := range seen {
			if other, ok := ids[id]; ok {
				assert.Equal(t, other, term, "id %d shared by two terms", id)
			}
			ids[id] = term
			assert.Equal(t, id, table.IDFor(term))
		}
	}
	for id := 0; id < table.Len(); id++ {
		assert.Contains(t, ids, id, "ids must be contiguous")
	}

	// Every worker increments once per visited position.
	assert.Equal(t, int64(workers*terms), table.TotalOccurrences())
}

func TestTermTableOccurrences(t *testing.T) {
	table := NewTermTable()
	a := table.IDFor("a")
	b := table.IDFor("b")
	table.IncrementOccurrence(a)
	table.IncrementOccurrence(a)
	table.IncrementOccurrence(b)

	assert.Equal(t, int64(2), table.Occurrences(a))
	assert.Equal(t, int64(1), table.Occurrences(b))
	assert.Equal(t, int64(3), table.TotalOccurrences())
}

func TestVocabularySerialize(t *testing.T) {
	vocab := Vocabulary{"river", "bank", "money"}
	data, err := serializer.SerializeAny(vocab)
	require.NoError(t, err)

	var decoded Vocabulary
	require.NoError(t, serializer.DeserializeAny(data, &decoded))
	assert.Equal(t, vocab, decoded)
	assert.Equal(t, "bank", decoded.Term(1))
	assert.Equal(t, "", decoded.Term(5))
}
