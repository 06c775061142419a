package purandare

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/sparse"
	"github.com/unixpickle/wordsense/spool"
)

// An Encoder converts tokenized documents to term IDs,
// tallies occurrences and co-occurrences, and spools the
// encoded documents for a second pass.
//
// Encode may be called from many goroutines at once.
type Encoder struct {
	Terms         *wordsense.TermTable
	Cooccurrences *sparse.GrowingMatrix

	// Window is the number of tokens on each side of a
	// focus word that co-occur with it.
	Window int

	// Directional, if true, counts only the words after
	// the focus word, so each ordered pair is seen once.
	// Otherwise both sides count in the focus word's row.
	Directional bool

	spool     *spool.Writer
	documents atomic.Int64
	filtered  atomic.Int64
}

// NewEncoder creates an Encoder that writes to w.
func NewEncoder(terms *wordsense.TermTable, w *spool.Writer, window int,
	directional bool) *Encoder {
	return &Encoder{
		Terms:         terms,
		Cooccurrences: sparse.NewGrowingMatrix(),
		Window:        window,
		Directional:   directional,
		spool:         w,
	}
}

// Encode processes one document.
//
// Tokens equal to wordsense.EmptyToken are not counted,
// but they still take up a position in the document.
func (e *Encoder) Encode(tokens []string) error {
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		if tok == wordsense.EmptyToken {
			ids[i] = spool.FilteredID
			e.filtered.Add(1)
		} else {
			ids[i] = int32(e.Terms.IDFor(tok))
		}
	}

	for i, focus := range ids {
		if focus == spool.FilteredID {
			continue
		}
		e.Terms.IncrementOccurrence(int(focus))

		if !e.Directional {
			for j := max(0, i-e.Window); j < i; j++ {
				if other := ids[j]; other != spool.FilteredID {
					e.Cooccurrences.AddAndGet(int(focus), int(other), 1)
				}
			}
		}
		for j := i + 1; j <= i+e.Window && j < len(ids); j++ {
			if other := ids[j]; other != spool.FilteredID {
				e.Cooccurrences.AddAndGet(int(focus), int(other), 1)
			}
		}
	}

	if err := e.spool.WriteDocument(ids); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	e.documents.Add(1)
	return nil
}

// EncodeAll encodes every document from the channel using
// the given number of goroutines.
//
// It returns when the channel is closed, the context is
// done, or a document fails to encode.
func (e *Encoder) EncodeAll(ctx context.Context, docs <-chan []string, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < max(1, workers); i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case doc, ok := <-docs:
					if !ok {
						return nil
					}
					if err := e.Encode(doc); err != nil {
						return err
					}
				}
			}
		})
	}
	return g.Wait()
}

// Documents returns the number of documents encoded.
func (e *Encoder) Documents() int64 {
	return e.documents.Load()
}

// Filtered returns the number of filtered tokens seen.
func (e *Encoder) Filtered() int64 {
	return e.filtered.Load()
}
