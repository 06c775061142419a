package wordsense

import (
	"sync"
	"sync/atomic"
)

// NoTerm is the term ID recorded for tokens that were
// rejected by a filter.
const NoTerm = -1

// A TermTable assigns dense integer IDs to terms in the
// order they are first seen and counts how many times
// each term occurs.
//
// A TermTable is safe for concurrent use.
// IDs are never removed or renumbered.
type TermTable struct {
	ids sync.Map

	// allocMu guards ID allocation only.
	allocMu sync.Mutex
	entries atomic.Pointer[[]*termEntry]
}

type termEntry struct {
	term  string
	count atomic.Int64
}

// NewTermTable creates an empty TermTable.
func NewTermTable() *TermTable {
	t := &TermTable{}
	t.entries.Store(&[]*termEntry{})
	return t
}

// IDFor returns the ID for the term, allocating the next
// ID if the term has not been seen before.
func (t *TermTable) IDFor(term string) int {
	if id, ok := t.ids.Load(term); ok {
		return id.(int)
	}

	t.allocMu.Lock()
	defer t.allocMu.Unlock()
	if id, ok := t.ids.Load(term); ok {
		return id.(int)
	}

	// The entry list is published before the ID so that
	// anyone who can see the ID can also see its entry.
	entries := *t.entries.Load()
	id := len(entries)
	entries = append(entries, &termEntry{term: term})
	t.entries.Store(&entries)
	t.ids.Store(term, id)
	return id
}

// Lookup returns the ID of a term without allocating one.
func (t *TermTable) Lookup(term string) (int, bool) {
	id, ok := t.ids.Load(term)
	if !ok {
		return NoTerm, false
	}
	return id.(int), true
}

// Term returns the term for an ID.
//
// If the ID has not been allocated, "" is returned.
func (t *TermTable) Term(id int) string {
	entries := *t.entries.Load()
	if id < 0 || id >= len(entries) {
		return ""
	}
	return entries[id].term
}

// Len returns the number of allocated IDs.
func (t *TermTable) Len() int {
	return len(*t.entries.Load())
}

// IncrementOccurrence atomically adds one to the
// occurrence count of the term ID.
func (t *TermTable) IncrementOccurrence(id int) {
	(*t.entries.Load())[id].count.Add(1)
}

// Occurrences returns the occurrence count for a term ID.
func (t *TermTable) Occurrences(id int) int64 {
	return (*t.entries.Load())[id].count.Load()
}

// TotalOccurrences sums the occurrence counts of every
// term.
func (t *TermTable) TotalOccurrences() int64 {
	var sum int64
	for _, e := range *t.entries.Load() {
		sum += e.count.Load()
	}
	return sum
}

// Terms returns every term, indexed by ID.
func (t *TermTable) Terms() Vocabulary {
	entries := *t.entries.Load()
	res := make(Vocabulary, len(entries))
	for i, e := range entries {
		res[i] = e.term
	}
	return res
}
