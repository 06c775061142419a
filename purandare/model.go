// Package purandare induces word senses from a corpus by
// clustering the contexts in which each word occurs.
//
// Documents are encoded in a first pass that counts
// co-occurrences within a small window. A log-likelihood
// test then picks the significant features of every term.
// A second pass over the spooled corpus builds one
// context row per occurrence from those features, and the
// rows of each term are clustered into senses.
package purandare

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unixpickle/essentials"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/cluster"
	"github.com/unixpickle/wordsense/diskmat"
	"github.com/unixpickle/wordsense/spool"
)

var ErrBuilt = errors.New("purandare: model already built")

// A Model accumulates documents and builds a Space of
// word senses from them.
//
// Documents may be processed concurrently. Build may only
// be called once, after which the Model cannot be used.
type Model struct {
	Config Config
	Terms  *wordsense.TermTable

	clusterer cluster.Clusterer
	spool     *spool.Writer
	encoder   *Encoder

	mu    sync.RWMutex
	built bool
}

// New creates a Model and its spool file.
func New(c Config) (*Model, error) {
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	clusterer, err := cluster.New(c.Clustering.Algorithm, c.Clustering.Options)
	if err != nil {
		return nil, err
	}
	w, err := spool.Create(c.SpoolDir)
	if err != nil {
		return nil, err
	}
	terms := wordsense.NewTermTable()
	return &Model{
		Config:    c,
		Terms:     terms,
		clusterer: clusterer,
		spool:     w,
		encoder:   NewEncoder(terms, w, c.WindowSize, c.Directional),
	}, nil
}

// ProcessDocument adds a tokenized document.
func (m *Model) ProcessDocument(tokens []string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.built {
		return ErrBuilt
	}
	return m.encoder.Encode(tokens)
}

// ProcessAll adds every document from the channel using
// Config.Workers goroutines.
func (m *Model) ProcessAll(ctx context.Context, docs <-chan []string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.built {
		return ErrBuilt
	}
	return m.encoder.EncodeAll(ctx, docs, m.Config.Workers)
}

// Build induces the senses of every term.
//
// Intermediate files are deleted when Build returns,
// whether or not it succeeds.
func (m *Model) Build(ctx context.Context) (space *Space, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built {
		return nil, ErrBuilt
	}
	m.built = true

	defer func() {
		if rmErr := m.spool.Remove(); rmErr != nil && err == nil {
			space, err = nil, rmErr
		}
	}()
	defer essentials.AddCtxTo("build model", &err)

	log := m.Config.Logger
	start := time.Now()

	if err := m.spool.Close(); err != nil {
		return nil, err
	}
	numTerms := m.Terms.Len()
	log.Info("encoded corpus", "documents", m.encoder.Documents(), "terms", numTerms,
		"occurrences", m.Terms.TotalOccurrences(), "filtered", m.encoder.Filtered())
	log.Debug("most common terms", "terms", m.Terms.MostCommon(10))

	masks, err := SelectFeatures(ctx, m.Terms, m.encoder.Cooccurrences, m.Config.Cutoff,
		m.Config.Workers)
	if err != nil {
		return nil, err
	}
	m.encoder.Cooccurrences = nil
	var numFeatures uint
	for _, mask := range masks {
		numFeatures += mask.Count()
	}
	log.Info("selected features", "features", numFeatures, "cutoff", m.Config.Cutoff)

	store, err := diskmat.New(m.Config.Matrix, numTerms)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	contexts, err := Materialize(ctx, m.spool.Path(), m.Terms, masks,
		m.Config.ContextWindowSize, store)
	if err != nil {
		return nil, err
	}
	log.Info("materialized contexts", "contexts", store.NumRows(),
		"backend", m.Config.Matrix.Backend)

	vocab := m.Terms.Terms()
	clusterer := &SenseClusterer{
		Clusterer:          m.clusterer,
		Clusters:           m.Config.Clusters,
		RetentionThreshold: m.Config.RetentionThreshold,
		Order:              m.Config.SenseOrder,
		Workers:            m.Config.Workers,
		Logger:             log,
	}
	senses, err := clusterer.ClusterAll(ctx, contexts, vocab)
	if err != nil {
		return nil, err
	}

	space, err = Assemble(vocab, senses)
	if err != nil {
		return nil, err
	}
	log.Info("induced senses", "senses", len(space.Labels), "terms", numTerms,
		"elapsed", time.Since(start))
	return space, nil
}

// Close discards a Model without building it.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built {
		return nil
	}
	m.built = true
	return m.spool.Remove()
}
