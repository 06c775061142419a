package purandare

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/cluster"
	"github.com/unixpickle/wordsense/sparse"
)

// A Sense is one induced meaning of a term.
type Sense struct {
	Label string

	// Vector is the mean of the sense's context rows.
	Vector *sparse.Vector

	// Size is the number of context rows in the sense.
	Size int
}

// A SenseClusterer groups the contexts of each term into
// senses.
type SenseClusterer struct {
	Clusterer cluster.Clusterer

	// Clusters is the number of clusters requested per
	// term.
	Clusters int

	// RetentionThreshold is the share of a term's rows a
	// cluster must exceed to be kept.
	RetentionThreshold float64

	Order   SenseOrder
	Workers int
	Logger  *slog.Logger
}

// ClusterAll finds the senses of every term.
// The result is indexed by term ID; terms with no
// contexts have no senses.
func (s *SenseClusterer) ClusterAll(ctx context.Context, c *Contexts,
	vocab wordsense.Vocabulary) ([][]*Sense, error) {
	res := make([][]*Sense, len(c.Index))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Workers))
	for term := range c.Index {
		term := term
		if groupCtx.Err() != nil {
			break
		}
		if len(c.Index[term]) == 0 {
			continue
		}
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			senses, err := s.ClusterTerm(c.Rows(term), vocab.Term(term))
			if err != nil {
				return essentials.AddCtx(fmt.Sprintf("cluster term %q", vocab.Term(term)), err)
			}
			res[term] = senses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ClusterTerm clusters the context rows of one term and
// returns its retained senses.
func (s *SenseClusterer) ClusterTerm(rows sparse.RowReader, term string) ([]*Sense, error) {
	n := rows.NumRows()
	if n == 0 {
		return nil, nil
	}
	assignments, err := s.Clusterer.Cluster(rows, s.Clusters)
	if err != nil {
		return nil, err
	}
	if len(assignments) != n {
		return nil, fmt.Errorf("clusterer returned %d assignments for %d rows",
			len(assignments), n)
	}

	var clusters []*Sense
	for i, a := range assignments {
		if a < 0 || a >= s.Clusters {
			return nil, fmt.Errorf("clusterer returned cluster %d of %d", a, s.Clusters)
		}
		for len(clusters) <= a {
			clusters = append(clusters, &Sense{Vector: sparse.NewVector(rows.NumCols())})
		}
		row, err := rows.RowVector(i)
		if err != nil {
			return nil, err
		}
		clusters[a].Vector.AddVector(row)
		clusters[a].Size++
	}

	var senses []*Sense
	for _, c := range clusters {
		if float64(c.Size)/float64(n) > s.RetentionThreshold {
			c.Vector.Scale(1 / float32(c.Size))
			senses = append(senses, c)
		}
	}
	if s.Order == SizeOrder {
		sort.SliceStable(senses, func(i, j int) bool {
			return senses[i].Size > senses[j].Size
		})
	}
	for i, sense := range senses {
		sense.Label = SenseLabel(term, i)
	}

	s.logger().Debug("clustered term", "term", term, "contexts", n,
		"clusters", len(clusters), "senses", len(senses))
	return senses, nil
}

// SenseLabel returns the label of the i-th sense of a
// term: the term itself for i = 0, then "term-2",
// "term-3", and so on.
func SenseLabel(term string, i int) string {
	if i == 0 {
		return term
	}
	return fmt.Sprintf("%s-%d", term, i+1)
}

func (s *SenseClusterer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
