// Package cluster partitions the rows of sparse matrices.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/unixpickle/wordsense/sparse"
)

var ErrClusterCount = errors.New("cluster: number of clusters must be positive")

// A Clusterer partitions the rows of a matrix into at most
// k clusters.
//
// The result has one entry per row. Cluster numbers start
// at 0 and are dense.
type Clusterer interface {
	Cluster(m sparse.RowReader, k int) ([]int, error)
}

// Options configures a registered Clusterer.
type Options struct {
	Linkage    string `yaml:"linkage"`
	Similarity string `yaml:"similarity"`

	// MaxRows bounds the rows clustered directly.
	// Zero selects a default and a negative value removes
	// the bound.
	MaxRows int `yaml:"max_rows"`
}

// A Constructor creates a Clusterer from Options.
type Constructor func(opts Options) (Clusterer, error)

var constructors = map[string]Constructor{}

// Register makes a clustering algorithm available by
// name.
func Register(name string, c Constructor) {
	constructors[name] = c
}

// New creates a registered Clusterer.
func New(name string, opts Options) (Clusterer, error) {
	c, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("cluster: algorithm %q not registered", name)
	}
	return c(opts)
}

// Algorithms lists the registered algorithm names.
func Algorithms() []string {
	var res []string
	for name := range constructors {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// A Similarity scores two vectors; larger means more
// similar.
type Similarity func(a, b *sparse.Vector) float64

var similarities = map[string]Similarity{
	"cosine":    Cosine,
	"euclidean": Euclidean,
}

// SimilarityNamed looks up a Similarity by name.
func SimilarityNamed(name string) (Similarity, error) {
	if s, ok := similarities[strings.ToLower(name)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("cluster: unknown similarity %q", name)
}

// Cosine computes the cosine similarity.
// Zero vectors have similarity 0 with everything.
func Cosine(a, b *sparse.Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// Euclidean maps Euclidean distance d to 1/(1+d).
func Euclidean(a, b *sparse.Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	d2 := na*na + nb*nb - 2*a.Dot(b)
	return 1 / (1 + math.Sqrt(math.Max(0, d2)))
}
