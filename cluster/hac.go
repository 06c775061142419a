package cluster

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/mat"

	"github.com/unixpickle/wordsense/sparse"
)

func init() {
	Register("hac", func(opts Options) (Clusterer, error) {
		return NewHAC(opts)
	})
}

// Linkage is the way two clusters are compared.
type Linkage int

const (
	// SingleLinkage uses the most similar pair of points.
	SingleLinkage Linkage = iota

	// CompleteLinkage uses the least similar pair of
	// points.
	CompleteLinkage

	// MeanLinkage uses the average similarity of all
	// pairs of points (UPGMA).
	MeanLinkage

	// MedianLinkage uses the median similarity of all
	// pairs of points.
	MedianLinkage
)

var linkageNames = []string{"single", "complete", "mean", "median"}

// ParseLinkage parses a linkage name.
func ParseLinkage(name string) (Linkage, error) {
	for i, n := range linkageNames {
		if strings.EqualFold(n, name) {
			return Linkage(i), nil
		}
	}
	return 0, fmt.Errorf("cluster: unknown linkage %q", name)
}

func (l Linkage) String() string {
	if l < 0 || int(l) >= len(linkageNames) {
		return fmt.Sprintf("Linkage(%d)", int(l))
	}
	return linkageNames[l]
}

// DefaultMaxRows is the sample size NewHAC uses when
// Options.MaxRows is zero.
const DefaultMaxRows = 2000

// HAC is hierarchical agglomerative clustering.
// Starting from one cluster per row, the two most similar
// clusters are merged until k clusters remain.
//
// Clustering n rows takes O(n^2) memory. If MaxRows is
// positive and there are more rows than that, MaxRows
// evenly spaced rows are clustered and every other row
// joins the cluster with the most similar centroid.
type HAC struct {
	Linkage    Linkage
	Similarity Similarity
	MaxRows    int
}

// NewHAC creates an HAC from Options.
// Empty options select mean linkage, cosine similarity,
// and DefaultMaxRows.
func NewHAC(opts Options) (*HAC, error) {
	res := &HAC{Linkage: MeanLinkage, Similarity: Cosine, MaxRows: DefaultMaxRows}
	if opts.Linkage != "" {
		l, err := ParseLinkage(opts.Linkage)
		if err != nil {
			return nil, err
		}
		res.Linkage = l
	}
	if opts.Similarity != "" {
		s, err := SimilarityNamed(opts.Similarity)
		if err != nil {
			return nil, err
		}
		res.Similarity = s
	}
	if opts.MaxRows < 0 {
		res.MaxRows = 0
	} else if opts.MaxRows > 0 {
		res.MaxRows = opts.MaxRows
	}
	return res, nil
}

// Cluster partitions the rows of m into min(k, rows)
// clusters, or min(k, MaxRows) when the rows are sampled.
// Clusters are numbered in the order of their first row.
func (h *HAC) Cluster(m sparse.RowReader, k int) (assignments []int, err error) {
	if k < 1 {
		return nil, ErrClusterCount
	}
	n := m.NumRows()
	switch n {
	case 0:
		return []int{}, nil
	case 1:
		return []int{0}, nil
	}

	sample := make([]int, n)
	for i := range sample {
		sample[i] = i
	}
	if h.MaxRows > 0 && n > h.MaxRows {
		sample = make([]int, h.MaxRows)
		for i := range sample {
			sample[i] = i * n / h.MaxRows
		}
	}

	rows := make([]*sparse.Vector, len(sample))
	for i, row := range sample {
		rows[i], err = m.RowVector(row)
		if err != nil {
			return nil, essentials.AddCtx("cluster rows", err)
		}
	}
	labels := renumber(h.agglomerate(rows, k))
	if len(sample) == n {
		return labels, nil
	}

	var numClusters int
	for _, l := range labels {
		numClusters = max(numClusters, l+1)
	}
	centroids := make([]*sparse.Vector, numClusters)
	sizes := make([]int, numClusters)
	for i, l := range labels {
		if centroids[l] == nil {
			centroids[l] = sparse.NewVector(rows[i].Len)
		}
		centroids[l].AddVector(rows[i])
		sizes[l]++
	}
	for l, c := range centroids {
		c.Scale(1 / float32(sizes[l]))
	}

	assignments = make([]int, n)
	var next int
	for row := 0; row < n; row++ {
		if next < len(sample) && sample[next] == row {
			assignments[row] = labels[next]
			next++
			continue
		}
		vec, err := m.RowVector(row)
		if err != nil {
			return nil, essentials.AddCtx("cluster rows", err)
		}
		best, bestSim := 0, math.Inf(-1)
		for l, c := range centroids {
			if sim := h.Similarity(vec, c); sim > bestSim {
				best, bestSim = l, sim
			}
		}
		assignments[row] = best
	}
	return renumber(assignments), nil
}

// agglomerate clusters rows until k clusters remain and
// returns an arbitrary cluster label for each row.
//
// Every cluster tracks its most similar partner, so a
// merge only rescans the clusters whose partner was
// involved in it.
func (h *HAC) agglomerate(rows []*sparse.Vector, k int) []int {
	n := len(rows)
	pointSim := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pointSim.SetSym(i, j, h.Similarity(rows[i], rows[j]))
		}
	}
	clusterSim := pointSim
	if h.Linkage == MedianLinkage {
		clusterSim = mat.NewSymDense(n, nil)
		clusterSim.CopySym(pointSim)
	}

	members := make([][]int, n)
	active := make([]bool, n)
	for i := range members {
		members[i] = []int{i}
		active[i] = true
	}

	nearest := make([]int, n)
	nearestSim := make([]float64, n)
	findNearest := func(i int) {
		nearest[i], nearestSim[i] = -1, math.Inf(-1)
		for j := 0; j < n; j++ {
			if j != i && active[j] {
				if s := clusterSim.At(i, j); s > nearestSim[i] {
					nearest[i], nearestSim[i] = j, s
				}
			}
		}
	}
	for i := range nearest {
		findNearest(i)
	}

	for remaining := n; remaining > k; remaining-- {
		a := -1
		for i := 0; i < n; i++ {
			if active[i] && nearest[i] >= 0 && (a < 0 || nearestSim[i] > nearestSim[a]) {
				a = i
			}
		}
		b := nearest[a]
		if b < a {
			a, b = b, a
		}
		h.merge(clusterSim, pointSim, members, active, a, b)

		for x := 0; x < n; x++ {
			if !active[x] || x == a {
				continue
			}
			if nearest[x] == a || nearest[x] == b {
				findNearest(x)
			} else if s := clusterSim.At(x, a); s > nearestSim[x] {
				nearest[x], nearestSim[x] = a, s
			}
		}
		findNearest(a)
	}

	labels := make([]int, n)
	for c, rows := range members {
		for _, r := range rows {
			labels[r] = c
		}
	}
	return labels
}

// merge folds cluster b into cluster a.
func (h *HAC) merge(clusterSim, pointSim *mat.SymDense, members [][]int, active []bool,
	a, b int) {
	na, nb := float64(len(members[a])), float64(len(members[b]))
	members[a] = append(members[a], members[b]...)
	members[b] = nil
	active[b] = false

	for x := range members {
		if !active[x] || x == a {
			continue
		}
		sa, sb := clusterSim.At(a, x), clusterSim.At(b, x)
		var s float64
		switch h.Linkage {
		case SingleLinkage:
			s = max(sa, sb)
		case CompleteLinkage:
			s = min(sa, sb)
		case MeanLinkage:
			s = (na*sa + nb*sb) / (na + nb)
		case MedianLinkage:
			s = medianSimilarity(pointSim, members[a], members[x])
		}
		clusterSim.SetSym(a, x, s)
	}
}

func medianSimilarity(pointSim *mat.SymDense, c1, c2 []int) float64 {
	sims := make([]float64, 0, len(c1)*len(c2))
	for _, i := range c1 {
		for _, j := range c2 {
			sims = append(sims, pointSim.At(i, j))
		}
	}
	sort.Float64s(sims)
	return sims[len(sims)/2]
}

// renumber maps labels to dense cluster numbers in the
// order of their first appearance.
func renumber(labels []int) []int {
	ids := map[int]int{}
	res := make([]int, len(labels))
	for i, l := range labels {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		res[i] = id
	}
	return res
}
