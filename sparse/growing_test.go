package sparse

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowingMatrixGrows(t *testing.T) {
	g := NewGrowingMatrix()
	assert.Equal(t, 0, g.NumRows())
	assert.Equal(t, int64(0), g.Get(3, 3))

	assert.Equal(t, int64(2), g.AddAndGet(3, 7, 2))
	assert.Equal(t, int64(3), g.AddAndGet(3, 7, 1))
	g.AddAndGet(1, 2, 1)

	assert.Equal(t, 4, g.NumRows())
	assert.Equal(t, 8, g.NumCols())

	cols, counts := g.RowCounts(3)
	assert.Equal(t, []int{7}, cols)
	assert.Equal(t, []int64{3}, counts)

	cols, counts = g.RowCounts(10)
	assert.Empty(t, cols)
	assert.Empty(t, counts)

	row, err := g.RowVector(3)
	require.NoError(t, err)
	assert.Equal(t, 8, row.Len)
	assert.Equal(t, float32(3), row.Get(7))
}

func TestGrowingMatrixConcurrent(t *testing.T) {
	const workers = 8
	const writes = 2000

	g := NewGrowingMatrix()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				g.AddAndGet(i%50, (i*7)%60, 1)
			}
		}()
	}
	wg.Wait()

	var total int64
	for row := 0; row < g.NumRows(); row++ {
		_, counts := g.RowCounts(row)
		for _, c := range counts {
			total += c
		}
	}
	assert.Equal(t, int64(workers*writes), total)
	assert.Equal(t, 50, g.NumRows())
}

func BenchmarkGrowingMatrixAdd(b *testing.B) {
	ids := make([]int, 10000)
	for i := range ids {
		ids[i] = rand.Intn(5000)
	}
	g := NewGrowingMatrix()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.AddAndGet(ids[i%len(ids)], ids[(i+1)%len(ids)], 1)
	}
}
