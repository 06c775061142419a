package diskmat

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/unixpickle/wordsense/sparse"
)

// rowCache holds decoded rows.
// A nil *rowCache caches nothing.
type rowCache struct {
	rows *lru.Cache[int, *sparse.Vector]
}

func newRowCache(size int) (*rowCache, error) {
	if size <= 0 {
		return nil, nil
	}
	rows, err := lru.New[int, *sparse.Vector](size)
	if err != nil {
		return nil, err
	}
	return &rowCache{rows: rows}, nil
}

func (c *rowCache) get(row int) (*sparse.Vector, bool) {
	if c == nil {
		return nil, false
	}
	return c.rows.Get(row)
}

func (c *rowCache) add(row int, v *sparse.Vector) {
	if c != nil {
		c.rows.Add(row, v)
	}
}

func (c *rowCache) purge() {
	if c != nil {
		c.rows.Purge()
	}
}
