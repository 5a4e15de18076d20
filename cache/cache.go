package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memo is a bounded, thread-safe lookup keyed by video identifier. When full,
// the least recently used entry is evicted.
type Memo[V any] struct {
	entries *lru.Cache[string, V]
	hits    atomic.Int64
	misses  atomic.Int64
}

// Stats reports cache usage for the health endpoint.
type Stats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func New[V any](size int) (*Memo[V], error) {
	entries, err := lru.New[string, V](size)
	if err != nil {
		return nil, err
	}
	return &Memo[V]{entries: entries}, nil
}

func (m *Memo[V]) Get(key string) (V, bool) {
	v, ok := m.entries.Get(key)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Add stores value under key. Concurrent first lookups may both add; the
// last write wins.
func (m *Memo[V]) Add(key string, value V) {
	m.entries.Add(key, value)
}

func (m *Memo[V]) Len() int {
	return m.entries.Len()
}

func (m *Memo[V]) Stats() Stats {
	return Stats{
		Size:   m.entries.Len(),
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}
}
