package search

import (
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/thisarray/xoxo/internal/domain"
)

// Cache memoizes lookahead outcomes. Implementations must be safe for
// concurrent use; a lost race only costs a recomputation.
type Cache interface {
	Get(key string) (Outcome, bool)
	Add(key string, o Outcome)
	Len() int
}

// MapCache is an unbounded, append-only Cache.
type MapCache struct {
	mu sync.RWMutex
	m  map[string]Outcome
}

func NewMapCache() *MapCache { return &MapCache{m: make(map[string]Outcome)} }

func (c *MapCache) Get(key string) (Outcome, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.m[key]
	return o, ok
}

func (c *MapCache) Add(key string, o Outcome) {
	c.mu.Lock()
	c.m[key] = o
	c.mu.Unlock()
}

func (c *MapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// LRUCache keeps at most size outcomes, evicting the least recently used.
type LRUCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU
}

// NewLRUCache returns a bounded cache; size must be positive.
func NewLRUCache(size int) (*LRUCache, error) {
	lru, err := simplelru.NewLRU(size, nil)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lru: lru}, nil
}

func (c *LRUCache) Get(key string) (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(key); ok {
		return v.(Outcome), true
	}
	return Outcome{}, false
}

func (c *LRUCache) Add(key string, o Outcome) {
	c.mu.Lock()
	c.lru.Add(key, o)
	c.mu.Unlock()
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// cacheKey identifies a position by mover, geometry and cells. The geometry
// is part of the key so one cache can serve boards of different shapes.
func cacheKey(b *domain.Board, mover domain.Marker) string {
	var sb strings.Builder
	sb.Grow(16 + b.Width()*b.Height())
	sb.WriteByte(byte(mover))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(b.Width()))
	sb.WriteByte('x')
	sb.WriteString(strconv.Itoa(b.Height()))
	sb.WriteByte('x')
	sb.WriteString(strconv.Itoa(b.WinLength()))
	sb.WriteByte(':')
	sb.WriteString(b.Cells())
	return sb.String()
}
