// Package search counts game-tree outcomes and picks the computer's moves.
package search

import (
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/thisarray/xoxo/internal/domain"
)

// Searcher runs exhaustive lookahead over one memo cache. The search has no
// depth limit, so callers must keep boards small; every open cell multiplies
// the tree.
type Searcher struct {
	cache    Cache
	workers  int
	log      zerolog.Logger
	expanded atomic.Int64
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithCache sets the memo cache, e.g. one shared by a game session.
func WithCache(c Cache) Option {
	return func(s *Searcher) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithWorkers evaluates up to n ranked candidates concurrently.
func WithWorkers(n int) Option {
	return func(s *Searcher) { s.workers = max(1, n) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Searcher) { s.log = l }
}

// New returns a Searcher with a fresh unbounded cache unless one is given.
func New(opts ...Option) *Searcher {
	s := &Searcher{workers: 1, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NewMapCache()
	}
	return s
}

// Stats describes the work done so far.
type Stats struct {
	CacheEntries int   `json:"cache_entries"`
	Expanded     int64 `json:"expanded"`
}

func (s *Searcher) Stats() Stats {
	return Stats{CacheEntries: s.cache.Len(), Expanded: s.expanded.Load()}
}

// Lookahead enumerates every game continuing from b with mover to play and
// alternating afterwards, counting each terminal position once. A mover
// other than X or O cannot place anything, so an unfinished board yields the
// zero Outcome.
func (s *Searcher) Lookahead(b *domain.Board, mover domain.Marker) Outcome {
	switch {
	case b.PlayerWin():
		return winFor(b.PlayerMarker())
	case b.ComputerWin():
		return winFor(b.ComputerMarker())
	case b.Done():
		return Outcome{Draws: 1}
	}
	if !mover.Playing() {
		return Outcome{}
	}

	key := cacheKey(b, mover)
	if o, ok := s.cache.Get(key); ok {
		return o
	}
	s.expanded.Add(1)
	next := mover.Opponent()
	var total Outcome
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.Marker(x, y) != domain.Blank {
				continue
			}
			total = total.Add(s.Lookahead(b.Place(x, y, mover), next))
		}
	}
	s.cache.Add(key, total)
	return total
}
