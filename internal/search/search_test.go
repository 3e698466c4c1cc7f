package search

import (
	"testing"

	"github.com/thisarray/xoxo/internal/domain"
)

func mustBoard(t *testing.T, w, h, n int, player, computer domain.Marker, cells string) *domain.Board {
	t.Helper()
	b, err := domain.FromCells(w, h, n, player, computer, cells)
	if err != nil {
		t.Fatalf("FromCells(%q) failed: %v", cells, err)
	}
	return b
}

func emptyBoard(t *testing.T) *domain.Board {
	t.Helper()
	b, err := domain.New(3, 3, 3, domain.X, domain.O)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return b
}

// countLeaves walks the tree without memoization.
func countLeaves(b *domain.Board, mover domain.Marker) int {
	if b.Done() {
		return 1
	}
	n := 0
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.Marker(x, y) == domain.Blank {
				n += countLeaves(b.Place(x, y, mover), mover.Opponent())
			}
		}
	}
	return n
}

func TestLookaheadCornerOpenings(t *testing.T) {
	s := New()
	b := emptyBoard(t)
	want := Outcome{OWins: 7896, XWins: 14652, Draws: 5184}
	for _, p := range []domain.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}} {
		got := s.Lookahead(b.Place(p.X, p.Y, b.PlayerMarker()), domain.O)
		if got != want {
			t.Fatalf("corner %v: got %+v, want %+v", p, got, want)
		}
	}
}

func TestLookaheadCenterOpening(t *testing.T) {
	b := emptyBoard(t)
	got := New().Lookahead(b.Place(1, 1, b.PlayerMarker()), domain.O)
	want := Outcome{OWins: 5616, XWins: 15648, Draws: 4608}
	if got != want {
		t.Fatalf("center: got %+v, want %+v", got, want)
	}
}

func TestLookaheadTerminalBoards(t *testing.T) {
	cases := []struct {
		cells string
		want  Outcome
	}{
		{"OOO X    ", Outcome{OWins: 1}},
		{"OO XXX   ", Outcome{XWins: 1}},
		{"OXXXXOOOX", Outcome{Draws: 1}},
	}
	s := New()
	for _, c := range cases {
		b := mustBoard(t, 3, 3, 3, domain.X, domain.O, c.cells)
		for _, mover := range []domain.Marker{domain.O, domain.X} {
			if got := s.Lookahead(b, mover); got != c.want {
				t.Fatalf("%q mover %v: got %+v, want %+v", c.cells, mover, got, c.want)
			}
		}
	}
}

func TestLookaheadIgnoresNonPlayingMover(t *testing.T) {
	s := New()
	for _, mover := range []domain.Marker{domain.Blank, domain.Test, 'Z'} {
		if got := s.Lookahead(emptyBoard(t), mover); got != (Outcome{}) {
			t.Fatalf("mover %q: got %+v, want zero outcome", mover, got)
		}
	}
	if s.Stats().CacheEntries != 0 {
		t.Fatalf("nothing should be cached for a non-playing mover")
	}
	// finished boards still report their result
	done := mustBoard(t, 3, 3, 3, domain.X, domain.O, "OOO X    ")
	if got := s.Lookahead(done, domain.Blank); got != (Outcome{OWins: 1}) {
		t.Fatalf("terminal board: got %+v", got)
	}
}

func TestLookaheadCountsEveryLeafOnce(t *testing.T) {
	boards := []*domain.Board{
		mustBoard(t, 3, 3, 3, domain.X, domain.O, "X   O    "),
		mustBoard(t, 3, 3, 3, domain.O, domain.X, " X  O   X"),
		mustBoard(t, 4, 2, 3, domain.X, domain.O, "        "),
		mustBoard(t, 3, 4, 5, domain.X, domain.O, "XO  OX XO   "),
	}
	for _, b := range boards {
		for _, mover := range []domain.Marker{domain.X, domain.O} {
			got := New().Lookahead(b, mover).Total()
			if want := countLeaves(b, mover); got != want {
				t.Fatalf("%s mover %v: total %d, want %d leaves", b, mover, got, want)
			}
		}
	}
}

func TestLookaheadSharedCacheAcrossGeometries(t *testing.T) {
	cache := NewMapCache()
	s := New(WithCache(cache))
	wide := mustBoard(t, 9, 1, 3, domain.X, domain.O, "XO XO    ")
	square := mustBoard(t, 3, 3, 3, domain.X, domain.O, "XO XO    ")
	gotWide := s.Lookahead(wide, domain.X)
	gotSquare := s.Lookahead(square, domain.X)
	if want := New().Lookahead(square, domain.X); gotSquare != want {
		t.Fatalf("shared cache leaked between geometries: got %+v, want %+v", gotSquare, want)
	}
	if gotWide.Total() != countLeaves(wide, domain.X) {
		t.Fatalf("wide board total %d, want %d", gotWide.Total(), countLeaves(wide, domain.X))
	}
	if cache.Len() == 0 {
		t.Fatalf("expected cache entries")
	}
}

func TestLRUCacheGivesSameOutcome(t *testing.T) {
	lru, err := NewLRUCache(64)
	if err != nil {
		t.Fatalf("NewLRUCache: %v", err)
	}
	b := emptyBoard(t).Place(0, 0, domain.X)
	got := New(WithCache(lru)).Lookahead(b, domain.O)
	if want := (Outcome{OWins: 7896, XWins: 14652, Draws: 5184}); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if lru.Len() > 64 {
		t.Fatalf("LRU grew past its bound: %d", lru.Len())
	}
	if _, err := NewLRUCache(0); err == nil {
		t.Fatalf("expected error for zero size")
	}
}

func TestOutcomePerspective(t *testing.T) {
	o := Outcome{OWins: 3, XWins: 5, Draws: 2}
	if o.Wins(domain.O) != 3 || o.Losses(domain.O) != 5 {
		t.Fatalf("O perspective wrong: wins=%d losses=%d", o.Wins(domain.O), o.Losses(domain.O))
	}
	if o.Wins(domain.X) != 5 || o.Losses(domain.X) != 3 {
		t.Fatalf("X perspective wrong")
	}
	if o.Total() != 10 {
		t.Fatalf("total = %d", o.Total())
	}
	if sum := o.Add(Outcome{Draws: 1}); sum.Draws != 3 {
		t.Fatalf("add = %+v", sum)
	}
}

func TestStatsTrackWork(t *testing.T) {
	s := New()
	s.Lookahead(emptyBoard(t).Place(1, 1, domain.X), domain.O)
	st := s.Stats()
	if st.CacheEntries == 0 || st.Expanded == 0 {
		t.Fatalf("expected work recorded, got %+v", st)
	}
	if int64(st.CacheEntries) != st.Expanded {
		t.Fatalf("every expansion should be cached once: %+v", st)
	}
}
