package search

import (
	"sort"

	"github.com/thisarray/xoxo/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Candidate is a computer move ranked by the outcomes beneath it.
type Candidate struct {
	domain.Point
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// ComputerMove picks the computer's next move: an immediate win if there is
// one, otherwise a block of the player's immediate win, otherwise the open
// cell whose subtree holds the fewest losses and then the most wins. Done
// boards yield domain.NoMove.
func (s *Searcher) ComputerMove(b *domain.Board) domain.Point {
	if b.Done() {
		return domain.NoMove
	}
	win, block, open := s.scan(b)
	switch {
	case win != nil:
		s.log.Debug().Int("x", win.X).Int("y", win.Y).Msg("winning move")
		return *win
	case block != nil:
		s.log.Debug().Int("x", block.X).Int("y", block.Y).Msg("blocking move")
		return *block
	}
	ranked := s.rank(b, open)
	best := ranked[0]
	s.log.Debug().
		Int("x", best.X).Int("y", best.Y).
		Int("wins", best.Wins).Int("losses", best.Losses).
		Int("candidates", len(ranked)).
		Int("cache", s.cache.Len()).
		Msg("ranked move")
	return best.Point
}

// Candidates returns every move in the order ComputerMove would prefer them
// when no immediate win or block exists.
func (s *Searcher) Candidates(b *domain.Board) []Candidate {
	if b.Done() {
		return nil
	}
	var open []domain.Point
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.Marker(x, y) == domain.Blank {
				open = append(open, domain.Point{X: x, Y: y})
			}
		}
	}
	return s.rank(b, open)
}

// scan walks the blank cells x-major. The first immediate win ends the scan.
// When several cells need blocking the last one seen is kept, and cells after
// the first block are no longer queued for ranking.
func (s *Searcher) scan(b *domain.Board) (win, block *domain.Point, open []domain.Point) {
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.Marker(x, y) != domain.Blank {
				continue
			}
			p := domain.Point{X: x, Y: y}
			if b.Place(x, y, b.ComputerMarker()).ComputerWin() {
				return &p, nil, nil
			}
			if b.Place(x, y, b.PlayerMarker()).PlayerWin() {
				block = &p
				continue
			}
			if block == nil {
				open = append(open, p)
			}
		}
	}
	return nil, block, open
}

// rank evaluates the subtree under each move and sorts by ascending losses,
// then descending wins, ties kept in scan order.
func (s *Searcher) rank(b *domain.Board, moves []domain.Point) []Candidate {
	computer, player := b.ComputerMarker(), b.PlayerMarker()
	out := make([]Candidate, len(moves))
	eval := func(i int) {
		p := moves[i]
		o := s.Lookahead(b.Place(p.X, p.Y, computer), player)
		out[i] = Candidate{Point: p, Wins: o.Wins(computer), Losses: o.Losses(computer), Draws: o.Draws}
	}

	if s.workers > 1 && len(moves) > 1 {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i := range moves {
			i := i
			g.Go(func() error {
				eval(i)
				return nil
			})
		}
		// eval never fails, Wait only joins
		g.Wait()
	} else {
		for i := range moves {
			eval(i)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Losses != out[j].Losses {
			return out[i].Losses < out[j].Losses
		}
		return out[i].Wins > out[j].Wins
	})
	return out
}
