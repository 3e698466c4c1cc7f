// Package sim plays robots against each other.
package sim

import (
	"lukechampine.com/frand"

	"github.com/thisarray/xoxo/internal/domain"
	"github.com/thisarray/xoxo/internal/search"
)

// Robot picks a move for the computer side of b. It returns
// domain.NoMove only when b has no blank cell.
type Robot interface {
	PickMove(b *domain.Board) domain.Point
}

// AIRobot plays the full three tier policy.
type AIRobot struct {
	searcher *search.Searcher
}

// NewAIRobot returns a robot searching with s, or with a fresh searcher when
// s is nil.
func NewAIRobot(s *search.Searcher) *AIRobot {
	if s == nil {
		s = search.New()
	}
	return &AIRobot{searcher: s}
}

// PickMove for an AIRobot is the searcher's computer move.
func (r *AIRobot) PickMove(b *domain.Board) domain.Point {
	return r.searcher.ComputerMove(b)
}

// Stats exposes the searcher's work counters.
func (r *AIRobot) Stats() search.Stats { return r.searcher.Stats() }

// ScoreRobot greedily plays the cell with the highest heuristic score,
// taking the first in x-major order on ties.
type ScoreRobot struct{}

func (ScoreRobot) PickMove(b *domain.Board) domain.Point {
	best, bestScore := domain.NoMove, -1
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.Marker(x, y) != domain.Blank {
				continue
			}
			if s := b.Score(x, y); s > bestScore {
				best, bestScore = domain.Point{X: x, Y: y}, s
			}
		}
	}
	return best
}

// RandomRobot plays a uniformly random blank cell.
type RandomRobot struct{}

func (RandomRobot) PickMove(b *domain.Board) domain.Point {
	var open []domain.Point
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.Marker(x, y) == domain.Blank {
				open = append(open, domain.Point{X: x, Y: y})
			}
		}
	}
	if len(open) == 0 {
		return domain.NoMove
	}
	return open[frand.Intn(len(open))]
}
