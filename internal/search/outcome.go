package search

import "github.com/thisarray/xoxo/internal/domain"

// Outcome counts the terminal positions reachable from a board.
type Outcome struct {
	OWins int `json:"o_wins"`
	XWins int `json:"x_wins"`
	Draws int `json:"draws"`
}

// Add returns the elementwise sum.
func (o Outcome) Add(p Outcome) Outcome {
	return Outcome{OWins: o.OWins + p.OWins, XWins: o.XWins + p.XWins, Draws: o.Draws + p.Draws}
}

// Total is the number of leaves counted.
func (o Outcome) Total() int { return o.OWins + o.XWins + o.Draws }

// Wins returns the leaves won by m.
func (o Outcome) Wins(m domain.Marker) int {
	switch m {
	case domain.O:
		return o.OWins
	case domain.X:
		return o.XWins
	}
	return 0
}

// Losses returns the leaves won by m's opponent.
func (o Outcome) Losses(m domain.Marker) int { return o.Wins(m.Opponent()) }

func winFor(m domain.Marker) Outcome {
	if m == domain.O {
		return Outcome{OWins: 1}
	}
	return Outcome{XWins: 1}
}
