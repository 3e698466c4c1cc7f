package sim

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/thisarray/xoxo/internal/domain"
)

// ErrIllegalMove is returned when a robot picks a cell that cannot be played.
var ErrIllegalMove = errors.New("illegal move")

// Settings is the board geometry of a simulated game.
type Settings struct {
	Width     int
	Height    int
	WinLength int
}

// Stats counts simulated results. Every game lands in exactly one of
// WinsA, WinsB and Draws.
type Stats struct {
	Games int `json:"games"`
	WinsA int `json:"wins_a"`
	WinsB int `json:"wins_b"`
	Draws int `json:"draws"`
}

// Play runs one game where a opens as X and b answers as O. The returned
// board is seen from a's side: a is its computer, b its player.
func Play(st Settings, a, b Robot) (*domain.Board, error) {
	board, err := domain.New(st.Width, st.Height, st.WinLength, domain.O, domain.X)
	if err != nil {
		return nil, err
	}
	for turn := 0; !board.Done(); turn++ {
		var next *domain.Board
		if turn%2 == 0 {
			p := a.PickMove(board)
			next = board.Mark(p.X, p.Y, true)
		} else {
			p := b.PickMove(board.Swap())
			next = board.Mark(p.X, p.Y, false)
		}
		if next == board {
			return board, fmt.Errorf("%w on turn %d of %s", ErrIllegalMove, turn, board)
		}
		board = next
	}
	return board, nil
}

// Run plays n games between a and b, alternating who opens.
func Run(n int, st Settings, a, b Robot, log zerolog.Logger) (Stats, error) {
	var stats Stats
	for i := 0; i < n; i++ {
		first, second := a, b
		if i%2 == 1 {
			first, second = b, a
		}
		final, err := Play(st, first, second)
		if err != nil {
			return stats, fmt.Errorf("game %d: %w", i+1, err)
		}
		stats.Games++
		// the opener is the computer of the final board
		aOpened := i%2 == 0
		winner := "draw"
		switch {
		case !final.ComputerWin() && !final.PlayerWin():
			stats.Draws++
		case final.ComputerWin() == aOpened:
			stats.WinsA++
			winner = "a"
		default:
			stats.WinsB++
			winner = "b"
		}
		log.Debug().Int("game", i+1).Str("winner", winner).Str("board", final.String()).Msg("game played")
	}
	return stats, nil
}
