package domain

import "errors"

// Errors returned by board constructors. Game-logic violations (occupied
// cells, out of range moves, moves after the end) are never errors: Place
// returns the receiver unchanged instead.
var (
	ErrInvalidMarkers = errors.New("player and computer markers must be X and O")
	ErrCellCount      = errors.New("cell count does not match dimensions")
	ErrInvalidCell    = errors.New("invalid cell marker")
)

// Board is one immutable game position, cells stored row-major.
type Board struct {
	width     int
	height    int
	winLength int
	player    Marker
	computer  Marker
	cells     []Marker

	playerWin   bool
	computerWin bool
	full        bool
}

// New returns an empty board. Width and height are clamped to at least 1 and
// the run length to at least 2.
func New(width, height, winLength int, player, computer Marker) (*Board, error) {
	if !player.Playing() || !computer.Playing() || player == computer {
		return nil, ErrInvalidMarkers
	}
	width, height = max(1, width), max(1, height)
	cells := make([]Marker, width*height)
	for i := range cells {
		cells[i] = Blank
	}
	return build(width, height, max(2, winLength), player, computer, cells), nil
}

// FromCells returns a board holding the given row-major cell contents.
func FromCells(width, height, winLength int, player, computer Marker, cells string) (*Board, error) {
	b, err := New(width, height, winLength, player, computer)
	if err != nil {
		return nil, err
	}
	if len(cells) != len(b.cells) {
		return nil, ErrCellCount
	}
	out := make([]Marker, len(cells))
	for i := 0; i < len(cells); i++ {
		m := Marker(cells[i])
		if m != Blank && !m.Playing() {
			return nil, ErrInvalidCell
		}
		out[i] = m
	}
	return build(b.width, b.height, b.winLength, player, computer, out), nil
}

// build takes ownership of cells and computes the terminal state.
func build(width, height, winLength int, player, computer Marker, cells []Marker) *Board {
	b := &Board{
		width:     width,
		height:    height,
		winLength: winLength,
		player:    player,
		computer:  computer,
		cells:     cells,
	}
	b.playerWin = b.hasRun(player)
	b.computerWin = b.hasRun(computer)
	b.full = true
	for _, c := range cells {
		if c == Blank {
			b.full = false
			break
		}
	}
	return b
}

func (b *Board) Width() int             { return b.width }
func (b *Board) Height() int            { return b.height }
func (b *Board) WinLength() int         { return b.winLength }
func (b *Board) PlayerMarker() Marker   { return b.player }
func (b *Board) ComputerMarker() Marker { return b.computer }

// PlayerWin reports whether the player has a run of WinLength markers.
func (b *Board) PlayerWin() bool { return b.playerWin }

// ComputerWin reports whether the computer has a run of WinLength markers.
func (b *Board) ComputerWin() bool { return b.computerWin }

// Done reports whether the game is over by a win or a full board.
func (b *Board) Done() bool { return b.playerWin || b.computerWin || b.full }

func (b *Board) index(x, y int) int { return x + y*b.width }

func (b *Board) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// Marker returns the marker at (x, y), Blank when outside the grid.
func (b *Board) Marker(x, y int) Marker {
	if !b.inside(x, y) {
		return Blank
	}
	return b.cells[b.index(x, y)]
}

// Cells returns the row-major cell contents.
func (b *Board) Cells() string {
	out := make([]byte, len(b.cells))
	for i, c := range b.cells {
		out[i] = byte(c)
	}
	return string(out)
}

// Moves counts the non-blank cells.
func (b *Board) Moves() int {
	n := 0
	for _, c := range b.cells {
		if c != Blank {
			n++
		}
	}
	return n
}

// Place returns a new board with m at (x, y). The receiver itself is returned
// when the game is done, the point is off the grid, the cell is taken, or m
// is not one of the two configured markers.
func (b *Board) Place(x, y int, m Marker) *Board {
	if b.Done() || !b.inside(x, y) {
		return b
	}
	idx := b.index(x, y)
	if b.cells[idx] != Blank {
		return b
	}
	if m != b.player && m != b.computer {
		return b
	}
	cells := make([]Marker, len(b.cells))
	copy(cells, b.cells)
	cells[idx] = m
	return build(b.width, b.height, b.winLength, b.player, b.computer, cells)
}

// Mark places the computer's or the player's marker at (x, y).
func (b *Board) Mark(x, y int, isComputer bool) *Board {
	if isComputer {
		return b.Place(x, y, b.computer)
	}
	return b.Place(x, y, b.player)
}

// Swap returns the same position with the player and computer roles exchanged.
func (b *Board) Swap() *Board {
	return build(b.width, b.height, b.winLength, b.computer, b.player, b.cells)
}

// Equal reports whether both boards have the same dimensions, markers and cells.
func (b *Board) Equal(o *Board) bool {
	if b == o {
		return true
	}
	if b == nil || o == nil {
		return false
	}
	if b.width != o.width || b.height != o.height || b.winLength != o.winLength {
		return false
	}
	if b.player != o.player || b.computer != o.computer {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}
