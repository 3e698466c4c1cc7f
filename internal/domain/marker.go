package domain

// Marker is the symbol occupying a cell.
type Marker byte

const (
	Blank Marker = ' '
	X     Marker = 'X'
	O     Marker = 'O'
	// Test is scratch space for scoring and the field delimiter of the
	// text encoding. It never appears in a Board handed to a caller.
	Test Marker = '?'
)

func (m Marker) String() string { return string(rune(m)) }

// Opponent returns the other playing marker, or Blank for non-playing markers.
func (m Marker) Opponent() Marker {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Blank
	}
}

// Playing reports whether m is X or O.
func (m Marker) Playing() bool { return m == X || m == O }

// Point is a cell coordinate, x across and y down.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoMove is returned when there is nothing left to play.
var NoMove = Point{X: -1, Y: -1}
