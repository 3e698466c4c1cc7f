package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned by Parse for text that is not a board encoding.
var ErrMalformed = errors.New("malformed board encoding")

const delimiter = string(Test)

// String encodes the board as width?height?winLength?player?computer?cells.
func (b *Board) String() string {
	return strings.Join([]string{
		strconv.Itoa(b.width),
		strconv.Itoa(b.height),
		strconv.Itoa(b.winLength),
		b.player.String(),
		b.computer.String(),
		b.Cells(),
	}, delimiter)
}

// Parse decodes a board produced by String.
func Parse(s string) (*Board, error) {
	parts := strings.Split(s, delimiter)
	if len(parts) != 6 {
		return nil, fmt.Errorf("%w: want 6 fields, got %d", ErrMalformed, len(parts))
	}
	dims := make([]int, 3)
	for i, name := range []string{"width", "height", "length"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		dims[i] = n
	}
	if len(parts[3]) != 1 || len(parts[4]) != 1 {
		return nil, fmt.Errorf("%w: markers must be single characters", ErrMalformed)
	}
	b, err := FromCells(dims[0], dims[1], dims[2], Marker(parts[3][0]), Marker(parts[4][0]), parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return b, nil
}
