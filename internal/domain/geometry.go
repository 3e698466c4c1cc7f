package domain

// line walks from (x, y) in steps of (dx, dy) until it leaves the grid.
func (b *Board) line(x, y, dx, dy int) []Marker {
	var out []Marker
	for b.inside(x, y) {
		out = append(out, b.cells[b.index(x, y)])
		x += dx
		y += dy
	}
	return out
}

func (b *Board) rowLines() [][]Marker {
	out := make([][]Marker, 0, b.height)
	for y := 0; y < b.height; y++ {
		out = append(out, b.line(0, y, 1, 0))
	}
	return out
}

func (b *Board) columnLines() [][]Marker {
	out := make([][]Marker, 0, b.width)
	for x := 0; x < b.width; x++ {
		out = append(out, b.line(x, 0, 0, 1))
	}
	return out
}

// leftDiagonalLines lists the diagonals of constant x+y, read downward.
func (b *Board) leftDiagonalLines() [][]Marker {
	out := make([][]Marker, 0, b.width+b.height-1)
	for x := 0; x < b.width; x++ {
		out = append(out, b.line(x, 0, -1, 1))
	}
	for y := 1; y < b.height; y++ {
		out = append(out, b.line(b.width-1, y, -1, 1))
	}
	return out
}

// rightDiagonalLines lists the diagonals of constant x-y, read downward,
// starting from the bottom-left corner.
func (b *Board) rightDiagonalLines() [][]Marker {
	out := make([][]Marker, 0, b.width+b.height-1)
	for y := b.height - 1; y > 0; y-- {
		out = append(out, b.line(0, y, 1, 1))
	}
	for x := 0; x < b.width; x++ {
		out = append(out, b.line(x, 0, 1, 1))
	}
	return out
}

func (b *Board) allLines() [][]Marker {
	var out [][]Marker
	out = append(out, b.rowLines()...)
	out = append(out, b.columnLines()...)
	out = append(out, b.leftDiagonalLines()...)
	out = append(out, b.rightDiagonalLines()...)
	return out
}

// linesThrough returns the row, column and both diagonals containing (x, y),
// each paired with the position of (x, y) inside it.
func (b *Board) linesThrough(x, y int) ([][]Marker, []int) {
	kl := min(y, b.width-1-x)
	kr := min(x, y)
	lines := [][]Marker{
		b.line(0, y, 1, 0),
		b.line(x, 0, 0, 1),
		b.line(x+kl, y-kl, -1, 1),
		b.line(x-kr, y-kr, 1, 1),
	}
	return lines, []int{x, y, kl, kr}
}

// Rows returns one string per row, top to bottom.
func (b *Board) Rows() []string { return toStrings(b.rowLines()) }

// Columns returns one string per column, left to right.
func (b *Board) Columns() []string { return toStrings(b.columnLines()) }

// LeftDiagonals returns every diagonal running from upper right to lower left.
func (b *Board) LeftDiagonals() []string { return toStrings(b.leftDiagonalLines()) }

// RightDiagonals returns every diagonal running from upper left to lower right.
func (b *Board) RightDiagonals() []string { return toStrings(b.rightDiagonalLines()) }

func (b *Board) hasRun(m Marker) bool {
	for _, ln := range b.allLines() {
		if hasRun(ln, m, b.winLength) {
			return true
		}
	}
	return false
}

// hasRun reports whether line holds n consecutive copies of m.
func hasRun(line []Marker, m Marker, n int) bool {
	run := 0
	for _, c := range line {
		if c != m {
			run = 0
			continue
		}
		run++
		if run >= n {
			return true
		}
	}
	return false
}

func toStrings(lines [][]Marker) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		s := make([]byte, len(ln))
		for j, c := range ln {
			s[j] = byte(c)
		}
		out[i] = string(s)
	}
	return out
}
