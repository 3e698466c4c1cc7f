package domain

// Score rates placing the computer's marker at (x, y). It is a single-ply
// ranking signal: 1000 for an immediate win, 100 for blocking an immediate
// player win, plus a bonus per line through the cell that is long enough to
// hold a run. Done boards, off-grid points and taken cells score 0.
func (b *Board) Score(x, y int) int {
	if b.Done() || !b.inside(x, y) || b.Marker(x, y) != Blank {
		return 0
	}
	score := 0
	computerTake := b.Place(x, y, b.computer)
	if computerTake.ComputerWin() {
		score += 1000
	}
	if b.Place(x, y, b.player).PlayerWin() {
		score += 100
	}

	lines, at := computerTake.linesThrough(x, y)
	for i, ln := range lines {
		if len(ln) < b.winLength {
			continue
		}
		// The taken cell counts as neither side for this pass.
		ln[at[i]] = Test
		hasPlayer, hasComputer := contains(ln, b.player), contains(ln, b.computer)
		switch {
		case hasPlayer && hasComputer:
			// blocked both ways
		case hasPlayer:
			score += 1
		case hasComputer:
			score += 10
		default:
			score += 2
		}
	}
	return score
}

// ScoreGrid returns Score for every cell, indexed [y][x]. Only lines through
// a cell count toward its score, so values are lower than a scorer summing
// every line on the board would give (an empty 3x3 center scores 8, not 16)
// while ranking cells the same way.
func (b *Board) ScoreGrid() [][]int {
	out := make([][]int, b.height)
	for y := range out {
		out[y] = make([]int, b.width)
		for x := range out[y] {
			out[y][x] = b.Score(x, y)
		}
	}
	return out
}

func contains(line []Marker, m Marker) bool {
	for _, c := range line {
		if c == m {
			return true
		}
	}
	return false
}
