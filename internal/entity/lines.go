package entity

// WinLines - the 8 winning index triples: rows, columns, then both diagonals.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// HasLine - reports whether any winning line consists entirely of mark.
func (that *Board) HasLine(mark Mark) bool {
	if mark == EmptyCell {
		return false
	}

	for _, line := range WinLines {
		if that[line[0]] == mark && that[line[1]] == mark && that[line[2]] == mark {
			return true
		}
	}

	return false
}

// Result - returns the winner's mark, PlayerTie for a full board without a line, or EmptyCell while play continues.
func (that *Board) Result() Mark {
	switch {
	case that.HasLine(PlayerX):
		return PlayerX
	case that.HasLine(PlayerO):
		return PlayerO
	case that.IsFull():
		return PlayerTie
	default:
		return EmptyCell
	}
}
