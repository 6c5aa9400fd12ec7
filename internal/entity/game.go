package entity

// Mark is the content of a single board cell.
type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

const BoardSize = 9

// Line is a triple of cell indices.
type Line [3]int

var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board holds the 3x3 grid in row-major order.
type Board [BoardSize]Mark

// Opponent returns the other player. Empty stays empty.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

func ValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

func (that *Board) IsEmpty(cell int) bool {
	return that[cell] == EmptyCell
}

// WinningLines returns every combo whose three cells hold the same non-empty mark.
func (that *Board) WinningLines() []Line {
	var lines []Line

	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			lines = append(lines, combo)
		}
	}

	return lines
}

func (that *Board) CheckWin() bool {
	return len(that.WinningLines()) > 0
}

// Winner returns the mark owning the first winning line, or EmptyCell.
func (that *Board) Winner() Mark {
	lines := that.WinningLines()
	if len(lines) == 0 {
		return EmptyCell
	}

	return that[lines[0][0]]
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that *Board) IsDraw() bool {
	return that.IsFull() && !that.CheckWin()
}

// IsDecided reports whether the position is terminal.
func (that *Board) IsDecided() bool {
	return that.CheckWin() || that.IsFull()
}

// Filled returns the number of non-empty cells.
func (that *Board) Filled() int {
	filled := 0
	for _, cell := range that {
		if cell != EmptyCell {
			filled++
		}
	}

	return filled
}

// Cells flattens lines into a de-duplicated, ordered list of indices.
func Cells(lines []Line) []int {
	var seen [BoardSize]bool
	for _, line := range lines {
		for _, idx := range line {
			seen[idx] = true
		}
	}

	cells := make([]int, 0, BoardSize)
	for idx, ok := range seen {
		if ok {
			cells = append(cells, idx)
		}
	}

	return cells
}

// AllCells lists every index of the board.
func AllCells() []int {
	cells := make([]int, BoardSize)
	for i := range cells {
		cells[i] = i
	}

	return cells
}
