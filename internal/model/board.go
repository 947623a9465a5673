package model

import "strings"

// Mark is the symbol occupying a board cell
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Other returns the opposing mark
func (m Mark) Other() Mark {
	if m == X {
		return O
	}
	return X
}

// Result is the outcome of evaluating a board
type Result string

const (
	ResultNone  Result = ""
	ResultXWins Result = "X"
	ResultOWins Result = "O"
	ResultDraw  Result = "draw"
)

// BoardSize is the number of cells on a tic-tac-toe board
const BoardSize = 9

// Board is the 9-cell grid in row-major order
type Board [BoardSize]Mark

// lines are the 8 winning triples: 3 rows, 3 columns, 2 diagonals
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate returns the outcome of the board: a decisive winner if any
// line holds three of the same mark, a draw if the board is full, and
// ResultNone otherwise.
func (b Board) Evaluate() Result {
	for _, line := range lines {
		m := b[line[0]]
		if m != Empty && m == b[line[1]] && m == b[line[2]] {
			if m == X {
				return ResultXWins
			}
			return ResultOWins
		}
	}
	if b.IsFull() {
		return ResultDraw
	}
	return ResultNone
}

// IsFull returns true if no cell is empty
func (b Board) IsFull() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// IsEmpty returns true if the cell at idx is unoccupied
func (b Board) IsEmpty(idx int) bool {
	return b[idx] == Empty
}

// Render formats the board as a 3-row grid. Empty cells show their
// 1-based index, occupied cells show the mark:
//
//	1 | X | 3
//	4 | O | 6
//	7 | 8 | 9
func (b Board) Render() string {
	cells := make([]string, BoardSize)
	for i, m := range b {
		if m == Empty {
			cells[i] = string(rune('1' + i))
		} else {
			cells[i] = string(m)
		}
	}

	rows := make([]string, 0, 3)
	for i := 0; i < BoardSize; i += 3 {
		rows = append(rows, strings.Join(cells[i:i+3], " | "))
	}
	return strings.Join(rows, "\n")
}

// WinnerFor maps a mark to the result declaring it the winner
func WinnerFor(m Mark) Result {
	if m == X {
		return ResultXWins
	}
	return ResultOWins
}
