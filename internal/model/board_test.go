package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boardOf(marks ...Mark) Board {
	var b Board
	copy(b[:], marks)
	return b
}

func TestEvaluateEmptyBoardIsUndecided(t *testing.T) {
	var b Board
	assert.Equal(t, ResultNone, b.Evaluate())
}

func TestEvaluateRowWin(t *testing.T) {
	b := boardOf(
		X, X, X,
		O, O, Empty,
		Empty, Empty, Empty,
	)
	assert.Equal(t, ResultXWins, b.Evaluate())
}

func TestEvaluateColumnWin(t *testing.T) {
	b := boardOf(
		X, O, Empty,
		X, O, Empty,
		Empty, O, X,
	)
	assert.Equal(t, ResultOWins, b.Evaluate())
}

func TestEvaluateDiagonalWins(t *testing.T) {
	main := boardOf(
		X, O, Empty,
		O, X, Empty,
		Empty, Empty, X,
	)
	assert.Equal(t, ResultXWins, main.Evaluate())

	anti := boardOf(
		X, X, O,
		Empty, O, Empty,
		O, Empty, X,
	)
	assert.Equal(t, ResultOWins, anti.Evaluate())
}

func TestEvaluateDraw(t *testing.T) {
	b := boardOf(
		X, O, X,
		X, O, O,
		O, X, X,
	)
	assert.Equal(t, ResultDraw, b.Evaluate())
}

func TestEvaluateFullBoardWithWinnerIsNotDraw(t *testing.T) {
	b := boardOf(
		X, X, X,
		O, O, X,
		O, X, O,
	)
	assert.Equal(t, ResultXWins, b.Evaluate())
}

func TestIsFull(t *testing.T) {
	var b Board
	assert.False(t, b.IsFull())

	for i := range b {
		b[i] = X
	}
	assert.True(t, b.IsFull())
}

func TestIsEmpty(t *testing.T) {
	var b Board
	b[4] = O
	assert.True(t, b.IsEmpty(0))
	assert.False(t, b.IsEmpty(4))
}

func TestRenderEmptyBoardShowsCellNumbers(t *testing.T) {
	var b Board
	assert.Equal(t, "1 | 2 | 3\n4 | 5 | 6\n7 | 8 | 9", b.Render())
}

func TestRenderMixedBoard(t *testing.T) {
	b := boardOf(
		Empty, X, Empty,
		Empty, O, Empty,
		Empty, Empty, Empty,
	)
	assert.Equal(t, "1 | X | 3\n4 | O | 6\n7 | 8 | 9", b.Render())
}

func TestMarkOther(t *testing.T) {
	assert.Equal(t, O, X.Other())
	assert.Equal(t, X, O.Other())
}

func TestWinnerFor(t *testing.T) {
	assert.Equal(t, ResultXWins, WinnerFor(X))
	assert.Equal(t, ResultOWins, WinnerFor(O))
}
