package bot

import "github.com/xogame/arena/internal/model"

// Strategy defines how the automated opponent chooses a move
type Strategy interface {
	// ChooseCell returns the 0-based index of an empty cell for the
	// given side to play. The board must not be observably mutated.
	ChooseCell(board model.Board, side model.Mark) int
}
