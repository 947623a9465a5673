package bot

import "github.com/xogame/arena/internal/model"

// MinimaxStrategy plays perfectly via exhaustive game-tree search.
// Terminal positions score +1 / -1 / 0 for win / loss / draw with no
// depth discount, and score ties break on the first-encountered index,
// so the choice is deterministic for a given board but does not prefer
// a faster win over a slower one. The search space is bounded by the
// nine cells, so no pruning or depth limit is needed.
type MinimaxStrategy struct{}

// NewMinimaxStrategy creates a new MinimaxStrategy
func NewMinimaxStrategy() *MinimaxStrategy {
	return &MinimaxStrategy{}
}

// Ensure MinimaxStrategy implements Strategy
var _ Strategy = (*MinimaxStrategy)(nil)

// ChooseCell returns the optimal move for side. It panics only if the
// board is already full, which callers rule out by evaluating first.
func (s *MinimaxStrategy) ChooseCell(board model.Board, side model.Mark) int {
	bestMove := -1
	bestScore := -2 // below any reachable score

	for i := 0; i < model.BoardSize; i++ {
		if board[i] != model.Empty {
			continue
		}
		board[i] = side
		score := minimax(&board, side, side.Other())
		board[i] = model.Empty
		if score > bestScore {
			bestScore = score
			bestMove = i
		}
	}

	if bestMove < 0 {
		panic("bot: no empty cell to play")
	}
	return bestMove
}

// minimax scores the position from the perspective of maximizing,
// with toMove next to play.
func minimax(board *model.Board, maximizing, toMove model.Mark) int {
	switch board.Evaluate() {
	case model.WinnerFor(maximizing):
		return 1
	case model.WinnerFor(maximizing.Other()):
		return -1
	case model.ResultDraw:
		return 0
	}

	if toMove == maximizing {
		best := -2
		for i := 0; i < model.BoardSize; i++ {
			if board[i] != model.Empty {
				continue
			}
			board[i] = toMove
			if score := minimax(board, maximizing, toMove.Other()); score > best {
				best = score
			}
			board[i] = model.Empty
		}
		return best
	}

	best := 2
	for i := 0; i < model.BoardSize; i++ {
		if board[i] != model.Empty {
			continue
		}
		board[i] = toMove
		if score := minimax(board, maximizing, toMove.Other()); score < best {
			best = score
		}
		board[i] = model.Empty
	}
	return best
}
