package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/services/bot"
)

type MinimaxSuite struct {
	suite.Suite
	strategy *bot.MinimaxStrategy
}

func TestMinimaxSuite(t *testing.T) {
	suite.Run(t, new(MinimaxSuite))
}

func (s *MinimaxSuite) SetupTest() {
	s.strategy = bot.NewMinimaxStrategy()
}

func (s *MinimaxSuite) board(marks ...model.Mark) model.Board {
	var b model.Board
	copy(b[:], marks)
	return b
}

func (s *MinimaxSuite) TestOpeningMoveIsFirstCell() {
	// Every opening move draws under perfect play, so the tie-break
	// settles on the lowest index.
	var b model.Board
	s.Equal(0, s.strategy.ChooseCell(b, model.X))
}

func (s *MinimaxSuite) TestTakesImmediateWin() {
	b := s.board(
		model.X, model.X, model.Empty,
		model.O, model.O, model.Empty,
		model.Empty, model.Empty, model.Empty,
	)
	s.Equal(2, s.strategy.ChooseCell(b, model.X))
}

func (s *MinimaxSuite) TestBlocksImmediateThreat() {
	b := s.board(
		model.X, model.X, model.Empty,
		model.Empty, model.O, model.Empty,
		model.Empty, model.Empty, model.Empty,
	)
	s.Equal(2, s.strategy.ChooseCell(b, model.O))
}

func (s *MinimaxSuite) TestPrefersWinOverBlock() {
	// O can win at 5 or block X at 2; winning ends the game.
	b := s.board(
		model.X, model.X, model.Empty,
		model.O, model.O, model.Empty,
		model.X, model.Empty, model.Empty,
	)
	s.Equal(5, s.strategy.ChooseCell(b, model.O))
}

func (s *MinimaxSuite) TestDeterministic() {
	b := s.board(
		model.Empty, model.Empty, model.Empty,
		model.Empty, model.X, model.Empty,
		model.Empty, model.Empty, model.Empty,
	)
	first := s.strategy.ChooseCell(b, model.O)
	for i := 0; i < 5; i++ {
		s.Equal(first, s.strategy.ChooseCell(b, model.O))
	}
}

func (s *MinimaxSuite) TestDoesNotMutateBoard() {
	b := s.board(
		model.X, model.Empty, model.Empty,
		model.Empty, model.O, model.Empty,
		model.Empty, model.Empty, model.Empty,
	)
	before := b
	s.strategy.ChooseCell(b, model.X)
	s.Equal(before, b)
}

// TestNeverLoses plays the strategy against every possible opponent
// move sequence, from both sides, and asserts no line of play ends in
// a loss for the strategy.
func (s *MinimaxSuite) TestNeverLoses() {
	for _, side := range []model.Mark{model.X, model.O} {
		var b model.Board
		if side == model.X {
			s.playout(b, side, side)
		} else {
			s.playout(b, side, side.Other())
		}
	}
}

// playout recursively explores the game: the strategy's moves are
// deterministic, the opponent branches over every legal cell.
func (s *MinimaxSuite) playout(b model.Board, botSide, toMove model.Mark) {
	switch b.Evaluate() {
	case model.WinnerFor(botSide.Other()):
		s.Failf("strategy lost", "losing board:\n%s", b.Render())
		return
	case model.WinnerFor(botSide), model.ResultDraw:
		return
	}

	if toMove == botSide {
		cell := s.strategy.ChooseCell(b, botSide)
		s.Require().True(b.IsEmpty(cell))
		b[cell] = botSide
		s.playout(b, botSide, toMove.Other())
		return
	}

	for i := 0; i < model.BoardSize; i++ {
		if !b.IsEmpty(i) {
			continue
		}
		next := b
		next[i] = toMove
		s.playout(next, botSide, toMove.Other())
	}
}
