package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spreadgame/internal/dependencies/mocks"
	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/bot"
	"github.com/mcoot/spreadgame/internal/testutil"
)

// fixedBoards hands out copies of one layout
type fixedBoards struct {
	board *model.Board
}

func (f fixedBoards) NewBoard(random.Random) *model.Board {
	return f.board.Clone()
}

// script plays a fixed sequence of cells
type script struct {
	moves []int
	calls int
}

func (sc *script) Choose(context.Context, *model.Board) (int, error) {
	idx := sc.moves[sc.calls]
	sc.calls++
	return idx, nil
}

type ControllerSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	random *mocks.MockRandom
	script *script
	ctx    context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.script = &script{}
	s.ctx = context.Background()
}

func (s *ControllerSuite) controller(board *model.Board) *Controller {
	return NewController(
		fixedBoards{board: board},
		map[string]bot.Strategy{"scripted": s.script},
		s.clock,
		s.random,
		testutil.NopLogger(),
	)
}

func (s *ControllerSuite) TestNewGame_HumanRed() {
	s.random.QueueIntn(1, 2, 3, 26, 35, 0, 0, 0)
	c := s.controller(model.NewBoard(5, 6))

	g, err := c.NewGame(s.ctx, model.Red, "scripted")
	s.Require().NoError(err)

	s.Equal(model.GameID("BCD09AAA"), g.ID)
	s.Equal(model.GameStateInProgress, g.State)
	s.Equal(model.Red, g.HumanColor)
	s.Equal(model.Blue, g.BotColor())
	s.Empty(g.Moves)
	s.Equal(s.clock.Now(), g.CreatedAt)
	s.Zero(s.script.calls)
}

func (s *ControllerSuite) TestNewGame_HumanBlueLetsBotOpen() {
	s.script.moves = []int{12}
	c := s.controller(model.NewBoard(5, 6))

	g, err := c.NewGame(s.ctx, model.Blue, "scripted")
	s.Require().NoError(err)

	s.Equal([]model.Move{{Color: model.Red, Index: 12, Result: model.Played}}, g.Moves)
	s.Equal(model.Blue, g.Board.Turn())
}

func (s *ControllerSuite) TestNewGame_Rejections() {
	c := s.controller(model.NewBoard(5, 6))

	_, err := c.NewGame(s.ctx, model.Red, "nope")
	s.Error(err)

	_, err = c.NewGame(s.ctx, model.Yellow, "scripted")
	s.Error(err)
}

func (s *ControllerSuite) TestPlay_HumanThenBot() {
	s.script.moves = []int{6}
	c := s.controller(model.NewBoard(5, 6))
	g, err := c.NewGame(s.ctx, model.Red, "scripted")
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	s.Require().NoError(c.Play(s.ctx, g, 0))

	s.Equal([]model.Move{
		{Color: model.Red, Index: 0, Result: model.Played},
		{Color: model.Blue, Index: 6, Result: model.Played},
	}, g.Moves)
	s.Equal(model.Red, g.Board.Turn())
	s.Equal(s.clock.Now(), g.UpdatedAt)
}

func (s *ControllerSuite) TestPlay_InvalidMove() {
	c := s.controller(model.NewBoard(5, 6))
	g, err := c.NewGame(s.ctx, model.Red, "scripted")
	s.Require().NoError(err)

	err = c.Play(s.ctx, g, 99)
	s.ErrorIs(err, model.ErrInvalidMove)
	s.Empty(g.Moves)
}

func (s *ControllerSuite) TestPlay_HumanWins() {
	c := s.controller(testutil.MustParseBoard(s.T(), "RR-BB"))
	g, err := c.NewGame(s.ctx, model.Red, "scripted")
	s.Require().NoError(err)

	s.Require().NoError(c.Play(s.ctx, g, 2))

	s.True(g.IsComplete())
	s.Equal(model.RedWin, g.Result)
	s.Zero(s.script.calls)

	s.ErrorIs(c.Play(s.ctx, g, 2), model.ErrGameComplete)
}

func (s *ControllerSuite) TestNewGame_BotWinsOpening() {
	s.script.moves = []int{2}
	c := s.controller(testutil.MustParseBoard(s.T(), "BB-RR"))

	g, err := c.NewGame(s.ctx, model.Blue, "scripted")
	s.Require().NoError(err)

	s.True(g.IsComplete())
	s.Equal(model.RedWin, g.Result)
	s.ErrorIs(c.Play(s.ctx, g, 0), model.ErrGameComplete)
}

func (s *ControllerSuite) TestSetStrategy() {
	c := s.controller(model.NewBoard(5, 6))
	c.SetStrategy("random", bot.NewRandomStrategy(s.random))

	g, err := c.NewGame(s.ctx, model.Red, "random")
	s.Require().NoError(err)
	// first play reveals 1, 5 and 6; the queue is dry so the bot takes 1
	s.Require().NoError(c.Play(s.ctx, g, 0))

	s.Equal(1, g.Moves[1].Index)
}
