package bot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spreadgame/internal/dependencies/mocks"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/bot"
	"github.com/mcoot/spreadgame/internal/testutil"
)

type StrategySuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	ctx        context.Context
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategySuite))
}

func (s *StrategySuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	s.ctx = context.Background()
}

type fixedSearcher struct {
	index int
	err   error
}

func (f fixedSearcher) WhereToPlay(context.Context, *model.Board) (int, error) {
	return f.index, f.err
}

func (s *StrategySuite) TestRandomStrategy_PicksQueuedPlayable() {
	b := testutil.MustParseBoard(s.T(), "R-.", "-.-")
	// playable cells are 1, 3 and 5
	s.mockRandom.QueueIntn(2)

	idx, err := bot.NewRandomStrategy(s.mockRandom).Choose(s.ctx, b)

	s.Require().NoError(err)
	s.Equal(5, idx)
}

func (s *StrategySuite) TestRandomStrategy_NoPlayableCell() {
	b := testutil.MustParseBoard(s.T(), "RB.")

	_, err := bot.NewRandomStrategy(s.mockRandom).Choose(s.ctx, b)
	s.ErrorIs(err, model.ErrInvalidMove)
}

func (s *StrategySuite) TestRandomStrategy_FinishedGame() {
	b := testutil.MustParseBoard(s.T(), "RR-BB")
	s.Require().Equal(model.RedWin, b.Play(2))

	_, err := bot.NewRandomStrategy(s.mockRandom).Choose(s.ctx, b)
	s.ErrorIs(err, model.ErrGameComplete)
}

func (s *StrategySuite) TestPolicyStrategy_PlaysForSideToMove() {
	b := testutil.MustParseBoard(s.T(), "R--")
	s.Require().Equal(model.Blue, b.Turn())

	idx, err := bot.NewPolicyStrategy(linearBot(0, 3, -3)).Choose(s.ctx, b)

	s.Require().NoError(err)
	s.Equal(2, idx)
}

func (s *StrategySuite) TestSearchStrategy_DelegatesToSearcher() {
	b := testutil.MustParseBoard(s.T(), "---")

	idx, err := bot.NewSearchStrategy(fixedSearcher{index: 2}).Choose(s.ctx, b)
	s.Require().NoError(err)
	s.Equal(2, idx)

	_, err = bot.NewSearchStrategy(fixedSearcher{index: -1, err: model.ErrGameComplete}).Choose(s.ctx, b)
	s.ErrorIs(err, model.ErrGameComplete)
}
