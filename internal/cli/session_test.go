package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spreadgame/internal/factory"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/policy"
	"github.com/mcoot/spreadgame/internal/services/trainer"
)

type SessionSuite struct {
	suite.Suite
	app    *factory.TestApp
	out    *bytes.Buffer
	errOut *bytes.Buffer
	ctx    context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.out = &bytes.Buffer{}
	s.errOut = &bytes.Buffer{}
	s.ctx = context.Background()
}

func (s *SessionSuite) newSession(color model.CaseValue, botName string) *Session {
	out := NewPlainOutput("text", s.out, s.errOut)
	return NewSession(s.app.App, out, color, botName, 2)
}

func (s *SessionSuite) run(session *Session, lines ...string) {
	input := strings.Join(lines, "\n") + "\n"
	s.Require().NoError(session.Run(s.ctx, strings.NewReader(input)))
}

func (s *SessionSuite) TestStartsGameForHuman() {
	session := s.newSession(model.Red, model.BotStrategyPolicy)
	s.run(session)

	s.Require().NotNil(session.Game())
	s.Empty(session.Game().Moves)
	s.Contains(s.out.String(), "you: red")
}

func (s *SessionSuite) TestBotOpensForBlue() {
	session := s.newSession(model.Blue, model.BotStrategyRandom)
	s.run(session)

	s.Require().Len(session.Game().Moves, 1)
	s.Equal(model.Red, session.Game().Moves[0].Color)
	s.Contains(s.out.String(), "Bot played:")
}

func (s *SessionSuite) TestPlayByIndex() {
	session := s.newSession(model.Red, model.BotStrategyPolicy)
	s.run(session, "5")

	moves := session.Game().Moves
	s.Require().Len(moves, 2)
	s.Equal(5, moves[0].Index)
	s.Equal(model.Blue, moves[1].Color)
	s.Empty(s.errOut.String())
}

func (s *SessionSuite) TestPlayByCoordinates() {
	session := s.newSession(model.Red, model.BotStrategyRandom)
	s.run(session, "1 2")

	moves := session.Game().Moves
	s.Require().Len(moves, 2)
	s.Equal(9, moves[0].Index)
}

func (s *SessionSuite) TestInvalidMovesAreReported() {
	session := s.newSession(model.Red, model.BotStrategyRandom)
	s.run(session, "99", "7 0", "-1")

	s.Empty(session.Game().Moves)
	s.Equal(3, strings.Count(s.errOut.String(), "cell is not playable"))
}

func (s *SessionSuite) TestUnknownCommand() {
	session := s.newSession(model.Red, model.BotStrategyRandom)
	s.run(session, "dance", "1 2 3", "train x", "load")

	errs := s.errOut.String()
	s.Contains(errs, `unknown command "dance"`)
	s.Contains(errs, `unknown command "1 2 3"`)
	s.Contains(errs, `invalid generation count "x"`)
	s.Contains(errs, "usage: load <slot>")
	s.Empty(session.Game().Moves)
}

func (s *SessionSuite) TestQuitStopsReading() {
	session := s.newSession(model.Red, model.BotStrategyRandom)
	s.run(session, "quit", "5")

	s.Empty(session.Game().Moves)
}

func (s *SessionSuite) TestBlankLinesIgnored() {
	session := s.newSession(model.Red, model.BotStrategyRandom)
	s.run(session, "", "   ", "help")

	s.Contains(s.out.String(), "Commands:")
	s.Empty(s.errOut.String())
}

func (s *SessionSuite) TestNewGameReplacesGame() {
	session := s.newSession(model.Red, model.BotStrategyRandom)
	s.run(session, "5")
	first := session.Game()

	s.Require().NoError(session.Exec(s.ctx, "new"))

	s.NotSame(first, session.Game())
	s.Empty(session.Game().Moves)
}

func (s *SessionSuite) TestLoadMissingSlot() {
	session := s.newSession(model.Red, model.BotStrategyPolicy)
	s.run(session, "load 3")

	s.Contains(s.errOut.String(), "save not found")
}

func (s *SessionSuite) TestLoadSavedChampion() {
	network := policy.ForBoard(s.app.Random, 4, 4)
	data, err := json.Marshal(network)
	s.Require().NoError(err)
	s.Require().NoError(s.app.Storage.SavePolicy(s.ctx, 0, data))
	before := s.app.Champion

	session := s.newSession(model.Red, model.BotStrategyPolicy)
	s.run(session, "load 0")

	s.Contains(s.out.String(), "Loaded champion from slot 0")
	s.NotSame(before, s.app.Champion)
	s.Empty(s.errOut.String())
}

func (s *SessionSuite) TestBenchmark() {
	session := s.newSession(model.Red, model.BotStrategyPolicy)
	s.run(session, "test")

	s.Contains(s.out.String(), "Games: 4")
	s.Contains(s.out.String(), "Score:")
}

func (s *SessionSuite) TestTrain() {
	session := s.newSession(model.Red, model.BotStrategyPolicy)
	s.run(session, "train 2 0.4")

	out := s.out.String()
	s.Contains(out, "Round 1")
	s.Contains(out, "Round 2")
	s.Contains(out, "Champion generation")
	s.Empty(s.errOut.String())
}

func (s *SessionSuite) TestTrainRejectsBadRatio() {
	session := s.newSession(model.Red, model.BotStrategyPolicy)
	s.run(session, "train 1 2")

	s.Contains(s.errOut.String(), "ratio must be in (0, 1]")
}

func (s *SessionSuite) TestTrainResult() {
	state := &trainer.State{Generation: 3, ChampionFitness: 12}
	gens := []trainer.Generation{
		{Ratio: 0.5, ChampionFitness: 8, Fitness: 8, Elapsed: 20 * time.Millisecond, Slot: -1},
		{Accepted: true, Ratio: 0.375, ChampionFitness: 8, Fitness: 12, Elapsed: time.Second, Slot: 4},
	}

	res := NewTrainResult(gens, state)

	s.Equal(3, res.Generation)
	s.Equal(12.0, res.Fitness)
	s.Require().Len(res.Generations, 2)
	s.Equal(1, res.Generations[0].Round)
	s.Nil(res.Generations[0].Slot)
	s.Equal(int64(20), res.Generations[0].ElapsedMillis)
	s.Equal(2, res.Generations[1].Round)
	s.Require().NotNil(res.Generations[1].Slot)
	s.Equal(4, *res.Generations[1].Slot)

	NewPlainOutput("text", s.out, s.errOut).Print(res)
	s.Equal("Round 1: no improvement after 20ms (ratio 0.5000, fitness 8.00)\n"+
		"Round 2 improved in 1000ms: fitness 8.00 -> 12.00 (ratio 0.3750, slot 4)\n"+
		"Champion generation 3, fitness 12.00\n", s.out.String())
}
