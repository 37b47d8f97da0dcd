package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcoot/spreadgame/internal/factory"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/trainer"
)

// REPL defaults for the train command
const (
	DefaultTrainRounds = 1
	DefaultTrainRatio  = 0.5
)

const sessionHelp = `Commands:
  <index> | <x> <y>     play a stone
  train [n] [ratio]     evolve the champion for n generations (default 1, 0.5)
  load <slot>           load a saved champion
  test                  benchmark the champion against random play
  new                   start a new game
  help                  show this help
  quit | exit           leave`

// errQuit ends the session loop
var errQuit = errors.New("quit")

// Session is an interactive game against a bot with training commands
type Session struct {
	app        *factory.App
	out        *Output
	humanColor model.CaseValue
	botName    string
	workers    int

	game  *model.Game
	state *trainer.State
}

// NewSession creates a session for app; no game is started until Run
func NewSession(app *factory.App, out *Output, humanColor model.CaseValue, botName string, workers int) *Session {
	return &Session{
		app:        app,
		out:        out,
		humanColor: humanColor,
		botName:    botName,
		workers:    workers,
	}
}

// Game returns the current game
func (s *Session) Game() *model.Game {
	return s.game
}

// Run starts a game and reads commands from in until quit or end of input
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	if err := s.newGame(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Exec runs a single command line. Operator mistakes are reported on the
// output and do not end the session.
func (s *Session) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	var err error
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return errQuit
	case "help":
		s.out.PrintMessage(sessionHelp)
	case "new":
		err = s.newGame(ctx)
	case "train":
		err = s.train(ctx, fields[1:])
	case "load":
		err = s.load(ctx, fields[1:])
	case "test":
		err = s.test(ctx)
	default:
		err = s.play(ctx, fields)
	}
	return s.report(err)
}

// report prints recoverable errors and passes the rest through
func (s *Session) report(err error) error {
	var usage usageError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrInvalidMove),
		errors.Is(err, model.ErrGameComplete),
		errors.Is(err, model.ErrSaveNotFound),
		errors.Is(err, model.ErrMalformedSave),
		errors.As(err, &usage):
		s.out.PrintError(err)
		return nil
	default:
		return err
	}
}

type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func (s *Session) newGame(ctx context.Context) error {
	g, err := s.app.GameController.NewGame(ctx, s.humanColor, s.botName)
	if err != nil {
		return err
	}
	s.game = g
	s.out.Print(NewGameView(g))
	return nil
}

func (s *Session) play(ctx context.Context, fields []string) error {
	index, err := s.parseCell(fields)
	if err != nil {
		return err
	}
	if err := s.app.GameController.Play(ctx, s.game, index); err != nil {
		return err
	}
	s.out.Print(NewGameView(s.game))
	if s.game.IsComplete() {
		s.out.PrintMessage("Type 'new' for another game")
	}
	return nil
}

// parseCell reads either a cell index or an x y pair
func (s *Session) parseCell(fields []string) (int, error) {
	b := s.game.Board
	switch len(fields) {
	case 1:
		index, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, usagef("unknown command %q, type 'help'", fields[0])
		}
		return index, nil
	case 2:
		x, errX := strconv.Atoi(fields[0])
		y, errY := strconv.Atoi(fields[1])
		if errX != nil || errY != nil {
			return 0, usagef("unknown command %q, type 'help'", strings.Join(fields, " "))
		}
		if x < 0 || x >= b.Width() || y < 0 || y >= b.Height() {
			return 0, fmt.Errorf("%w: (%d, %d) is off the board", model.ErrInvalidMove, x, y)
		}
		return b.XYToIndex(x, y), nil
	default:
		return 0, usagef("unknown command %q, type 'help'", strings.Join(fields, " "))
	}
}

func (s *Session) train(ctx context.Context, args []string) error {
	rounds := DefaultTrainRounds
	ratio := DefaultTrainRatio
	if len(args) > 2 {
		return usagef("usage: train [n] [ratio]")
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return usagef("train: invalid generation count %q", args[0])
		}
		rounds = n
	}
	if len(args) > 1 {
		r, err := strconv.ParseFloat(args[1], 64)
		if err != nil || r <= 0 || r > 1 {
			return usagef("train: ratio must be in (0, 1], got %q", args[1])
		}
		ratio = r
	}

	if s.state == nil || s.state.Champion != s.app.Champion {
		state, err := s.app.Trainer.NewState(ctx, s.app.Champion)
		if err != nil {
			return err
		}
		s.state = state
	}

	gens, err := s.app.Trainer.Train(ctx, s.state, rounds, ratio, s.workers)
	s.app.SetChampion(s.state.Champion)
	if err != nil {
		return err
	}
	s.out.Print(NewTrainResult(gens, s.state))
	return nil
}

func (s *Session) load(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("usage: load <slot>")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return usagef("load: invalid slot %q", args[0])
	}
	if _, err := s.app.LoadChampion(ctx, slot); err != nil {
		return err
	}
	s.state = nil
	s.out.PrintMessage(fmt.Sprintf("Loaded champion from slot %d", slot))
	return nil
}

func (s *Session) test(ctx context.Context) error {
	games := s.app.Tournament.Config().BenchmarkGames
	result, err := s.app.Tournament.BenchmarkAgainstRandom(ctx, s.app.Champion, games, s.app.Random.Spawn())
	if err != nil {
		return err
	}
	s.out.Print(NewBenchmarkResult(result))
	return nil
}

// NewTrainResult converts trained generations for display
func NewTrainResult(gens []trainer.Generation, state *trainer.State) TrainResult {
	res := TrainResult{
		Generations: make([]GenerationResult, 0, len(gens)),
		Generation:  state.Generation,
		Fitness:     state.ChampionFitness,
	}
	for i, g := range gens {
		gr := GenerationResult{
			Round:           i + 1,
			Accepted:        g.Accepted,
			Ratio:           g.Ratio,
			ChampionFitness: g.ChampionFitness,
			Fitness:         g.Fitness,
			ElapsedMillis:   g.Elapsed.Milliseconds(),
		}
		if g.Accepted {
			slot := g.Slot
			gr.Slot = &slot
		}
		res.Generations = append(res.Generations, gr)
	}
	return res
}

// parseColor reads a human colour name
func parseColor(name string) (model.CaseValue, error) {
	switch strings.ToLower(name) {
	case "red", "r":
		return model.Red, nil
	case "blue", "b":
		return model.Blue, nil
	default:
		return 0, fmt.Errorf("invalid colour %q: must be red or blue", name)
	}
}
