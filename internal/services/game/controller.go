package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/spreadgame/internal/dependencies/clock"
	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/bot"
)

const (
	// GameIDAlphabet is the character set for generated game IDs
	GameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// GameIDLength is the length of generated game IDs
	GameIDLength = 8
)

// BoardSource creates fresh boards for new games
type BoardSource interface {
	NewBoard(rnd random.Random) *model.Board
}

// Controller runs interactive games between a human and a bot strategy
type Controller struct {
	boards BoardSource
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	mu         sync.RWMutex
	strategies map[string]bot.Strategy
}

// NewController creates a new game Controller
func NewController(
	boards BoardSource,
	strategies map[string]bot.Strategy,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	registered := make(map[string]bot.Strategy, len(strategies))
	for name, s := range strategies {
		registered[name] = s
	}
	return &Controller{
		boards:     boards,
		strategies: registered,
		clock:      clock,
		random:     random,
		logger:     logger.With(slog.String("component", "game-controller")),
	}
}

// SetStrategy registers or replaces the strategy used for name
func (c *Controller) SetStrategy(name string, strategy bot.Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategies[name] = strategy
}

func (c *Controller) strategy(name string) (bot.Strategy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy: %s", name)
	}
	return s, nil
}

// NewGame starts a game on a fresh board. When the human plays Blue the bot
// opens.
func (c *Controller) NewGame(ctx context.Context, humanColor model.CaseValue, botStrategy string) (*model.Game, error) {
	if !humanColor.IsStone() {
		return nil, fmt.Errorf("invalid human colour %s", humanColor)
	}
	if _, err := c.strategy(botStrategy); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	g := &model.Game{
		ID:          c.newID(),
		State:       model.GameStateInProgress,
		Board:       c.boards.NewBoard(c.random),
		HumanColor:  humanColor,
		BotStrategy: botStrategy,
		Result:      model.Played,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	c.logger.Info("game created",
		slog.String("game_id", string(g.ID)),
		slog.String("human", humanColor.String()),
		slog.String("bot_strategy", botStrategy),
	)

	if g.Board.Turn() != humanColor {
		if err := c.botMove(ctx, g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Play applies the human's move at index and, if the game goes on, the
// bot's reply
func (c *Controller) Play(ctx context.Context, g *model.Game, index int) error {
	if g.IsComplete() {
		return model.ErrGameComplete
	}
	if g.Board.Turn() != g.HumanColor {
		return fmt.Errorf("%w: human to move but %s is on turn", model.ErrUnreachableState, g.Board.Turn())
	}
	if !g.Board.IsPlayable(index) {
		return fmt.Errorf("%w: %d", model.ErrInvalidMove, index)
	}

	c.apply(g, index)
	if g.IsComplete() {
		return nil
	}
	return c.botMove(ctx, g)
}

func (c *Controller) botMove(ctx context.Context, g *model.Game) error {
	s, err := c.strategy(g.BotStrategy)
	if err != nil {
		return err
	}
	idx, err := s.Choose(ctx, g.Board)
	if err != nil {
		return fmt.Errorf("bot move: %w", err)
	}
	if !g.Board.IsPlayable(idx) {
		panic(fmt.Errorf("%w: bot chose unplayable cell %d", model.ErrUnreachableState, idx))
	}
	c.apply(g, idx)
	c.logger.Debug("bot played",
		slog.String("game_id", string(g.ID)),
		slog.Int("index", idx),
	)
	return nil
}

// apply plays index for the side to move and records the move
func (c *Controller) apply(g *model.Game, index int) {
	color := g.Board.Turn()
	result := g.Board.Play(index)
	g.Moves = append(g.Moves, model.Move{Color: color, Index: index, Result: result})
	g.Result = result
	g.UpdatedAt = c.clock.Now()

	if result.IsTerminal() {
		g.State = model.GameStateFinished
		c.logger.Info("game finished",
			slog.String("game_id", string(g.ID)),
			slog.String("result", result.String()),
			slog.Int("moves", len(g.Moves)),
		)
	}
}

func (c *Controller) newID() model.GameID {
	var sb strings.Builder
	for range GameIDLength {
		sb.WriteByte(GameIDAlphabet[c.random.Intn(len(GameIDAlphabet))])
	}
	return model.GameID(sb.String())
}
