package model

import "time"

// GameID uniquely identifies an interactive game session
type GameID string

// GameState represents the current phase of a game
type GameState string

const (
	GameStateInProgress GameState = "in_progress"
	GameStateFinished   GameState = "finished"
)

// Move is one applied play
type Move struct {
	Color  CaseValue
	Index  int
	Result PlayResult
}

// Game is an interactive session between a human and a bot
type Game struct {
	ID          GameID
	State       GameState
	Board       *Board
	HumanColor  CaseValue
	BotStrategy string
	Result      PlayResult
	Moves       []Move

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsComplete returns true once the game reached a terminal result
func (g *Game) IsComplete() bool {
	return g.State == GameStateFinished
}

// BotColor returns the colour the bot plays
func (g *Game) BotColor() CaseValue {
	return g.HumanColor.Invert()
}
