package model

import "math"

// PathIssue accumulates the outcomes found below one candidate move
type PathIssue struct {
	Win   int64 // searching side wins
	None  int64 // game goes on
	Lose  int64 // opponent wins
	NoWin int64 // draw
}

// Merge adds the tallies of other into p
func (p *PathIssue) Merge(other PathIssue) {
	p.Win += other.Win
	p.None += other.None
	p.Lose += other.Lose
	p.NoWin += other.NoWin
}

// Comparable reduces the tallies to a single score; higher is better
func (p PathIssue) Comparable() int64 {
	return math.MaxInt64/2 + p.Win - 50*p.Lose
}

// CompareResult tallies a benchmark series from the bot's point of view
type CompareResult struct {
	Win   int `json:"win"`
	Loose int `json:"loose"`
	None  int `json:"none"`
}

// Score is the fitness of the series
func (r CompareResult) Score() int {
	return r.Win - r.Loose
}

// Games returns the number of games tallied
func (r CompareResult) Games() int {
	return r.Win + r.Loose + r.None
}
