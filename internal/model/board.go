package model

import (
	"fmt"
	"strings"
)

// Intner is the part of a random source the board needs
type Intner interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// Board is the spread game state machine.
// Cells are stored row-major; index = x + y*width.
type Board struct {
	width  int
	height int
	cells  []CaseValue

	lastPlay            int // -1 before the first play
	turn                CaseValue
	wasEverythingYellow bool
	over                bool
}

// NewBoard creates a fully playable board with Red to move
func NewBoard(width, height int) *Board {
	cells := make([]CaseValue, width*height)
	for i := range cells {
		cells[i] = Yellow
	}
	return &Board{
		width:               width,
		height:              height,
		cells:               cells,
		lastPlay:            -1,
		turn:                Red,
		wasEverythingYellow: true,
	}
}

// ParseBoard builds a board from its String rendering, one string per row.
// The side to move is Red when both colours have the same stone count.
func ParseBoard(rows ...string) (*Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrMalformedBoard)
	}
	width := len(rows[0])
	b := &Board{
		width:    width,
		height:   len(rows),
		cells:    make([]CaseValue, 0, width*len(rows)),
		lastPlay: -1,
	}
	reds, blues := 0, 0
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedBoard, y, len(row), width)
		}
		for x, r := range row {
			c, ok := caseValueFromRune(r)
			if !ok {
				return nil, fmt.Errorf("%w: unknown cell %q at (%d, %d)", ErrMalformedBoard, r, x, y)
			}
			switch c {
			case Red:
				reds++
			case Blue:
				blues++
			}
			b.cells = append(b.cells, c)
		}
	}
	b.turn = Red
	if reds > blues {
		b.turn = Blue
	}
	return b, nil
}

// Width returns the number of columns
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows
func (b *Board) Height() int {
	return b.height
}

// Len returns the number of cells
func (b *Board) Len() int {
	return len(b.cells)
}

// Turn returns the colour to move
func (b *Board) Turn() CaseValue {
	return b.turn
}

// LastPlay returns the index of the most recent play
func (b *Board) LastPlay() (int, bool) {
	return b.lastPlay, b.lastPlay >= 0
}

// SetLastPlay records index as the most recent play. Used to build fixtures.
func (b *Board) SetLastPlay(index int) {
	b.lastPlay = index
}

// WasEverythingYellow reports whether the last spread reset the whole board
func (b *Board) WasEverythingYellow() bool {
	return b.wasEverythingYellow
}

// SetWasEverythingYellow overrides the spread flag. Used to build fixtures.
func (b *Board) SetWasEverythingYellow(v bool) {
	b.wasEverythingYellow = v
}

// IsOver returns true once a play has returned a terminal result
func (b *Board) IsOver() bool {
	return b.over
}

// XYToIndex converts column/row coordinates to a cell index
func (b *Board) XYToIndex(x, y int) int {
	return x + y*b.width
}

// IsValidIndex returns true if the index is on the board
func (b *Board) IsValidIndex(index int) bool {
	return index >= 0 && index < len(b.cells)
}

// Get returns the cell at index
func (b *Board) Get(index int) (CaseValue, bool) {
	if !b.IsValidIndex(index) {
		return 0, false
	}
	return b.cells[index], true
}

// Set overwrites a cell. Obstacles are permanent and are never overwritten.
func (b *Board) Set(index int, value CaseValue) {
	if b.IsValidIndex(index) && b.cells[index] != Black {
		b.cells[index] = value
	}
}

// Cells returns a copy of the cells in row-major order
func (b *Board) Cells() []CaseValue {
	out := make([]CaseValue, len(b.cells))
	copy(out, b.cells)
	return out
}

// Count returns the number of cells holding value
func (b *Board) Count(value CaseValue) int {
	n := 0
	for _, c := range b.cells {
		if c == value {
			n++
		}
	}
	return n
}

// IsPlayable returns true if index is a Yellow cell
func (b *Board) IsPlayable(index int) bool {
	c, ok := b.Get(index)
	return ok && c == Yellow
}

// Playable returns every playable index in ascending order
func (b *Board) Playable() []int {
	var out []int
	for i, c := range b.cells {
		if c == Yellow {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	c := *b
	c.cells = make([]CaseValue, len(b.cells))
	copy(c.cells, b.cells)
	return &c
}

// Follow steps once from index in dir. Steps that leave the board or wrap
// across a row edge are rejected.
func (b *Board) Follow(index int, dir Direction) (int, bool) {
	u := index + dir.Offset(b.width)
	if u < 0 || u >= len(b.cells) {
		return 0, false
	}
	switch dir {
	case East, NorthEast, SouthEast:
		if u%b.width == 0 {
			return 0, false
		}
	case West, NorthWest, SouthWest:
		if (u+1)%b.width == 0 {
			return 0, false
		}
	}
	return u, true
}

// FollowAndGet steps once from index in dir and returns the cell found there
func (b *Board) FollowAndGet(index int, dir Direction) (int, CaseValue, bool) {
	u, ok := b.Follow(index, dir)
	if !ok {
		return 0, 0, false
	}
	return u, b.cells[u], true
}

// PlaceObstacles drops count obstacles on random cells. Collisions are
// allowed, so fewer than count obstacles may result.
func (b *Board) PlaceObstacles(count int, rnd Intner) {
	for range count {
		b.Set(rnd.Intn(len(b.cells)), Black)
	}
}

// Play places the mover's stone on index, runs the spread and reports the
// outcome. A non-playable index returns InvalidPosition and changes nothing.
func (b *Board) Play(index int) PlayResult {
	if b.over {
		panic(unreachable("play at %d on a finished board", index))
	}
	if !b.IsPlayable(index) {
		return InvalidPosition
	}

	b.prePlaySpread()

	color := b.turn
	b.cells[index] = color
	b.turn = color.Invert()
	b.lastPlay = index

	result := b.postPlaySpread(index, color)
	if result.IsTerminal() {
		b.over = true
	}
	return result
}

// RandomPlay plays a uniformly chosen playable cell
func (b *Board) RandomPlay(rnd Intner) PlayResult {
	playable := b.Playable()
	if len(playable) == 0 {
		panic(unreachable("random play on a board with no playable cell"))
	}
	return b.Play(playable[rnd.Intn(len(playable))])
}

// prePlaySpread retires the previous frontier before a stone is placed
func (b *Board) prePlaySpread() {
	if b.wasEverythingYellow {
		for i, c := range b.cells {
			if c == Yellow {
				b.cells[i] = White
			}
		}
		return
	}
	if b.lastPlay < 0 {
		return
	}
	for _, dir := range Directions {
		if u, ok := b.Follow(b.lastPlay, dir); ok && b.cells[u] == Yellow {
			b.cells[u] = White
		}
	}
}

// postPlaySpread reveals the neighbourhood of the new stone and checks
// whether it completed three in a row for color.
func (b *Board) postPlaySpread(index int, color CaseValue) PlayResult {
	revealed := false
	var matched [8]bool

	for _, dir := range Directions {
		u, c, ok := b.FollowAndGet(index, dir)
		if !ok {
			continue
		}
		if c == White {
			b.cells[u] = Yellow
			revealed = true
			continue
		}
		if c != color {
			continue
		}
		// centre of a line
		matched[dir] = true
		if matched[dir.Mirror()] {
			return WinFor(color)
		}
		// endpoint of a line
		if _, beyond, ok := b.FollowAndGet(u, dir); ok && beyond == color {
			return WinFor(color)
		}
	}

	if revealed {
		b.wasEverythingYellow = false
		return Played
	}

	for i, c := range b.cells {
		if c == White {
			b.cells[i] = Yellow
			revealed = true
		}
	}
	b.wasEverythingYellow = true
	if !revealed {
		return NobodyWin
	}
	return Played
}

// String renders the board one row per line
func (b *Board) String() string {
	var sb strings.Builder
	for i, c := range b.cells {
		if i > 0 && i%b.width == 0 {
			sb.WriteByte('\n')
		}
		sb.WriteRune(c.Rune())
	}
	return sb.String()
}
