package model

// CaseValue is the state of a single board cell
type CaseValue uint8

const (
	Red    CaseValue = iota // Red stone
	Blue                    // Blue stone
	Yellow                  // Empty and playable
	White                   // Empty, not yet playable
	Black                   // Permanent obstacle
)

// IsEmpty returns true for cells that hold neither a stone nor an obstacle
func (c CaseValue) IsEmpty() bool {
	return c == Yellow || c == White
}

// IsStone returns true for Red and Blue
func (c CaseValue) IsStone() bool {
	return c == Red || c == Blue
}

// Invert returns the opposing stone colour. Only defined for stones.
func (c CaseValue) Invert() CaseValue {
	switch c {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		panic(unreachable("invert of non-stone cell %s", c))
	}
}

// Rune returns the single-character rendering used by Board.String
func (c CaseValue) Rune() rune {
	switch c {
	case Red:
		return 'R'
	case Blue:
		return 'B'
	case Yellow:
		return '-'
	case White:
		return '.'
	default:
		return '#'
	}
}

func (c CaseValue) String() string {
	switch c {
	case Red:
		return "red"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// caseValueFromRune is the inverse of Rune; ' ' is accepted for White
func caseValueFromRune(r rune) (CaseValue, bool) {
	switch r {
	case 'R', 'r':
		return Red, true
	case 'B', 'b':
		return Blue, true
	case '-':
		return Yellow, true
	case '.', ' ':
		return White, true
	case '#':
		return Black, true
	default:
		return 0, false
	}
}

// Direction is one of the 8 compass directions
type Direction uint8

const (
	North Direction = iota
	East
	West
	South
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

// Directions lists every direction in the fixed iteration order
var Directions = [8]Direction{North, East, West, South, NorthEast, NorthWest, SouthEast, SouthWest}

// Mirror returns the opposite direction
func (d Direction) Mirror() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case NorthEast:
		return SouthWest
	case NorthWest:
		return SouthEast
	case SouthEast:
		return NorthWest
	default:
		return NorthEast
	}
}

// Offset returns the index delta of one step in this direction
func (d Direction) Offset(width int) int {
	switch d {
	case North:
		return -width
	case East:
		return 1
	case West:
		return -1
	case South:
		return width
	case NorthEast:
		return -width + 1
	case NorthWest:
		return -width - 1
	case SouthEast:
		return width + 1
	default:
		return width - 1
	}
}

func (d Direction) String() string {
	return [...]string{"N", "E", "W", "S", "NE", "NW", "SE", "SW"}[d]
}

// PlayResult is the outcome of a single play
type PlayResult uint8

const (
	InvalidPosition PlayResult = iota
	Played
	RedWin
	BlueWin
	NobodyWin // draw: nothing left to reveal anywhere
)

// IsTerminal returns true when the game ended with this result
func (r PlayResult) IsTerminal() bool {
	return r == RedWin || r == BlueWin || r == NobodyWin
}

// WinFor returns the win result for the given colour
func WinFor(color CaseValue) PlayResult {
	if color == Red {
		return RedWin
	}
	return BlueWin
}

// Winner returns the winning colour, or false for non-wins
func (r PlayResult) Winner() (CaseValue, bool) {
	switch r {
	case RedWin:
		return Red, true
	case BlueWin:
		return Blue, true
	default:
		return 0, false
	}
}

func (r PlayResult) String() string {
	switch r {
	case InvalidPosition:
		return "invalid position"
	case Played:
		return "played"
	case RedWin:
		return "red wins"
	case BlueWin:
		return "blue wins"
	case NobodyWin:
		return "nobody wins"
	default:
		return "unknown"
	}
}
