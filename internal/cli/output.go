package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/mcoot/spreadgame/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
	term   *termenv.Output
}

// NewOutput creates a new Output formatter. Colours are used only when w
// is a terminal that supports them.
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{
		format: format,
		w:      w,
		errW:   errW,
		term:   termenv.NewOutput(w),
	}
}

// NewPlainOutput creates an Output that never emits colour codes
func NewPlainOutput(format string, w, errW io.Writer) *Output {
	return &Output{
		format: format,
		w:      w,
		errW:   errW,
		term:   termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii)),
	}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case GameView:
		o.printGameView(v)
	case BoardView:
		o.printBoard(v)
	case BenchmarkResult:
		o.printBenchmark(v)
	case TrainResult:
		o.printTrainResult(v)
	case SaveList:
		o.printSaveList(v)
	case Inspection:
		o.printInspection(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// BoardView is a rendered board
type BoardView struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
	Turn   string   `json:"turn"`
}

// NewBoardView captures b for display
func NewBoardView(b *model.Board) BoardView {
	return BoardView{
		Width:  b.Width(),
		Height: b.Height(),
		Rows:   strings.Split(b.String(), "\n"),
		Turn:   b.Turn().String(),
	}
}

// GameView is the state of an interactive game
type GameView struct {
	ID     string    `json:"id"`
	State  string    `json:"state"`
	Human  string    `json:"human"`
	Bot    string    `json:"bot"`
	Result string    `json:"result,omitempty"`
	Board  BoardView `json:"board"`
	// LastMove is the bot's last index, -1 before it moved
	LastMove int `json:"last_move"`
}

// NewGameView captures g for display
func NewGameView(g *model.Game) GameView {
	v := GameView{
		ID:       string(g.ID),
		State:    string(g.State),
		Human:    g.HumanColor.String(),
		Bot:      g.BotStrategy,
		Board:    NewBoardView(g.Board),
		LastMove: -1,
	}
	if g.IsComplete() {
		v.Result = g.Result.String()
	}
	for i := len(g.Moves) - 1; i >= 0; i-- {
		if g.Moves[i].Color == g.BotColor() {
			v.LastMove = g.Moves[i].Index
			break
		}
	}
	return v
}

// BenchmarkResult is the outcome of a series against random play
type BenchmarkResult struct {
	Games int `json:"games"`
	Win   int `json:"win"`
	Loose int `json:"loose"`
	None  int `json:"none"`
	Score int `json:"score"`
}

// NewBenchmarkResult converts a tally for display
func NewBenchmarkResult(r model.CompareResult) BenchmarkResult {
	return BenchmarkResult{Games: r.Games(), Win: r.Win, Loose: r.Loose, None: r.None, Score: r.Score()}
}

// GenerationResult is one trained generation
type GenerationResult struct {
	Round           int     `json:"round"`
	Accepted        bool    `json:"accepted"`
	Ratio           float64 `json:"ratio"`
	ChampionFitness float64 `json:"champion_fitness"`
	Fitness         float64 `json:"fitness"`
	ElapsedMillis   int64   `json:"elapsed_ms"`
	Slot            *int    `json:"slot,omitempty"`
}

// TrainResult summarises a training run
type TrainResult struct {
	Generations []GenerationResult `json:"generations"`
	Generation  int                `json:"generation"`
	Fitness     float64            `json:"fitness"`
}

// SaveList lists the saved checkpoints
type SaveList struct {
	Slots []int `json:"slots"`
}

// CellScore is the evaluation of one playable cell
type CellScore struct {
	Index     int     `json:"index"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Heuristic float64 `json:"heuristic"`
}

// Inspection is the analysis of a board position
type Inspection struct {
	Board  BoardView   `json:"board"`
	Cells  []CellScore `json:"cells"`
	Search int         `json:"search"`
	Policy int         `json:"policy"`
}

func (o *Output) cell(r rune) string {
	s := o.term.String(string(r))
	switch r {
	case 'R':
		s = s.Foreground(o.term.Color("1")).Bold()
	case 'B':
		s = s.Foreground(o.term.Color("4")).Bold()
	case '-':
		s = s.Foreground(o.term.Color("3"))
	case '#':
		s = s.Foreground(o.term.Color("8"))
	case '.':
		s = s.Faint()
	}
	return s.String()
}

func (o *Output) printBoard(b BoardView) {
	if len(b.Rows) == 0 {
		return
	}

	// Print column headers
	fmt.Fprint(o.w, "    ")
	for x := 0; x < b.Width; x++ {
		fmt.Fprintf(o.w, " %d ", x)
	}
	fmt.Fprintln(o.w)

	// Print top border
	fmt.Fprint(o.w, "   +")
	fmt.Fprint(o.w, strings.Repeat("---", b.Width))
	fmt.Fprintln(o.w, "+")

	// Print rows
	for y, row := range b.Rows {
		fmt.Fprintf(o.w, " %d |", y)
		for _, r := range row {
			fmt.Fprintf(o.w, " %s ", o.cell(r))
		}
		fmt.Fprintln(o.w, "|")
	}

	// Print bottom border
	fmt.Fprint(o.w, "   +")
	fmt.Fprint(o.w, strings.Repeat("---", b.Width))
	fmt.Fprintln(o.w, "+")
}

func (o *Output) printGameView(g GameView) {
	fmt.Fprintf(o.w, "Game: %s (you: %s, bot: %s)\n", g.ID, g.Human, g.Bot)
	if g.LastMove >= 0 {
		fmt.Fprintf(o.w, "Bot played: %d (%d %d)\n", g.LastMove, g.LastMove%g.Board.Width, g.LastMove/g.Board.Width)
	}
	o.printBoard(g.Board)
	if g.Result != "" {
		fmt.Fprintf(o.w, "Result: %s\n", g.Result)
	}
}

func (o *Output) printBenchmark(r BenchmarkResult) {
	fmt.Fprintf(o.w, "Games: %d\n", r.Games)
	fmt.Fprintf(o.w, "Win: %d  Loose: %d  None: %d\n", r.Win, r.Loose, r.None)
	fmt.Fprintf(o.w, "Score: %d\n", r.Score)
}

func (o *Output) printTrainResult(t TrainResult) {
	for _, g := range t.Generations {
		if g.Accepted && g.Slot != nil {
			fmt.Fprintf(o.w, "Round %d improved in %dms: fitness %.2f -> %.2f (ratio %.4f, slot %d)\n",
				g.Round, g.ElapsedMillis, g.ChampionFitness, g.Fitness, g.Ratio, *g.Slot)
		} else {
			fmt.Fprintf(o.w, "Round %d: no improvement after %dms (ratio %.4f, fitness %.2f)\n",
				g.Round, g.ElapsedMillis, g.Ratio, g.ChampionFitness)
		}
	}
	fmt.Fprintf(o.w, "Champion generation %d, fitness %.2f\n", t.Generation, t.Fitness)
}

func (o *Output) printSaveList(l SaveList) {
	if len(l.Slots) == 0 {
		fmt.Fprintln(o.w, "No saves")
		return
	}
	fmt.Fprintf(o.w, "Saves (%d):\n", len(l.Slots))
	for _, slot := range l.Slots {
		fmt.Fprintf(o.w, "  - %d\n", slot)
	}
}

func (o *Output) printInspection(in Inspection) {
	o.printBoard(in.Board)
	fmt.Fprintf(o.w, "To move: %s\n", in.Board.Turn)
	for _, c := range in.Cells {
		fmt.Fprintf(o.w, "  %3d (%d %d): %.2f\n", c.Index, c.X, c.Y, c.Heuristic)
	}
	if in.Search >= 0 {
		fmt.Fprintf(o.w, "Search plays: %d\n", in.Search)
	}
	if in.Policy >= 0 {
		fmt.Fprintf(o.w, "Policy plays: %d\n", in.Policy)
	}
}
