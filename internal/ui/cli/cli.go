// Package cli implements a command-line UI for the games: boards are printed with colored squares,
// and counters in tables.
package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/games/chess"
	"github.com/janpfeifer/gametree/internal/games/tictactoe"
	"github.com/janpfeifer/gametree/internal/rules"
	. "github.com/janpfeifer/gametree/internal/state"
	notnil "github.com/notnil/chess"
	"golang.org/x/term"
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the number of runes left.
func displayWidth(s string) int {
	return len([]rune(ansiFilter.ReplaceAllString(s, "")))
}

// terminalWidth of the output, or 0 if it is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// centered returns block indented to be centered in a terminal of the given width.
func centered(block string, width int) string {
	lines := strings.Split(block, "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((width-blockWidth)/2, 0)
	var sb strings.Builder
	for ii, line := range lines {
		if ii > 0 {
			sb.WriteString("\n")
		}
		if len(line) > 0 {
			sb.WriteString(strings.Repeat(" ", indent))
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// UI prints states and results of matches.
type UI struct {
	color bool
	w     io.Writer
}

// New creates a UI that prints to the standard output.
func New(color bool) *UI {
	return &UI{color: color, w: os.Stdout}
}

// WithOutput sets the writer where the UI prints. It returns itself.
func (ui *UI) WithOutput(w io.Writer) *UI {
	ui.w = w
	return ui
}

func (ui *UI) printCentered(block string) {
	_, _ = fmt.Fprintln(ui.w, centered(block, terminalWidth(ui.w)))
}

var (
	lightSquare = lipgloss.NewStyle().Background(lipgloss.Color("180")).Foreground(lipgloss.Color("0"))
	darkSquare  = lipgloss.NewStyle().Background(lipgloss.Color("94")).Foreground(lipgloss.Color("0"))
	firstStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	secondStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	drawStyle   = lipgloss.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(1, 2)
)

// PrintState prints the move number, the board and the side to play.
func (ui *UI) PrintState(s *State, toPlay Side) {
	_, _ = fmt.Fprintf(ui.w, "\nMove #%d", s.Ply())
	if s.Move() != nil {
		_, _ = fmt.Fprintf(ui.w, " (%s)", s.Move())
	}
	_, _ = fmt.Fprint(ui.w, "\n\n")
	ui.printCentered(ui.Board(s))
	_, _ = fmt.Fprintf(ui.w, "\n\tTurn to play: %s\n", ui.side(toPlay))
}

// side returns the colored name of the side.
func (ui *UI) side(side Side) string {
	name := side.String()
	if !ui.color {
		return name
	}
	switch side {
	case SideFirst:
		return firstStyle.Render(name)
	case SideSecond:
		return secondStyle.Render(name)
	}
	return name
}

// Board returns the rendering of the board of s.
// Positions of unknown games are rendered with their String method.
func (ui *UI) Board(s *State) string {
	switch pos := s.Position().(type) {
	case *chess.Position:
		return ui.chessBoard(pos.Chess().Board())
	case tictactoe.Board:
		return ui.ticTacToeBoard(pos)
	}
	return s.Position().String()
}

func (ui *UI) chessBoard(board *notnil.Board) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d ", rank+1)
		for file := range 8 {
			piece := board.Piece(notnil.Square(file + rank*8))
			symbol := "."
			if piece != notnil.NoPiece {
				symbol = piece.Type().String()
				if piece.Color() == notnil.White {
					symbol = strings.ToUpper(symbol)
				}
			}
			sb.WriteString(ui.square(fmt.Sprintf(" %s ", symbol), (file+rank)%2 == 1, piece.Color() == notnil.White))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   a  b  c  d  e  f  g  h")
	return sb.String()
}

func (ui *UI) ticTacToeBoard(b tictactoe.Board) string {
	var sb strings.Builder
	for row := range 3 {
		if row > 0 {
			sb.WriteString("\n")
		}
		for col := range 3 {
			cell := b[row*3+col]
			symbol := "."
			if cell != tictactoe.Empty {
				symbol = string(rune(cell))
			}
			sb.WriteString(ui.square(fmt.Sprintf(" %s ", symbol), (row+col)%2 == 0, cell == tictactoe.X))
		}
	}
	return sb.String()
}

func (ui *UI) square(content string, light, firstSide bool) string {
	if !ui.color {
		return content
	}
	style := darkSquare
	if light {
		style = lightSquare
	}
	if firstSide {
		style = style.Bold(true).Foreground(lipgloss.Color("15"))
	}
	return style.Render(content)
}

// PrintOutcome of a match. winner is the description of the player that won, if any.
func (ui *UI) PrintOutcome(outcome rules.Outcome, score float64, winner string) {
	_, _ = fmt.Fprintln(ui.w)
	if outcome.Draw {
		msg := fmt.Sprintf("*** DRAW (last score %s) ***", ai.FormatScore(score))
		if ui.color {
			msg = drawStyle.Render(msg)
		}
		ui.printCentered(msg)
	} else {
		ui.printCentered(fmt.Sprintf("*** %s (%s) WINS! ***",
			ui.side(outcome.Winner), winner))
	}
	_, _ = fmt.Fprintln(ui.w)
}
