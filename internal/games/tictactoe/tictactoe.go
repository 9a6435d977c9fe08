// Package tictactoe implements the game of tic-tac-toe: small enough that it can be searched
// exhaustively, which makes it a good test bed for the searchers.
//
// X plays first (state.SideFirst, the maximizer), O plays second.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/ai/linear"
	"github.com/janpfeifer/gametree/internal/features"
	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/rules"
	"github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Cell of the board.
type Cell byte

const (
	Empty Cell = '.'
	X     Cell = 'X'
	O     Cell = 'O'
)

// Board is the position of a tic-tac-toe game, cells in row-major order.
// It implements state.Position.
type Board [9]Cell

// EmptyBoard is the starting position.
var EmptyBoard = Board{Empty, Empty, Empty, Empty, Empty, Empty, Empty, Empty, Empty}

// Key implements state.Position.
func (b Board) Key() state.Key { return state.Key(b[:]) }

// String implements state.Position: the 3 rows separated by "/".
func (b Board) String() string {
	return fmt.Sprintf("%s/%s/%s", string(b[0:3]), string(b[3:6]), string(b[6:9]))
}

// Count the cells with the given content.
func (b Board) Count(c Cell) (count int) {
	for _, cell := range b {
		if cell == c {
			count++
		}
	}
	return
}

// Turn returns whose turn it is, from the number of pieces on the board.
func (b Board) Turn() state.Side {
	if b.Count(X) > b.Count(O) {
		return state.SideSecond
	}
	return state.SideFirst
}

// Lines are all the winning lines of the board.
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Winner returns the side that completed a line, or state.SideNone.
func (b Board) Winner() state.Side {
	for _, line := range Lines {
		c := b[line[0]]
		if c != Empty && c == b[line[1]] && c == b[line[2]] {
			return sideOf(c)
		}
	}
	return state.SideNone
}

func sideOf(c Cell) state.Side {
	switch c {
	case X:
		return state.SideFirst
	case O:
		return state.SideSecond
	}
	return state.SideNone
}

func cellOf(side state.Side) Cell {
	if side == state.SideFirst {
		return X
	}
	return O
}

// Move places a piece on a cell.
type Move struct {
	Cell  int
	Piece Cell
}

func (m Move) String() string {
	return fmt.Sprintf("%c@%d%d", m.Piece, m.Cell/3, m.Cell%3)
}

// BoardOf returns the Board of a tic-tac-toe State.
func BoardOf(s *state.State) Board {
	return s.Position().(Board)
}

// Rules implements rules.Provider for tic-tac-toe.
type Rules struct{}

var _ rules.Provider = Rules{}

// Neighbors implements rules.Provider: the empty cells, in row-major order.
func (Rules) Neighbors(s *state.State) []*state.State {
	b := BoardOf(s)
	if b.Winner() != state.SideNone {
		return nil
	}
	piece := cellOf(b.Turn())
	var children []*state.State
	for ii, cell := range b {
		if cell != Empty {
			continue
		}
		next := b
		next[ii] = piece
		children = append(children, s.NewChild(next, Move{Cell: ii, Piece: piece}))
	}
	return children
}

// IsTerminal implements rules.Provider.
func (Rules) IsTerminal(s *state.State) bool {
	b := BoardOf(s)
	return b.Winner() != state.SideNone || b.Count(Empty) == 0
}

// IsClaimableDraw implements rules.Provider: there are no draw claims in tic-tac-toe.
func (Rules) IsClaimableDraw(*state.State) bool { return false }

// TurnOf implements rules.Provider.
func (Rules) TurnOf(s *state.State) state.Side { return BoardOf(s).Turn() }

// Outcome implements rules.Provider.
func (Rules) Outcome(s *state.State) (rules.Outcome, bool) {
	b := BoardOf(s)
	if winner := b.Winner(); winner != state.SideNone {
		return rules.WinFor(winner), true
	}
	if b.Count(Empty) == 0 {
		return rules.DrawOutcome, true
	}
	return rules.Outcome{}, false
}

// openLines counts the lines that have at least one piece of c and none of the opponent.
func openLines(b Board, c Cell) (count int) {
	for _, line := range Lines {
		mine, theirs := 0, 0
		for _, idx := range line {
			switch b[idx] {
			case c:
				mine++
			case Empty:
			default:
				theirs++
			}
		}
		if mine > 0 && theirs == 0 {
			count += mine
		}
	}
	return
}

var (
	// Lines heuristic: open lines for X minus open lines for O, weighted by pieces in them.
	linesHeuristic = ai.NewHeuristic("lines", func(s *state.State) float64 {
		b := BoardOf(s)
		return float64(openLines(b, X) - openLines(b, O))
	})

	// Zero heuristic is uninformed: useful for exhaustive searches.
	zeroHeuristic = ai.NewHeuristic("zero", func(*state.State) float64 { return 0 })

	heuristics = games.HeuristicTable{
		"lines": linesHeuristic,
		"zero":  zeroHeuristic,
	}
)

func pairSetter(fn func(b Board, c Cell) float32) features.Setter {
	return func(s *state.State, _ *features.Spec, f []float32) {
		b := BoardOf(s)
		f[0], f[1] = fn(b, X), fn(b, O)
	}
}

// Features of tic-tac-toe, in (X, O) pairs.
var Features = features.NewSet("tictactoe",
	features.Spec{Name: "OpenLines", Dim: 2, Min: 0, Max: 24,
		Setter: pairSetter(func(b Board, c Cell) float32 { return float32(openLines(b, c)) })},
	features.Spec{Name: "Center", Dim: 2,
		Setter: pairSetter(func(b Board, c Cell) float32 {
			if b[4] == c {
				return 1
			}
			return 0
		})},
	features.Spec{Name: "Corners", Dim: 2, Min: 0, Max: 4,
		Setter: pairSetter(func(b Board, c Cell) float32 {
			var count float32
			for _, idx := range []int{0, 2, 6, 8} {
				if b[idx] == c {
					count++
				}
			}
			return count
		})},
)

// DefaultModel scores the Features.
var DefaultModel = linear.NewWithWeights(
	// OpenLines
	2, -2,
	// Center
	0.5, -0.5,
	// Corners
	0.4, -0.4,
	// Bias
	0,
).WithName("tictactoe-v0")

// Game implements games.Game for tic-tac-toe.
type Game struct{}

var _ games.Game = Game{}

func init() {
	games.Register(Game{})
}

// Name implements games.Game.
func (Game) Name() string { return "tictactoe" }

// Rules implements games.Game.
func (Game) Rules() rules.Provider { return Rules{} }

// Heuristic implements games.Game.
func (g Game) Heuristic(name string) (ai.LeafHeuristic, error) {
	return heuristics.Get(g.Name(), name)
}

// DefaultHeuristic implements games.Game.
func (Game) DefaultHeuristic() string { return "lines" }

// Features implements games.Game.
func (Game) Features() features.Extractor { return Features }

// DefaultModel implements games.Game.
func (Game) DefaultModel() ai.FeatureScorer { return DefaultModel }

// NewMatch implements games.Game.
func (Game) NewMatch() *state.State { return state.NewRoot(EmptyBoard) }

// FromString implements games.Game: it accepts the 9 cells in row-major order, using "X", "O" and
// "." (or " "), optionally with "/" separating the rows.
func (Game) FromString(position string) (*state.State, error) {
	cells := strings.ReplaceAll(position, "/", "")
	if len(cells) != 9 {
		return nil, errors.Errorf("tic-tac-toe position %q must have 9 cells", position)
	}
	var b Board
	for ii, r := range strings.ToUpper(cells) {
		switch r {
		case 'X', 'O':
			b[ii] = Cell(r)
		case '.', ' ':
			b[ii] = Empty
		default:
			return nil, errors.Errorf("tic-tac-toe position %q has invalid cell %q", position, r)
		}
	}
	if diff := b.Count(X) - b.Count(O); diff < 0 || diff > 1 {
		return nil, errors.Errorf("tic-tac-toe position %q has an invalid number of pieces", position)
	}
	return state.NewRoot(b), nil
}
