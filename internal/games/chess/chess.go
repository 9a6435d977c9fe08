// Package chess implements the games.Game for chess, using github.com/notnil/chess for move
// generation and check/checkmate/stalemate detection.
//
// White is state.SideFirst (the maximizer). Draw rules that depend on the history of the match
// (repetitions) are evaluated by walking the chain of ancestor states.
package chess

import (
	"strconv"
	"strings"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/ai/linear"
	"github.com/janpfeifer/gametree/internal/features"
	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/rules"
	"github.com/janpfeifer/gametree/internal/state"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// StartingFEN is the FEN of the initial chess position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position implements state.Position over a chess position.
type Position struct {
	pos           *chess.Position
	fen           string
	key           state.Key
	halfMoveClock int
}

func newPosition(pos *chess.Position) *Position {
	fen := pos.String()
	fields := strings.Fields(fen)
	p := &Position{pos: pos, fen: fen}
	if len(fields) >= 4 {
		p.key = state.Key(strings.Join(fields[:4], " "))
	} else {
		p.key = state.Key(fen)
	}
	if len(fields) >= 5 {
		p.halfMoveClock, _ = strconv.Atoi(fields[4])
	}
	return p
}

// Key implements state.Position: the placement, side to move, castling rights and en passant
// fields of the FEN. Move clocks are not part of the key, so repeated positions compare equal.
func (p *Position) Key() state.Key { return p.key }

// String implements state.Position: the full FEN.
func (p *Position) String() string { return p.fen }

// Chess returns the underlying notnil/chess position. It shouldn't be modified.
func (p *Position) Chess() *chess.Position { return p.pos }

// HalfMoveClock is the number of half-moves since the last capture or pawn move.
func (p *Position) HalfMoveClock() int { return p.halfMoveClock }

// PositionOf returns the chess Position of a State.
func PositionOf(s *state.State) *Position {
	return s.Position().(*Position)
}

// boardOf returns the board of a chess State.
func boardOf(s *state.State) *chess.Board {
	return PositionOf(s).pos.Board()
}

// FromFEN creates a root State from a position in FEN notation.
func FromFEN(fen string) (*state.State, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid FEN %q", fen)
	}
	return state.NewRoot(newPosition(chess.NewGame(opt).Position())), nil
}

// SideOf converts a chess color to the state.Side that plays it.
func SideOf(color chess.Color) state.Side {
	switch color {
	case chess.White:
		return state.SideFirst
	case chess.Black:
		return state.SideSecond
	}
	return state.SideNone
}

// Game implements games.Game for chess.
type Game struct{}

var _ games.Game = Game{}

func init() {
	games.Register(Game{})
}

// Name implements games.Game.
func (Game) Name() string { return "chess" }

// Rules implements games.Game.
func (Game) Rules() rules.Provider { return Rules{} }

// Heuristic implements games.Game.
func (g Game) Heuristic(name string) (ai.LeafHeuristic, error) {
	return Heuristics.Get(g.Name(), name)
}

// DefaultHeuristic implements games.Game.
func (Game) DefaultHeuristic() string { return "soft" }

// Features implements games.Game.
func (Game) Features() features.Extractor { return Features }

// DefaultModel implements games.Game.
func (Game) DefaultModel() ai.FeatureScorer { return linear.PreTrainedChess }

// NewMatch implements games.Game.
func (Game) NewMatch() *state.State {
	return state.NewRoot(newPosition(chess.NewGame().Position()))
}

// FromString implements games.Game, parsing a FEN.
func (Game) FromString(position string) (*state.State, error) {
	return FromFEN(position)
}
