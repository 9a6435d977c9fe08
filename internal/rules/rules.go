// Package rules defines the interface to the rule engine of a two-player game, as consumed
// by the searchers.
package rules

import (
	"fmt"

	. "github.com/janpfeifer/gametree/internal/state"
)

// Provider is the authority on the rules of a game: move generation, terminal detection and
// the result of finished games.
type Provider interface {
	// Neighbors returns all states reachable from s by one legal move, in a deterministic order.
	// An empty result means there are no moves, and s is terminal by exhaustion.
	Neighbors(s *State) []*State

	// IsTerminal returns whether the game is over at s.
	IsTerminal(s *State) bool

	// IsClaimableDraw returns whether the side to move at s could claim a draw.
	IsClaimableDraw(s *State) bool

	// TurnOf returns the side to move at s.
	TurnOf(s *State) Side

	// Outcome returns the result of a terminal state. The boolean is false if the outcome is
	// not known (e.g. s is not terminal).
	Outcome(s *State) (Outcome, bool)
}

// Outcome of a finished game: either a draw or a win for one of the sides.
type Outcome struct {
	Draw   bool
	Winner Side
}

var (
	// DrawOutcome is the outcome of a drawn game.
	DrawOutcome = Outcome{Draw: true, Winner: SideNone}
)

// WinFor returns the outcome of a game won by side.
func WinFor(side Side) Outcome {
	return Outcome{Winner: side}
}

func (o Outcome) String() string {
	if o.Draw {
		return "draw"
	}
	return fmt.Sprintf("win(%s)", o.Winner)
}
