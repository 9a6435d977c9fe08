package players

import (
	"context"
	"fmt"

	"github.com/janpfeifer/gametree/internal/rules"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Match holds the states and scores of a match played between two players.
type Match struct {
	// Name of the match, only used for logging.
	Name string

	// States of the match, starting from the initial one: there is one more state than moves played.
	States []*State

	// Scores returned by the players for each move.
	Scores []float64

	// Outcome of the match. It is only valid if Finished is true.
	Outcome rules.Outcome

	// Finished is false if the match was interrupted by the maximum number of moves.
	Finished bool
}

// Final state of the match.
func (m *Match) Final() *State {
	if len(m.States) == 0 {
		return nil
	}
	return m.States[len(m.States)-1]
}

// NumMoves played in the match.
func (m *Match) NumMoves() int { return len(m.Scores) }

// OnMoveFn is called after each move of a match, with the new state and its score.
type OnMoveFn func(match *Match, next *State, score float64)

// PlayMatch plays from start until the game is over or maxMoves moves were played (if maxMoves > 0).
// players[SideFirst] and players[SideSecond] play the corresponding sides. onMove is optional.
//
// Players are not finalized: the caller owns them. If ctx is cancelled the match stops and the
// context error is returned, along with the partial match.
func PlayMatch(ctx context.Context, name string, r rules.Provider, start *State, players [2]Player,
	maxMoves int, onMove OnMoveFn) (*Match, error) {
	if klog.V(1).Enabled() {
		klog.Infof("Starting %s: %s (%s) vs %s (%s)", name, players[SideFirst], SideFirst, players[SideSecond], SideSecond)
	}
	match := &Match{Name: name, States: []*State{start}}
	s := start
	for !r.IsTerminal(s) {
		if maxMoves > 0 && match.NumMoves() >= maxMoves {
			klog.V(1).Infof("%s: interrupted after %d moves", name, match.NumMoves())
			return match, nil
		}
		side := r.TurnOf(s)
		if side != SideFirst && side != SideSecond {
			return match, errors.Errorf("%s: invalid side %s to play at %s", name, side, s)
		}
		next, score, err := players[side].Play(ctx, s)
		if err != nil {
			return match, errors.WithMessagef(err, "%s: %s playing move #%d", name, side, match.NumMoves()+1)
		}
		match.States = append(match.States, next)
		match.Scores = append(match.Scores, score)
		if onMove != nil {
			onMove(match, next, score)
		}
		s = next
	}
	outcome, found := r.Outcome(s)
	if !found {
		return match, errors.Errorf("%s: terminal state %s without a known outcome", name, s)
	}
	match.Outcome, match.Finished = outcome, true
	if klog.V(1).Enabled() {
		klog.Infof("%s: finished after %d moves, %s", name, match.NumMoves(), match.describeOutcome(players))
	}
	return match, nil
}

func (m *Match) describeOutcome(players [2]Player) string {
	if m.Outcome.Draw {
		return "match was a draw"
	}
	return fmt.Sprintf("%s won! (%s)", m.Outcome.Winner, players[m.Outcome.Winner])
}
