package players

import (
	"context"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Agent is the standard set up for an AI: a searcher bound to a game.
// It implements the Player interface.
//
// Like its searcher, an Agent is not safe for concurrent use: create one per match.
type Agent struct {
	Game     games.Game
	Searcher searchers.Searcher

	config string
}

// Assert that Agent is a Player.
var _ Player = &Agent{}

// NewAgent binds searcher to game. config is only used for logging: it can be left empty.
func NewAgent(game games.Game, searcher searchers.Searcher, config string) *Agent {
	return &Agent{Game: game, Searcher: searcher, config: config}
}

// Act returns the state after the move chosen by the searcher.
func (a *Agent) Act(ctx context.Context, s *State) (*State, error) {
	next, _, err := a.Play(ctx, s)
	return next, err
}

// Play implements the Player interface: it searches the best move from s.
func (a *Agent) Play(ctx context.Context, s *State) (next *State, score float64, err error) {
	if a.Searcher == nil {
		return nil, 0, errors.Errorf("player %s already finalized", a)
	}
	next, score, err = a.Searcher.Search(ctx, s)
	if err != nil {
		return nil, 0, err
	}
	if klog.V(2).Enabled() {
		klog.Infof("Move #%d: AI (%s) playing %s, score=%s",
			s.Ply()+1, a.Searcher, next.Move(), ai.FormatScore(score))
	}
	return next, score, nil
}

// Stats returns the counters of the searcher.
func (a *Agent) Stats() searchers.Stats {
	if a.Searcher == nil {
		return searchers.Stats{}
	}
	return a.Searcher.Stats()
}

// Finalize is called at the end of a match.
func (a *Agent) Finalize() {
	if klog.V(1).Enabled() {
		klog.Infof("Player (%s) finalized: %s", a, a.Stats())
	}
	a.Searcher = nil
}

func (a *Agent) String() string {
	if a.config != "" {
		return a.config
	}
	if a.Searcher == nil {
		return "<finalized>"
	}
	return a.Game.Name() + ":" + a.Searcher.String()
}
