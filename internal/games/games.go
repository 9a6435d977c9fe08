// Package games defines a Game: the bundle of rules, named heuristics, feature extractor and
// initial position that the searchers and players need to play a two-player game.
//
// Games register themselves (usually in an init function) and are looked up by name by the
// players configuration.
package games

import (
	"fmt"
	"strings"
	"sync"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/features"
	"github.com/janpfeifer/gametree/internal/generics"
	"github.com/janpfeifer/gametree/internal/rules"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Game bundles everything a searcher needs about one game.
type Game interface {
	// Name of the game, used in configuration strings.
	Name() string

	// Rules provider of the game.
	Rules() rules.Provider

	// Heuristic returns the named leaf heuristic. Names are game specific.
	Heuristic(name string) (ai.LeafHeuristic, error)

	// DefaultHeuristic is the name of the heuristic used when none is configured.
	DefaultHeuristic() string

	// Features returns the feature extractor used by regression models, or nil if the game has none.
	Features() features.Extractor

	// DefaultModel returns the pre-trained regression model for Features, or nil.
	DefaultModel() ai.FeatureScorer

	// NewMatch returns the initial state of a match.
	NewMatch() *State

	// FromString parses a position in the game's own notation (e.g. FEN for chess).
	FromString(position string) (*State, error)
}

var (
	registry   = make(map[string]Game)
	muRegistry sync.Mutex
)

// Register a game. It panics if a game with the same name is already registered.
func Register(game Game) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if _, found := registry[game.Name()]; found {
		panic(fmt.Sprintf("games.Register(%q): game already registered", game.Name()))
	}
	registry[game.Name()] = game
}

// Get returns the registered game with the given name.
func Get(name string) (Game, error) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	game, found := registry[name]
	if !found {
		return nil, errors.Errorf("unknown game %q, registered games: %s", name,
			strings.Join(generics.KeysSlice(registry), ", "))
	}
	return game, nil
}

// HeuristicTable is a helper to implement Game.Heuristic from a map.
type HeuristicTable map[string]ai.LeafHeuristic

// Get returns the named heuristic, or an error listing the known ones.
func (t HeuristicTable) Get(game, name string) (ai.LeafHeuristic, error) {
	h, found := t[name]
	if !found {
		return nil, errors.Errorf("game %s has no heuristic %q, valid heuristics: %s", game, name,
			strings.Join(generics.KeysSlice(t), ", "))
	}
	return h, nil
}
