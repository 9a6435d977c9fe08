package minimax

import (
	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/parameters"
	"github.com/pkg/errors"
)

// NewFromParams creates a minimax searcher for game from the configuration parameters:
//
//   - max_depth: plies to search, default DefaultMaxDepth.
//   - leaf: name of the leaf heuristic, default the game's default.
//
// Used parameters are popped from params.
func NewFromParams(game games.Game, params parameters.Params) (*Searcher, error) {
	maxDepth, err := parameters.PopParamOr(params, "max_depth", DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	leafName, err := parameters.PopParamOr(params, "leaf", game.DefaultHeuristic())
	if err != nil {
		return nil, err
	}
	leaf, err := game.Heuristic(leafName)
	if err != nil {
		return nil, errors.WithMessage(err, "minimax leaf heuristic")
	}
	return New(game.Rules(), leaf, maxDepth)
}
