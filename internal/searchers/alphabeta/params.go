package alphabeta

import (
	"path/filepath"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/ai/linear"
	"github.com/janpfeifer/gametree/internal/ai/mlp"
	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/parameters"
	"github.com/janpfeifer/gametree/internal/searchers/cutoff"
	"github.com/janpfeifer/gametree/internal/searchers/tt"
	"github.com/pkg/errors"
)

// Default cutoff parameters.
const (
	DefaultCutoffWidth     = 5
	DefaultLookaheadDepth  = 2
	sameCutoff             = "same"
	noCutoff               = "none"
	defaultCacheModeString = "window"
)

// NewFromParams creates an alpha-beta searcher for game from the configuration parameters:
//
//   - max_depth: plies to search, default DefaultMaxDepth.
//   - leaf: name of the leaf heuristic, default the game's default.
//   - cutoff: root cutoff, one of "none" (default), "h0", "hl" or "hr".
//   - k: cutoff width, default DefaultCutoffWidth.
//   - l: lookahead depth of the "hl" cutoff, default DefaultLookaheadDepth.
//   - cutoff_leaf: heuristic used by "h0" and "hl" cutoffs, default the same as leaf.
//   - inner_cutoff: cutoff of internal nodes, one of "same" (default), "none", "h0", "hl" or "hr".
//     For cutoff=hl the default is "h0".
//   - model: model used by the "hr" cutoff: a YAML file is loaded as an MLP (see package mlp), anything
//     else as a linear model name or file (see linear.ByName). Default is the game's default model.
//   - cache: transposition cache mode, "off", "window" (default) or "unconditional".
//   - exact_root: search each root child with a full window.
//
// Used parameters are popped from params.
func NewFromParams(game games.Game, params parameters.Params) (*Searcher, error) {
	config := DefaultConfig()
	var err error
	if config.MaxDepth, err = parameters.PopParamOr(params, "max_depth", config.MaxDepth); err != nil {
		return nil, err
	}
	leafName, err := parameters.PopParamOr(params, "leaf", game.DefaultHeuristic())
	if err != nil {
		return nil, err
	}
	leaf, err := game.Heuristic(leafName)
	if err != nil {
		return nil, errors.WithMessage(err, "alpha-beta leaf heuristic")
	}

	b := &rankerBuilder{game: game}
	rootKind, err := parameters.PopParamOr(params, "cutoff", noCutoff)
	if err != nil {
		return nil, err
	}
	defaultInner := sameCutoff
	if rootKind == "hl" {
		defaultInner = "h0"
	}
	innerKind, err := parameters.PopParamOr(params, "inner_cutoff", defaultInner)
	if err != nil {
		return nil, err
	}
	if innerKind == sameCutoff {
		innerKind = rootKind
	}
	if b.k, err = parameters.PopParamOr(params, "k", DefaultCutoffWidth); err != nil {
		return nil, err
	}
	if b.l, err = parameters.PopParamOr(params, "l", DefaultLookaheadDepth); err != nil {
		return nil, err
	}
	if b.cutoffLeaf, err = parameters.PopParamOr(params, "cutoff_leaf", leafName); err != nil {
		return nil, err
	}
	if b.model, err = parameters.PopParamOr(params, "model", ""); err != nil {
		return nil, err
	}
	if config.RootCutoff, err = b.build(rootKind); err != nil {
		return nil, err
	}
	if config.InnerCutoff, err = b.build(innerKind); err != nil {
		return nil, err
	}

	cacheName, err := parameters.PopParamOr(params, "cache", defaultCacheModeString)
	if err != nil {
		return nil, err
	}
	if config.Cache, err = tt.ParseMode(cacheName); err != nil {
		return nil, err
	}
	if config.ExactRootScores, err = parameters.PopParamOr(params, "exact_root", false); err != nil {
		return nil, err
	}
	return New(game.Rules(), leaf, config)
}

// rankerBuilder creates the cutoff rankers configured by the parameters.
type rankerBuilder struct {
	game       games.Game
	k, l       int
	cutoffLeaf string
	model      string
}

func (b *rankerBuilder) build(kind string) (cutoff.Ranker, error) {
	switch kind {
	case noCutoff, "":
		return nil, nil
	case "h0", "hl":
		h0, err := b.game.Heuristic(b.cutoffLeaf)
		if err != nil {
			return nil, errors.WithMessage(err, "cutoff_leaf heuristic")
		}
		if kind == "h0" {
			return cutoff.NewStatic(h0, b.k)
		}
		return cutoff.NewLookahead(b.game.Rules(), h0, b.k, b.l)
	case "hr":
		model, err := b.loadModel()
		if err != nil {
			return nil, err
		}
		return cutoff.NewRegression(b.game.Features(), model, b.k)
	}
	return nil, errors.Errorf("unknown cutoff %q, valid values are \"none\", \"h0\", \"hl\" or \"hr\"", kind)
}

func (b *rankerBuilder) loadModel() (ai.FeatureScorer, error) {
	switch ext := filepath.Ext(b.model); {
	case b.model == "":
		return b.game.DefaultModel(), nil
	case ext == ".yaml" || ext == ".yml":
		return mlp.Load(b.model)
	default:
		return linear.ByName(b.model)
	}
}
