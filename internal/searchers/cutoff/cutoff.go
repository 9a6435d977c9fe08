// Package cutoff implements the rankers that narrow the children of a node before the expensive
// recursive search: every child is scored with a cheaper (or differently informed) function, and
// only the best k for the side to move are kept.
//
// Three layers are provided:
//
//   - H0 (NewStatic): one static call to a secondary heuristic per child.
//   - Hl (NewLookahead): a shallow alpha-beta search per child, using the H0 heuristic at its leaves.
//   - Hr (NewRegression): a pre-trained regression model over the feature vector of each child.
//
// Rankers keep no per-search state, but they report their work into the searchers.Stats passed to
// Rank, so they can be shared by the root and inner cutoffs of one searcher.
package cutoff

import (
	"context"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/gametree/internal/generics"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Ranker scores children and keeps the top Width() of them for the side to move.
type Ranker interface {
	// Layer used to account the work of the ranker in searchers.Stats.
	Layer() searchers.Layer

	// Width is the maximum number of children kept: the k of the top-k.
	Width() int

	// Rank returns at most Width() children, ordered from best to worst for the side to move: in
	// decreasing score if maximizing, increasing otherwise. Ties keep the order of children.
	//
	// It adds len(children) to the Evals of its layer and the number of discarded children to
	// its Prunes. It only returns an error if ctx is cancelled.
	Rank(ctx context.Context, children []*State, maximizing bool, stats *searchers.Stats) ([]*State, error)

	// String describes the ranker.
	String() string
}

// validateWidth is used by all constructors.
func validateWidth(k int) error {
	if k <= 0 {
		return errors.Errorf("cutoff width k must be positive, got k=%d", k)
	}
	return nil
}

// topK returns the k best children by scores, and accounts it for layer in stats.
func topK(layer searchers.Layer, k int, children []*State, scores []float64, maximizing bool,
	stats *searchers.Stats) []*State {
	if len(children) != len(scores) {
		exceptions.Panicf("cutoff.topK: %d children but %d scores", len(children), len(scores))
	}
	ordering := generics.SliceOrdering(scores, maximizing)
	kept := min(k, len(children))
	stats.Layers[layer].Evals += len(children)
	stats.Layers[layer].Prunes += len(children) - kept
	return generics.SliceMap(ordering[:kept], func(idx int) *State { return children[idx] })
}
