// Package searchers defines the interface of the game-tree searchers and what they share:
// instrumentation counters (Stats), the search layers, and the tie-break rule used to pick a move.
package searchers

import (
	"context"
	"math"

	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// ErrNoLegalMove is returned by Search when the root state has no children.
var ErrNoLegalMove = errors.New("no legal move available")

// Searcher is the interface that any of the search algorithms must adhere to be valid.
//
// A Searcher is not safe for concurrent use: its counters and per-search scratch tables are owned
// by one call stack. Use one Searcher per goroutine.
type Searcher interface {
	// Search returns the chosen child of root, along with its score from the maximizing side's
	// (state.SideFirst) point of view.
	//
	// It returns ErrNoLegalMove if root has no children, or the context error if ctx is cancelled
	// before the search completes.
	Search(ctx context.Context, root *State) (next *State, score float64, err error)

	// Stats returns the cumulative counters of all searches done so far.
	Stats() Stats

	// String describes the searcher configuration.
	String() string
}

// Pick returns the index of the extremal score: the maximum if maximizing, the minimum otherwise.
// Ties are broken by the first one encountered in iteration order.
//
// It returns -1 if scores is empty.
func Pick(scores []float64, maximizing bool) int {
	bestIdx := -1
	best := math.Inf(-1)
	if !maximizing {
		best = math.Inf(1)
	}
	for ii, score := range scores {
		if bestIdx == -1 ||
			(maximizing && score > best) ||
			(!maximizing && score < best) {
			bestIdx = ii
			best = score
		}
	}
	return bestIdx
}
