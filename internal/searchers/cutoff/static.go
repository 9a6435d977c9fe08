package cutoff

import (
	"context"
	"fmt"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/generics"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Static is the H0 ranker: it scores each child with one call to a heuristic.
type Static struct {
	heuristic ai.LeafHeuristic
	k         int
}

var _ Ranker = (*Static)(nil)

// NewStatic returns an H0 ranker that keeps the k best children according to heuristic.
func NewStatic(heuristic ai.LeafHeuristic, k int) (*Static, error) {
	if heuristic == nil {
		return nil, errors.New("H0 cutoff requires a heuristic")
	}
	if err := validateWidth(k); err != nil {
		return nil, err
	}
	return &Static{heuristic: heuristic, k: k}, nil
}

// Layer implements Ranker.
func (r *Static) Layer() searchers.Layer { return searchers.LayerH0 }

// Width implements Ranker.
func (r *Static) Width() int { return r.k }

// Rank implements Ranker.
func (r *Static) Rank(ctx context.Context, children []*State, maximizing bool, stats *searchers.Stats) ([]*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	scores := generics.SliceMap(children, r.heuristic.Score)
	return topK(searchers.LayerH0, r.k, children, scores, maximizing, stats), nil
}

func (r *Static) String() string {
	return fmt.Sprintf("H0(%s, k=%d)", r.heuristic, r.k)
}
