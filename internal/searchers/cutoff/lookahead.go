package cutoff

import (
	"context"
	"fmt"
	"math"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/rules"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Lookahead is the Hl ranker: each child is scored by a shallow alpha-beta search that uses the H0
// heuristic at its leaves.
//
// The lookahead of a child explores depth-1 more plies below it (the child itself is the first ply),
// with a full window, no cutoff and no cache. Its nodes and prunes are accounted in
// Stats.LookaheadNodes and Stats.LookaheadPrunes.
type Lookahead struct {
	rules     rules.Provider
	heuristic ai.LeafHeuristic
	k, depth  int
}

var _ Ranker = (*Lookahead)(nil)

// NewLookahead returns an Hl ranker that keeps the k best children, scored with a lookahead of
// depth plies using heuristic at the leaves. depth must be at least 1: a depth of 1 is equivalent
// to H0 with terminal outcomes scored as such.
func NewLookahead(r rules.Provider, heuristic ai.LeafHeuristic, k, depth int) (*Lookahead, error) {
	if r == nil || heuristic == nil {
		return nil, errors.New("Hl cutoff requires a rules provider and a heuristic")
	}
	if err := validateWidth(k); err != nil {
		return nil, err
	}
	if depth < 1 {
		return nil, errors.Errorf("Hl cutoff lookahead depth l must be at least 1, got l=%d", depth)
	}
	return &Lookahead{rules: r, heuristic: heuristic, k: k, depth: depth}, nil
}

// Layer implements Ranker.
func (r *Lookahead) Layer() searchers.Layer { return searchers.LayerHl }

// Width implements Ranker.
func (r *Lookahead) Width() int { return r.k }

// LookaheadDepth is the number of plies, counting the child, explored to score each child.
func (r *Lookahead) LookaheadDepth() int { return r.depth }

// Rank implements Ranker.
func (r *Lookahead) Rank(ctx context.Context, children []*State, maximizing bool, stats *searchers.Stats) ([]*State, error) {
	scores := make([]float64, len(children))
	for ii, child := range children {
		score, err := r.alphaBeta(ctx, child, r.depth-1, math.Inf(-1), math.Inf(1), !maximizing, stats)
		if err != nil {
			return nil, err
		}
		scores[ii] = score
	}
	return topK(searchers.LayerHl, r.k, children, scores, maximizing, stats), nil
}

// alphaBeta is a plain fail-soft alpha-beta, without cutoffs or cache.
func (r *Lookahead) alphaBeta(ctx context.Context, s *State, depth int, alpha, beta float64, maximizing bool,
	stats *searchers.Stats) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	stats.LookaheadNodes++
	if depth == 0 || r.rules.IsTerminal(s) {
		return ai.TerminalOrLeafScore(r.rules, r.heuristic, s), nil
	}
	children := r.rules.Neighbors(s)
	if len(children) == 0 {
		return ai.TerminalOrLeafScore(r.rules, r.heuristic, s), nil
	}

	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for ii, child := range children {
		value, err := r.alphaBeta(ctx, child, depth-1, alpha, beta, !maximizing, stats)
		if err != nil {
			return 0, err
		}
		if maximizing {
			best = max(best, value)
			alpha = max(alpha, best)
		} else {
			best = min(best, value)
			beta = min(beta, best)
		}
		if alpha >= beta {
			stats.LookaheadPrunes += len(children) - ii - 1
			break
		}
	}
	return best, nil
}

func (r *Lookahead) String() string {
	return fmt.Sprintf("Hl(%s, k=%d, l=%d)", r.heuristic, r.k, r.depth)
}
