// Package minimax implements the plain minimax searcher: every reachable node up to the maximum
// depth is evaluated, without pruning. It is the reference the alpha-beta searcher is tested
// against, and a baseline for the comparisons of cmd/abmatch.
package minimax

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/rules"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Searcher implements searchers.Searcher with plain minimax.
type Searcher struct {
	rules    rules.Provider
	leaf     ai.LeafHeuristic
	maxDepth int
	stats    searchers.Stats
}

var _ searchers.Searcher = (*Searcher)(nil)

// DefaultMaxDepth for search, in plies.
const DefaultMaxDepth = 2

// New returns a minimax searcher that bottoms out at maxDepth plies with the leaf heuristic.
func New(r rules.Provider, leaf ai.LeafHeuristic, maxDepth int) (*Searcher, error) {
	if r == nil || leaf == nil {
		return nil, errors.New("minimax requires a rules provider and a leaf heuristic")
	}
	if maxDepth < 1 {
		return nil, errors.Errorf("minimax max_depth must be at least 1, got %d", maxDepth)
	}
	return &Searcher{rules: r, leaf: leaf, maxDepth: maxDepth}, nil
}

// MaxDepth of the search, in plies.
func (m *Searcher) MaxDepth() int { return m.maxDepth }

// Stats implements searchers.Searcher.
func (m *Searcher) Stats() searchers.Stats { return m.stats }

func (m *Searcher) String() string {
	return fmt.Sprintf("minimax(max_depth=%d, leaf=%s)", m.maxDepth, m.leaf)
}

// Evaluate returns the minimax value of s searched depth plies deep. Every node visited counts as
// one evaluation.
func (m *Searcher) Evaluate(ctx context.Context, s *State, depth int, maximizing bool) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	m.stats.Evals++
	if depth == 0 || m.rules.IsTerminal(s) {
		return ai.TerminalOrLeafScore(m.rules, m.leaf, s), nil
	}
	children := m.rules.Neighbors(s)
	if len(children) == 0 {
		// No moves: terminal by exhaustion.
		return ai.TerminalOrLeafScore(m.rules, m.leaf, s), nil
	}
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, child := range children {
		value, err := m.Evaluate(ctx, child, depth-1, !maximizing)
		if err != nil {
			return 0, err
		}
		if maximizing {
			best = max(best, value)
		} else {
			best = min(best, value)
		}
	}
	return best, nil
}

// Search implements searchers.Searcher.
//
// Root children where a draw can be claimed are scored 0 without being searched.
func (m *Searcher) Search(ctx context.Context, root *State) (next *State, score float64, err error) {
	start := time.Now()
	startStats := m.stats
	children := m.rules.Neighbors(root)
	if len(children) == 0 {
		return nil, 0, errors.WithMessagef(searchers.ErrNoLegalMove, "minimax search from %s", root)
	}
	maximizing := m.rules.TurnOf(root).IsMaximizing()
	scores := make([]float64, len(children))
	for ii, child := range children {
		if m.rules.IsClaimableDraw(child) {
			scores[ii] = ai.DrawScore
			m.stats.DrawShortCircuits++
			continue
		}
		scores[ii], err = m.Evaluate(ctx, child, m.maxDepth-1, !maximizing)
		if err != nil {
			return nil, 0, err
		}
	}
	bestIdx := searchers.Pick(scores, maximizing)
	m.stats.Searches++
	if klog.V(2).Enabled() {
		klog.Infof("%s: %s (score=%s) in %s: %s", m, children[bestIdx].Move(), ai.FormatScore(scores[bestIdx]),
			time.Since(start), m.stats.Sub(startStats))
	}
	return children[bestIdx], scores[bestIdx], nil
}
