// Package alphabeta implements the minimax search with alpha-beta pruning, optionally narrowing
// the children of each node with a cutoff ranker (see package cutoff) and memoizing node values in
// a transposition cache (see package tt).
//
// See: wikipedia.org/wiki/Alpha-beta_pruning
package alphabeta

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/rules"
	"github.com/janpfeifer/gametree/internal/searchers"
	"github.com/janpfeifer/gametree/internal/searchers/cutoff"
	"github.com/janpfeifer/gametree/internal/searchers/tt"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultMaxDepth for search, in plies.
const DefaultMaxDepth = 3

// Config of the alpha-beta Searcher.
type Config struct {
	// MaxDepth of the search in plies. Each player playing counts as one ply, see
	// https://en.wikipedia.org/wiki/Ply_(game_theory). It must be at least 1.
	MaxDepth int

	// RootCutoff narrows the children of the root before they are searched. Optional.
	RootCutoff cutoff.Ranker

	// InnerCutoff narrows the children of every internal node below the root. Optional.
	InnerCutoff cutoff.Ranker

	// Cache mode of the transposition cache. The cache only lives during one call to Search.
	Cache tt.Mode

	// ExactRootScores searches each root child with a full window, and never prunes at the root.
	// Scores reported by RootScores are then exact, at the cost of more evaluations.
	// Otherwise the window is carried from one root child to the next.
	ExactRootScores bool
}

// DefaultConfig returns a Config with DefaultMaxDepth, no cutoffs and the window-aware cache.
func DefaultConfig() Config {
	return Config{MaxDepth: DefaultMaxDepth, Cache: tt.WindowAware}
}

// lookaheadRanker is implemented by rankers that search below the node being ranked.
type lookaheadRanker interface {
	LookaheadDepth() int
}

// Validate returns all the problems with the configuration at once, or nil if it is valid.
func (c Config) Validate() error {
	var err error
	if c.MaxDepth < 1 {
		err = multierror.Append(err, errors.Errorf("max_depth must be at least 1, got %d", c.MaxDepth))
	}
	for _, ranker := range []struct {
		name string
		r    cutoff.Ranker
	}{{"root cutoff", c.RootCutoff}, {"inner cutoff", c.InnerCutoff}} {
		if ranker.r == nil {
			continue
		}
		if ranker.r.Width() <= 0 {
			err = multierror.Append(err, errors.Errorf("%s %s: width k must be positive, got %d",
				ranker.name, ranker.r, ranker.r.Width()))
		}
		if la, ok := ranker.r.(lookaheadRanker); ok && la.LookaheadDepth() >= c.MaxDepth {
			err = multierror.Append(err, errors.Errorf("%s %s: lookahead depth l=%d must be smaller than max_depth=%d",
				ranker.name, ranker.r, la.LookaheadDepth(), c.MaxDepth))
		}
	}
	if c.Cache > tt.Unconditional {
		err = multierror.Append(err, errors.Errorf("invalid cache mode %s", c.Cache))
	}
	return err
}

// RootScore is the score of one of the root children in the last search.
type RootScore struct {
	Child *State
	Score float64

	// ClaimableDraw is set if the child was scored 0 because a draw could be claimed, without searching it.
	ClaimableDraw bool
}

// Searcher implements searchers.Searcher with alpha-beta pruning.
//
// It is not safe for concurrent use.
type Searcher struct {
	rules  rules.Provider
	leaf   ai.LeafHeuristic
	config Config
	cache  *tt.Cache
	stats  searchers.Stats

	rootScores []RootScore
}

// Assert that Searcher implements searchers.Searcher.
var _ searchers.Searcher = (*Searcher)(nil)

// New returns an alpha-beta searcher for the rules, scoring the leaves with leaf.
// The configuration is validated, and all problems found are returned together.
func New(r rules.Provider, leaf ai.LeafHeuristic, config Config) (*Searcher, error) {
	var err error
	if r == nil {
		err = multierror.Append(err, errors.New("alpha-beta requires a rules provider"))
	}
	if leaf == nil {
		err = multierror.Append(err, errors.New("alpha-beta requires a leaf heuristic"))
	}
	if configErr := config.Validate(); configErr != nil {
		err = multierror.Append(err, configErr)
	}
	if err != nil {
		return nil, errors.WithMessage(err, "invalid alpha-beta configuration")
	}
	return &Searcher{
		rules:  r,
		leaf:   leaf,
		config: config,
		cache:  tt.New(config.Cache),
	}, nil
}

// Config returns the configuration of the searcher.
func (ab *Searcher) Config() Config { return ab.config }

// Stats implements searchers.Searcher.
func (ab *Searcher) Stats() searchers.Stats { return ab.stats }

// RootScores returns the scores of the root children searched during the last call to Search, in
// search order. Children pruned at the root, or discarded by the root cutoff, are not included.
//
// Unless Config.ExactRootScores is set, only the best score is exact: the others are upper bounds
// for the maximizer (lower bounds for the minimizer).
func (ab *Searcher) RootScores() []RootScore { return ab.rootScores }

func (ab *Searcher) String() string {
	parts := []string{
		fmt.Sprintf("max_depth=%d", ab.config.MaxDepth),
		fmt.Sprintf("leaf=%s", ab.leaf),
	}
	if ab.config.RootCutoff != nil {
		parts = append(parts, fmt.Sprintf("cutoff=%s", ab.config.RootCutoff))
	}
	if ab.config.InnerCutoff != nil {
		parts = append(parts, fmt.Sprintf("inner_cutoff=%s", ab.config.InnerCutoff))
	}
	parts = append(parts, fmt.Sprintf("cache=%s", ab.config.Cache))
	if ab.config.ExactRootScores {
		parts = append(parts, "exact_root")
	}
	return fmt.Sprintf("ab(%s)", strings.Join(parts, ", "))
}

// Search implements searchers.Searcher.
//
// The children of root are narrowed by the root cutoff, if configured, and each is searched
// MaxDepth-1 plies deeper with the opponent to play. Children where a draw can be claimed are scored
// 0 without being searched. Ties are broken by the first child in search order.
func (ab *Searcher) Search(ctx context.Context, root *State) (next *State, score float64, err error) {
	start := time.Now()
	startStats := ab.stats
	ab.rootScores = nil
	ab.cache.Reset()
	defer ab.cache.Reset()

	children := ab.rules.Neighbors(root)
	if len(children) == 0 {
		return nil, 0, errors.WithMessagef(searchers.ErrNoLegalMove, "alpha-beta search from %s", root)
	}
	maximizing := ab.rules.TurnOf(root).IsMaximizing()
	if ab.config.RootCutoff != nil {
		children, err = ab.config.RootCutoff.Rank(ctx, children, maximizing, &ab.stats)
		if err != nil {
			return nil, 0, err
		}
	}

	alpha, beta := math.Inf(-1), math.Inf(1)
	scores := make([]float64, 0, len(children))
	for ii, child := range children {
		var value float64
		claimable := ab.rules.IsClaimableDraw(child)
		if claimable {
			value = ai.DrawScore
			ab.stats.DrawShortCircuits++
		} else {
			childAlpha, childBeta := alpha, beta
			if ab.config.ExactRootScores {
				childAlpha, childBeta = math.Inf(-1), math.Inf(1)
			}
			value, err = ab.value(ctx, child, ab.config.MaxDepth-1, childAlpha, childBeta, !maximizing)
			if err != nil {
				return nil, 0, err
			}
		}
		scores = append(scores, value)
		ab.rootScores = append(ab.rootScores, RootScore{Child: child, Score: value, ClaimableDraw: claimable})
		if maximizing {
			alpha = max(alpha, value)
		} else {
			beta = min(beta, value)
		}
		if !ab.config.ExactRootScores && alpha >= beta {
			// Only happens with a decisive score: no other child can do better.
			ab.stats.Prunes += len(children) - ii - 1
			break
		}
	}

	bestIdx := searchers.Pick(scores, maximizing)
	next, score = children[bestIdx], scores[bestIdx]
	ab.stats.Searches++
	ab.logSearch(next, score, time.Since(start), ab.stats.Sub(startStats))
	return next, score, nil
}

func (ab *Searcher) logSearch(next *State, score float64, elapsed time.Duration, stats searchers.Stats) {
	if klog.V(3).Enabled() {
		for _, rs := range ab.rootScores {
			note := ""
			if rs.ClaimableDraw {
				note = " (claimable draw)"
			}
			klog.Infof("  %s: %s%s", rs.Child.Move(), ai.FormatScore(rs.Score), note)
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("%s: best move %s (score=%s) in %s", ab, next.Move(), ai.FormatScore(score), elapsed)
		klog.Infof("  Counts: %s", stats)
		if seconds := elapsed.Seconds(); seconds > 0 {
			klog.Infof("  evals/s=%.1f", float64(stats.Evals)/seconds)
		}
	}
}

// Evaluate returns the alpha-beta value of s searched depth plies deep, with the window (alpha, beta).
// The inner cutoff, if configured, is used at every internal node, including s.
//
// The transposition cache lives only during the call. With the full window (-∞, +∞), no cutoff and
// the window-aware cache (or no cache), the value is the same as plain minimax.
func (ab *Searcher) Evaluate(ctx context.Context, s *State, depth int, alpha, beta float64, maximizing bool) (float64, error) {
	ab.cache.Reset()
	defer ab.cache.Reset()
	return ab.value(ctx, s, depth, alpha, beta, maximizing)
}

// value implements the fail-soft alpha-beta recursion: if the returned value is <= alpha it is an
// upper bound of the true value, if >= beta a lower bound, and otherwise it is exact.
func (ab *Searcher) value(ctx context.Context, s *State, depth int, alpha, beta float64, maximizing bool) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	key := tt.KeyFor(s, depth, SideFor(maximizing))
	if value, found := ab.cache.Get(key, alpha, beta); found {
		ab.stats.CacheHits++
		return value, nil
	}
	ab.stats.Evals++
	if depth == 0 || ab.rules.IsTerminal(s) {
		return ai.TerminalOrLeafScore(ab.rules, ab.leaf, s), nil
	}
	children := ab.rules.Neighbors(s)
	if len(children) == 0 {
		// No moves: terminal by exhaustion.
		return ai.TerminalOrLeafScore(ab.rules, ab.leaf, s), nil
	}
	if ab.config.InnerCutoff != nil {
		var err error
		children, err = ab.config.InnerCutoff.Rank(ctx, children, maximizing, &ab.stats)
		if err != nil {
			return 0, err
		}
	}

	alphaOrig, betaOrig := alpha, beta
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for ii, child := range children {
		value, err := ab.value(ctx, child, depth-1, alpha, beta, !maximizing)
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
			ab.stats.Prunes += len(children) - ii - 1
			break
		}
	}
	if ab.cache.Mode() != tt.Off {
		ab.cache.Put(key, best, alphaOrig, betaOrig)
		ab.stats.CacheStores++
	}
	return best, nil
}
