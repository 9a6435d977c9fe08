package alphabeta

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/janpfeifer/gametree/internal/ai/mlp"
	"github.com/janpfeifer/gametree/internal/games/chess"
	"github.com/janpfeifer/gametree/internal/games/tictactoe"
	"github.com/janpfeifer/gametree/internal/parameters"
	"github.com/janpfeifer/gametree/internal/searchers"
	"github.com/janpfeifer/gametree/internal/searchers/cutoff"
	"github.com/janpfeifer/gametree/internal/searchers/minimax"
	"github.com/janpfeifer/gametree/internal/searchers/tt"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/janpfeifer/gametree/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameOf(s *State) string { return statetest.NodeOf(s).Name }

func newSearcher(t *testing.T, tree *statetest.Tree, config Config) *Searcher {
	t.Helper()
	ab, err := New(tree, tree, config)
	require.NoError(t, err)
	return ab
}

func withDepth(maxDepth int, mode tt.Mode) Config {
	config := DefaultConfig()
	config.MaxDepth = maxDepth
	config.Cache = mode
	return config
}

var soundnessTrees = statetest.RandomTreeConfig{
	Depth:             5,
	MinBranching:      1,
	MaxBranching:      4,
	MaxValue:          10,
	TerminalRate:      0.1,
	TranspositionRate: 0.25,
	DrawRate:          0.1,
}

func TestSoundness(t *testing.T) {
	ctx := context.Background()
	var totalCacheHits int
	for seed := range 60 {
		root := statetest.RandomTree(rand.New(rand.NewPCG(uint64(seed), 17)), soundnessTrees)
		tree := statetest.NewTree(root, SideFirst)
		for depth := 1; depth <= soundnessTrees.Depth; depth++ {
			mm, err := minimax.New(tree, tree, depth)
			require.NoError(t, err)
			want, err := mm.Evaluate(ctx, tree.Root(), depth, true)
			require.NoError(t, err)
			for _, mode := range []tt.Mode{tt.Off, tt.WindowAware} {
				ab := newSearcher(t, tree, withDepth(depth, mode))
				got, err := ab.Evaluate(ctx, tree.Root(), depth, math.Inf(-1), math.Inf(1), true)
				require.NoError(t, err)
				require.Equalf(t, want, got, "seed=%d, depth=%d, cache=%s:\n%s", seed, depth, mode, statetest.Describe(root))
				assert.LessOrEqual(t, ab.Stats().Evals, mm.Stats().Evals)
				totalCacheHits += ab.Stats().CacheHits
			}

			// Search picks the same child as minimax, with the same score.
			if len(root.Children) == 0 {
				continue
			}
			wantNext, wantScore, err := mm.Search(ctx, tree.Root())
			require.NoError(t, err)
			for _, mode := range []tt.Mode{tt.Off, tt.WindowAware} {
				ab := newSearcher(t, tree, withDepth(depth, mode))
				next, score, err := ab.Search(ctx, tree.Root())
				require.NoError(t, err)
				require.Equalf(t, nameOf(wantNext), nameOf(next), "seed=%d, depth=%d, cache=%s", seed, depth, mode)
				require.Equal(t, wantScore, score)
			}
		}
	}
	assert.Greater(t, totalCacheHits, 0, "window-aware cache never hit")
}

func TestExactRootScores(t *testing.T) {
	ctx := context.Background()
	for seed := range 20 {
		root := statetest.RandomTree(rand.New(rand.NewPCG(uint64(seed), 3)), soundnessTrees)
		if len(root.Children) == 0 {
			continue
		}
		tree := statetest.NewTree(root, SideSecond)
		config := withDepth(4, tt.WindowAware)
		config.ExactRootScores = true
		ab := newSearcher(t, tree, config)
		_, _, err := ab.Search(ctx, tree.Root())
		require.NoError(t, err)
		mm, err := minimax.New(tree, tree, 4)
		require.NoError(t, err)
		require.Len(t, ab.RootScores(), len(root.Children))
		for _, rs := range ab.RootScores() {
			if rs.ClaimableDraw {
				assert.Equal(t, 0.0, rs.Score)
				continue
			}
			want, err := mm.Evaluate(ctx, rs.Child, 3, true)
			require.NoError(t, err)
			assert.Equalf(t, want, rs.Score, "seed=%d, child=%s", seed, nameOf(rs.Child))
		}
	}
}

func TestTicTacToeSoundness(t *testing.T) {
	game := tictactoe.Game{}
	ctx := context.Background()
	for _, position := range []string{"X../.O./...", ".X./.../..O", "XO./.X./..O", ".../.X./..."} {
		root, err := game.FromString(position)
		require.NoError(t, err)
		leaf, err := game.Heuristic("lines")
		require.NoError(t, err)
		maximizing := game.Rules().TurnOf(root).IsMaximizing()
		for _, depth := range []int{1, 2, 3, 6} {
			mm, err := minimax.New(game.Rules(), leaf, depth)
			require.NoError(t, err)
			want, err := mm.Evaluate(ctx, root, depth, maximizing)
			require.NoError(t, err)
			wantNext, _, err := mm.Search(ctx, root)
			require.NoError(t, err)

			ab, err := New(game.Rules(), leaf, withDepth(depth, tt.WindowAware))
			require.NoError(t, err)
			got, err := ab.Evaluate(ctx, root, depth, math.Inf(-1), math.Inf(1), maximizing)
			require.NoError(t, err)
			assert.Equalf(t, want, got, "position=%s, depth=%d", position, depth)
			next, _, err := ab.Search(ctx, root)
			require.NoError(t, err)
			assert.Equalf(t, wantNext.Key(), next.Key(), "position=%s, depth=%d", position, depth)
		}
	}
}

func TestDeterminism(t *testing.T) {
	root := statetest.RandomTree(rand.New(rand.NewPCG(42, 42)), soundnessTrees)
	tree := statetest.NewTree(root, SideFirst)
	h0 := tree.Heuristic("neg", func(n *statetest.Node) float64 { return -n.Value })
	newAB := func() *Searcher {
		r, err := cutoff.NewStatic(h0, 2)
		require.NoError(t, err)
		config := withDepth(4, tt.WindowAware)
		config.RootCutoff, config.InnerCutoff = r, r
		return newSearcher(t, tree, config)
	}
	ab1, ab2 := newAB(), newAB()
	next1, score1, err := ab1.Search(context.Background(), tree.Root())
	require.NoError(t, err)
	next2, score2, err := ab2.Search(context.Background(), tree.Root())
	require.NoError(t, err)
	assert.Equal(t, nameOf(next1), nameOf(next2))
	assert.Equal(t, score1, score2)
	assert.Equal(t, ab1.Stats(), ab2.Stats())

	// A second search with the same searcher repeats the same work: the cache doesn't survive searches.
	before := ab1.Stats()
	next3, _, err := ab1.Search(context.Background(), tree.Root())
	require.NoError(t, err)
	assert.Equal(t, nameOf(next1), nameOf(next3))
	assert.Equal(t, before, ab1.Stats().Sub(before))
}

func TestCutoffMonotonicity(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct{ depth, k int }{{2, 2}, {3, 1}} {
		for seed := range 10 {
			root := statetest.RandomTree(rand.New(rand.NewPCG(uint64(seed), 7)), statetest.RandomTreeConfig{
				Depth:        tc.depth,
				MinBranching: 4,
				MaxBranching: 4,
				MaxValue:     100,
			})
			tree := statetest.NewTree(root, SideFirst)
			full := newSearcher(t, tree, withDepth(tc.depth, tt.Off))
			_, _, err := full.Search(ctx, tree.Root())
			require.NoError(t, err)

			r, err := cutoff.NewStatic(tree, tc.k)
			require.NoError(t, err)
			config := withDepth(tc.depth, tt.Off)
			config.RootCutoff, config.InnerCutoff = r, r
			narrow := newSearcher(t, tree, config)
			_, _, err = narrow.Search(ctx, tree.Root())
			require.NoError(t, err)

			stats := narrow.Stats()
			assert.Lessf(t, stats.Evals, full.Stats().Evals, "depth=%d, k=%d, seed=%d", tc.depth, tc.k, seed)
			h0 := stats.Layers[searchers.LayerH0]
			assert.Greater(t, h0.Evals, 0)
			assert.Greater(t, h0.Prunes, 0)
			assert.LessOrEqual(t, stats.Evals, h0.Evals-h0.Prunes, "only children kept by the cutoff are evaluated")
		}
	}
}

// transposedTree has a node "S" reached from both "A" and "B": when searched from A it is cut short
// (a lower bound 6), but its true value is 100.
func transposedTree() *statetest.Tree {
	s := statetest.Branch("S", 0, statetest.Leaf("s0", 6), statetest.Leaf("s1", 100))
	return statetest.NewTree(statetest.Branch("r", 0,
		statetest.Branch("A", 0, statetest.Branch("P", 0, statetest.Leaf("p0", 5)), s),
		statetest.Branch("B", 0, s, statetest.Leaf("Q", 200)),
	), SideFirst)
}

func TestCacheModes(t *testing.T) {
	ctx := context.Background()
	results := make(map[tt.Mode]float64)
	for _, mode := range []tt.Mode{tt.Off, tt.WindowAware, tt.Unconditional} {
		tree := transposedTree()
		ab := newSearcher(t, tree, withDepth(3, mode))
		next, score, err := ab.Search(ctx, tree.Root())
		require.NoError(t, err)
		assert.Equal(t, "B", nameOf(next), "cache=%s", mode)
		results[mode] = score
		stats := ab.Stats()
		switch mode {
		case tt.Off:
			assert.Equal(t, 0, stats.CacheStores)
			assert.Equal(t, 0, stats.CacheHits)
		case tt.WindowAware:
			assert.Equal(t, 0, stats.CacheHits, "the lower bound of S is not conclusive for B's window")
			assert.Greater(t, stats.CacheStores, 0)
		case tt.Unconditional:
			assert.Equal(t, 1, stats.CacheHits)
		}
	}
	assert.Equal(t, 100.0, results[tt.Off])
	assert.Equal(t, 100.0, results[tt.WindowAware])
	// The unconditional cache reuses the bound of S as if it were exact: it is only an approximation.
	assert.Equal(t, 6.0, results[tt.Unconditional])
}

func TestUnconditionalWithoutTranspositions(t *testing.T) {
	ctx := context.Background()
	config := soundnessTrees
	config.TranspositionRate = 0
	for seed := range 20 {
		root := statetest.RandomTree(rand.New(rand.NewPCG(uint64(seed), 5)), config)
		tree := statetest.NewTree(root, SideFirst)
		exact := newSearcher(t, tree, withDepth(4, tt.Off))
		want, err := exact.Evaluate(ctx, tree.Root(), 4, math.Inf(-1), math.Inf(1), true)
		require.NoError(t, err)
		approx := newSearcher(t, tree, withDepth(4, tt.Unconditional))
		got, err := approx.Evaluate(ctx, tree.Root(), 4, math.Inf(-1), math.Inf(1), true)
		require.NoError(t, err)
		assert.Equal(t, want, got, "without transpositions there is nothing to reuse")
		assert.Equal(t, 0, approx.Stats().CacheHits)
	}
}

func TestDrawShortCircuit(t *testing.T) {
	tree := statetest.NewTree(statetest.Branch("r", 0,
		statetest.Leaf("x", -3),
		&statetest.Node{Name: "claim", Value: 50, ClaimableDraw: true,
			Children: []*statetest.Node{statetest.Leaf("c0", 99)}},
		statetest.Leaf("y", -1),
	), SideFirst)
	ab := newSearcher(t, tree, withDepth(2, tt.WindowAware))
	next, score, err := ab.Search(context.Background(), tree.Root())
	require.NoError(t, err)
	assert.Equal(t, "claim", nameOf(next))
	assert.Equal(t, 0.0, score)
	assert.Equal(t, 1, ab.Stats().DrawShortCircuits)
	assert.Zero(t, tree.ScoreCalls["claim"]+tree.ScoreCalls["c0"])
	assert.Zero(t, tree.NeighborsCalls["claim"])

	scores := ab.RootScores()
	require.Len(t, scores, 3)
	assert.True(t, scores[1].ClaimableDraw)
	assert.Equal(t, 0.0, scores[1].Score)
}

func TestScenarios(t *testing.T) {
	ctx := context.Background()

	// Depth 1 with a single legal move.
	tree := statetest.NewTree(statetest.Branch("r", 0, statetest.Leaf("only", 7)), SideFirst)
	ab := newSearcher(t, tree, withDepth(1, tt.WindowAware))
	next, score, err := ab.Search(ctx, tree.Root())
	require.NoError(t, err)
	assert.Equal(t, "only", nameOf(next))
	assert.Equal(t, 7.0, score)
	assert.Equal(t, 1, ab.Stats().Evals)

	// Depth 2 with an immediate win found first.
	tree = statetest.NewTree(statetest.Branch("r", 0,
		statetest.Win("win", SideFirst),
		statetest.Branch("b", 0, statetest.Leaf("b0", 1), statetest.Leaf("b1", 2)),
	), SideFirst)
	ab = newSearcher(t, tree, withDepth(2, tt.WindowAware))
	next, score, err = ab.Search(ctx, tree.Root())
	require.NoError(t, err)
	assert.Equal(t, "win", nameOf(next))
	assert.True(t, math.IsInf(score, 1))
	assert.GreaterOrEqual(t, ab.Stats().Prunes, 1)
	assert.Zero(t, tree.NeighborsCalls["b"], "the second child is never entered")
	assert.Zero(t, tree.TotalScoreCalls())

	// The same for the minimizer.
	tree = statetest.NewTree(statetest.Branch("r", 0,
		statetest.Win("win", SideSecond),
		statetest.Branch("b", 0, statetest.Leaf("b0", 1), statetest.Leaf("b1", 2)),
	), SideSecond)
	ab = newSearcher(t, tree, withDepth(2, tt.WindowAware))
	next, score, err = ab.Search(ctx, tree.Root())
	require.NoError(t, err)
	assert.Equal(t, "win", nameOf(next))
	assert.True(t, math.IsInf(score, -1))
	assert.Equal(t, 1, ab.Stats().Prunes)

	// No legal move.
	_, _, err = ab.Search(ctx, tree.Neighbors(tree.Root())[0])
	require.ErrorIs(t, err, searchers.ErrNoLegalMove)
	assert.Equal(t, 1, ab.Stats().Searches)
}

func TestPrunesPerSubtree(t *testing.T) {
	// Once A=3 is known, B's first child (1) refutes B: its 2 other children are pruned, as 2 subtrees.
	tree := statetest.NewTree(statetest.Branch("r", 0,
		statetest.Branch("A", 0, statetest.Leaf("a0", 3), statetest.Leaf("a1", 4)),
		statetest.Branch("B", 0,
			statetest.Leaf("b0", 1),
			statetest.Branch("b1", 0, statetest.Leaf("x", 10), statetest.Leaf("y", 11)),
			statetest.Leaf("b2", 12)),
	), SideFirst)
	ab := newSearcher(t, tree, withDepth(3, tt.Off))
	next, score, err := ab.Search(context.Background(), tree.Root())
	require.NoError(t, err)
	assert.Equal(t, "A", nameOf(next))
	assert.Equal(t, 3.0, score)
	assert.Equal(t, 2, ab.Stats().Prunes)
	assert.Equal(t, 5, ab.Stats().Evals, "A, a0, a1, B, b0")
	assert.Zero(t, tree.ScoreCalls["x"]+tree.ScoreCalls["y"]+tree.ScoreCalls["b2"])
}

func TestConfigErrors(t *testing.T) {
	tree := transposedTree()
	hl, err := cutoff.NewLookahead(tree, tree, 2, 3)
	require.NoError(t, err)
	_, err = New(tree, tree, Config{MaxDepth: 0, RootCutoff: hl})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_depth must be at least 1")
	assert.Contains(t, err.Error(), "lookahead depth l=3")

	_, err = New(nil, nil, DefaultConfig())
	require.ErrorContains(t, err, "rules provider")
	require.ErrorContains(t, err, "leaf heuristic")

	config := DefaultConfig()
	config.InnerCutoff = hl
	config.MaxDepth = 4
	_, err = New(tree, tree, config)
	require.NoError(t, err)
}

func TestCancellation(t *testing.T) {
	game := tictactoe.Game{}
	ab, err := NewFromParams(game, parameters.NewFromConfigString("max_depth=5,cutoff=hl,l=2"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = ab.Search(ctx, game.NewMatch())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ab.Stats().Searches)
}

func TestNewFromParams(t *testing.T) {
	game := tictactoe.Game{}
	params := parameters.NewFromConfigString("max_depth=4,leaf=zero,cutoff=h0,k=3,cutoff_leaf=lines,cache=off,exact_root,extra=1")
	ab, err := NewFromParams(game, params)
	require.NoError(t, err)
	assert.Equal(t, parameters.Params{"extra": "1"}, params, "known parameters are consumed")
	config := ab.Config()
	assert.Equal(t, 4, config.MaxDepth)
	assert.Equal(t, tt.Off, config.Cache)
	assert.True(t, config.ExactRootScores)
	require.NotNil(t, config.RootCutoff)
	assert.Equal(t, searchers.LayerH0, config.RootCutoff.Layer())
	assert.Equal(t, 3, config.RootCutoff.Width())
	require.NotNil(t, config.InnerCutoff, "inner cutoff defaults to the same as the root")
	assert.Equal(t, "ab(max_depth=4, leaf=zero, cutoff=H0(lines, k=3), inner_cutoff=H0(lines, k=3), cache=off, exact_root)", ab.String())

	// The Hl cutoff defaults to H0 in the inner nodes.
	ab, err = NewFromParams(game, parameters.NewFromConfigString("cutoff=hl,l=2"))
	require.NoError(t, err)
	assert.Equal(t, searchers.LayerHl, ab.Config().RootCutoff.Layer())
	assert.Equal(t, searchers.LayerH0, ab.Config().InnerCutoff.Layer())
	ab, err = NewFromParams(game, parameters.NewFromConfigString("cutoff=h0,inner_cutoff=none"))
	require.NoError(t, err)
	assert.Nil(t, ab.Config().InnerCutoff)
	ab, err = NewFromParams(game, parameters.NewFromConfigString(""))
	require.NoError(t, err)
	assert.Nil(t, ab.Config().RootCutoff)
	assert.Equal(t, DefaultConfig(), ab.Config())

	for _, bad := range []string{
		"cutoff=h0,k=0",
		"cutoff=hl,l=3,max_depth=3",
		"cutoff=hl,l=0",
		"cutoff=magic",
		"cache=sometimes",
		"max_depth=x",
		"leaf=unknown",
		"cutoff=h0,cutoff_leaf=unknown",
		"cutoff=hr,model=no-such-model",
	} {
		_, err = NewFromParams(game, parameters.NewFromConfigString(bad))
		assert.Errorf(t, err, "config %q should fail", bad)
	}
}

func TestRegressionCutoff(t *testing.T) {
	ctx := context.Background()

	// Default embedded model for chess.
	ab, err := NewFromParams(chess.Game{}, parameters.NewFromConfigString("max_depth=2,cutoff=hr,k=3"))
	require.NoError(t, err)
	next, _, err := ab.Search(ctx, chess.Game{}.NewMatch())
	require.NoError(t, err)
	require.NotNil(t, next)
	stats := ab.Stats()
	// Root: 20 moves, 17 discarded. Then each of the 3 kept moves has 20 replies, 17 discarded.
	assert.Equal(t, searchers.LayerStats{Evals: 80, Prunes: 68}, stats.Layers[searchers.LayerHr])
	assert.Len(t, ab.RootScores(), 3)

	// MLP model loaded from a YAML file.
	fileName := filepath.Join(t.TempDir(), "lines.yaml")
	require.NoError(t, mlp.Config{
		Name: "open-lines",
		Layers: []mlp.LayerConfig{
			{Weights: [][]float64{{1, -1, 0, 0, 0, 0}}, Biases: []float64{0}},
		},
	}.Save(fileName))
	game := tictactoe.Game{}
	ab, err = NewFromParams(game, parameters.NewFromConfigString(fmt.Sprintf("max_depth=3,cutoff=hr,k=2,model=%s", fileName)))
	require.NoError(t, err)
	assert.Contains(t, ab.String(), "Hr(open-lines, k=2)")
	_, _, err = ab.Search(ctx, game.NewMatch())
	require.NoError(t, err)
	assert.Len(t, ab.RootScores(), 2)
}
