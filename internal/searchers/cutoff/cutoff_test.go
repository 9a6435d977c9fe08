package cutoff

import (
	"context"
	"testing"

	"github.com/janpfeifer/gametree/internal/ai/linear"
	"github.com/janpfeifer/gametree/internal/generics"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/janpfeifer/gametree/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(states []*State) []string {
	return generics.SliceMap(states, func(s *State) string { return statetest.NodeOf(s).Name })
}

func flatTree() *statetest.Tree {
	return statetest.NewTree(statetest.Branch("r", 0,
		statetest.Leaf("c0", 3),
		statetest.Leaf("c1", 1),
		statetest.Leaf("c2", 4),
		statetest.Leaf("c3", 1),
		statetest.Leaf("c4", 5),
	), SideFirst)
}

func TestStatic(t *testing.T) {
	_, err := NewStatic(flatTree(), 0)
	require.Error(t, err)
	_, err = NewStatic(nil, 1)
	require.Error(t, err)

	tree := flatTree()
	children := tree.Neighbors(tree.Root())
	ctx := context.Background()

	r, err := NewStatic(tree, 3)
	require.NoError(t, err)
	assert.Equal(t, searchers.LayerH0, r.Layer())
	assert.Equal(t, 3, r.Width())
	var stats searchers.Stats
	top, err := r.Rank(ctx, children, true, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"c4", "c2", "c0"}, names(top))
	assert.Equal(t, searchers.LayerStats{Evals: 5, Prunes: 2}, stats.Layers[searchers.LayerH0])

	// Ties keep the enumeration order.
	top, err = r.Rank(ctx, children, false, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3", "c0"}, names(top))
	assert.Equal(t, searchers.LayerStats{Evals: 10, Prunes: 4}, stats.Layers[searchers.LayerH0])

	// Wider than the number of children: only re-ordering.
	wide, err := NewStatic(tree, 10)
	require.NoError(t, err)
	stats = searchers.Stats{}
	top, err = wide.Rank(ctx, children, true, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"c4", "c2", "c0", "c1", "c3"}, names(top))
	assert.Equal(t, searchers.LayerStats{Evals: 5, Prunes: 0}, stats.Layers[searchers.LayerH0])
	assert.Equal(t, 0, stats.Evals, "cutoff evaluations are not node evaluations")

	// Cancelled.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Rank(cancelled, children, true, &stats)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLookahead(t *testing.T) {
	// Statically "a" looks much better, but one ply deeper "b" is better for the maximizer.
	tree := statetest.NewTree(statetest.Branch("r", 0,
		statetest.Branch("a", 100, statetest.Leaf("a0", 10), statetest.Leaf("a1", -5)),
		statetest.Branch("b", 0, statetest.Leaf("b0", 2), statetest.Leaf("b1", 3)),
		statetest.Win("c", SideSecond),
	), SideFirst)
	children := tree.Neighbors(tree.Root())
	ctx := context.Background()

	_, err := NewLookahead(tree, tree, 1, 0)
	require.Error(t, err)
	_, err = NewLookahead(tree, tree, 0, 2)
	require.Error(t, err)
	_, err = NewLookahead(nil, tree, 1, 2)
	require.Error(t, err)

	h0, err := NewStatic(tree, 1)
	require.NoError(t, err)
	var stats searchers.Stats
	top, err := h0.Rank(ctx, children, true, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(top))

	hl, err := NewLookahead(tree, tree, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, searchers.LayerHl, hl.Layer())
	assert.Equal(t, 2, hl.LookaheadDepth())
	stats = searchers.Stats{}
	top, err = hl.Rank(ctx, children, true, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(top), "b=min(2,3), a=min(10,-5), c is a loss")
	assert.Equal(t, searchers.LayerStats{Evals: 3, Prunes: 1}, stats.Layers[searchers.LayerHl])
	assert.Equal(t, 7, stats.LookaheadNodes)
	assert.Equal(t, 0, stats.LookaheadPrunes)

	// With l=1 it's a static ranking, but outcomes are scored: the lost "c" goes last for the maximizer,
	// first for the minimizer.
	hl1, err := NewLookahead(tree, tree, 3, 1)
	require.NoError(t, err)
	stats = searchers.Stats{}
	top, err = hl1.Rank(ctx, children, true, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(top))
	assert.Equal(t, 3, stats.LookaheadNodes)
	top, err = hl1.Rank(ctx, children, false, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names(top))
}

func TestLookaheadPrunes(t *testing.T) {
	tree := statetest.NewTree(statetest.Branch("r", 0,
		statetest.Branch("a", 0,
			statetest.Branch("a0", 0, statetest.Leaf("x", 1), statetest.Leaf("y", 2)),
			statetest.Branch("a1", 0, statetest.Leaf("w", 9), statetest.Leaf("z", 0)),
		),
	), SideFirst)
	hl, err := NewLookahead(tree, tree, 1, 3)
	require.NoError(t, err)
	var stats searchers.Stats
	_, err = hl.Rank(context.Background(), tree.Neighbors(tree.Root()), true, &stats)
	require.NoError(t, err)
	// a0 = max(1, 2) = 2 sets beta=2 for a1, and w=9 refutes a1: z is pruned.
	assert.Equal(t, 6, stats.LookaheadNodes)
	assert.Equal(t, 1, stats.LookaheadPrunes)
	assert.Equal(t, 0, tree.ScoreCalls["z"])
}

// valueExtractor uses the node value as the only feature.
type valueExtractor struct{}

func (valueExtractor) NumFeatures() int { return 1 }
func (valueExtractor) Extract(s *State) []float32 {
	return []float32{float32(statetest.NodeOf(s).Value)}
}

func TestRegression(t *testing.T) {
	tree := flatTree()
	children := tree.Neighbors(tree.Root())

	_, err := NewRegression(valueExtractor{}, linear.NewWithWeights(1, 1, 0), 2)
	require.ErrorContains(t, err, "takes 2 features")
	_, err = NewRegression(valueExtractor{}, linear.NewWithWeights(1, 0), -1)
	require.Error(t, err)

	// The model negates the value: the ranking is reversed.
	r, err := NewRegression(valueExtractor{}, linear.NewWithWeights(-1, 0.5), 2)
	require.NoError(t, err)
	assert.Equal(t, searchers.LayerHr, r.Layer())
	var stats searchers.Stats
	top, err := r.Rank(context.Background(), children, true, &stats)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3"}, names(top))
	assert.Equal(t, searchers.LayerStats{Evals: 5, Prunes: 3}, stats.Layers[searchers.LayerHr])
	assert.Equal(t, 0, tree.TotalScoreCalls(), "Hr doesn't use the leaf heuristic")
	assert.Contains(t, r.String(), "k=2")
}
