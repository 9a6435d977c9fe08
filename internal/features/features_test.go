package features

import (
	"testing"

	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/janpfeifer/gametree/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	value := func(s *State, _ *Spec, f []float32) {
		f[0] = float32(statetest.NodeOf(s).Value)
	}
	pair := func(s *State, _ *Spec, f []float32) {
		v := float32(statetest.NodeOf(s).Value)
		f[0], f[1] = v, -v
	}
	set := NewSet("test",
		Spec{Name: "Raw", Dim: 1, Setter: value},
		Spec{Name: "Normalized", Dim: 2, Min: -10, Max: 10, Setter: pair},
	)
	require.Equal(t, 3, set.NumFeatures())
	assert.Equal(t, "test", set.String())
	assert.Equal(t, []string{"Raw", "Normalized[0]", "Normalized[1]"}, set.Names())
	assert.Equal(t, 1, set.Specs()[1].VecIndex)

	tree := statetest.NewTree(statetest.Leaf("a", 5), SideFirst)
	f := set.Extract(tree.Root())
	assert.InDeltaSlice(t, []float32{5, 0.75, 0.25}, f, 1e-6)
	assert.Contains(t, set.PrettyPrint(f), "Normalized: [0.75 0.25]")
	assert.Panics(t, func() { set.PrettyPrint(f[:2]) })
	assert.Panics(t, func() { NewSet("bad", Spec{Name: "Zero"}) })
}
