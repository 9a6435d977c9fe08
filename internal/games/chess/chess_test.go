package chess

import (
	"testing"

	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/rules"
	"github.com/janpfeifer/gametree/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// play the move given in UCI notation (e.g. "g1f3") from s.
func play(t *testing.T, s *state.State, uci string) *state.State {
	t.Helper()
	for _, child := range (Rules{}).Neighbors(s) {
		if child.Move().String() == uci {
			return child
		}
	}
	require.Failf(t, "illegal move", "move %q not found in %s", uci, s)
	return nil
}

func mustFEN(t *testing.T, fen string) *state.State {
	t.Helper()
	s, err := FromFEN(fen)
	require.NoError(t, err)
	return s
}

func TestStartingPosition(t *testing.T) {
	g, err := games.Get("chess")
	require.NoError(t, err)
	r := g.Rules()
	root := g.NewMatch()
	assert.Equal(t, StartingFEN, root.String())
	assert.Equal(t, state.Key("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"), root.Key())
	assert.Equal(t, state.SideFirst, r.TurnOf(root))
	assert.False(t, r.IsTerminal(root))
	assert.False(t, r.IsClaimableDraw(root))
	_, ok := r.Outcome(root)
	assert.False(t, ok)

	children := r.Neighbors(root)
	assert.Len(t, children, 20)
	for _, child := range children {
		assert.Equal(t, state.SideSecond, r.TurnOf(child))
		assert.Same(t, root, child.Parent())
	}

	_, err = g.FromString("not a fen")
	require.Error(t, err)
}

func TestTerminalPositions(t *testing.T) {
	r := Rules{}

	// Fool's mate: White is checkmated.
	mated := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	assert.True(t, r.IsTerminal(mated))
	assert.Empty(t, r.Neighbors(mated))
	outcome, ok := r.Outcome(mated)
	require.True(t, ok)
	assert.Equal(t, rules.WinFor(state.SideSecond), outcome)

	stalemate := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.True(t, r.IsTerminal(stalemate))
	outcome, ok = r.Outcome(stalemate)
	require.True(t, ok)
	assert.Equal(t, rules.DrawOutcome, outcome)

	kings := mustFEN(t, "8/8/8/4k3/8/8/8/4K3 w - - 0 1")
	assert.True(t, r.IsTerminal(kings))
	outcome, ok = r.Outcome(kings)
	require.True(t, ok)
	assert.True(t, outcome.Draw)

	knight := mustFEN(t, "8/8/8/4k3/8/8/8/4KN2 w - - 0 1")
	assert.True(t, r.IsTerminal(knight))
	sameColorBishops := mustFEN(t, "8/8/8/4k3/8/4b3/8/2B1K3 w - - 0 1")
	assert.True(t, r.IsTerminal(sameColorBishops))
	oppositeColorBishops := mustFEN(t, "8/8/8/4k3/8/3b4/8/2B1K3 w - - 0 1")
	assert.False(t, r.IsTerminal(oppositeColorBishops))
	rook := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	assert.False(t, r.IsTerminal(rook))
}

func TestDrawRules(t *testing.T) {
	r := Rules{}
	fifty := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 100 80")
	assert.True(t, r.IsClaimableDraw(fifty))
	assert.False(t, r.IsTerminal(fifty))
	assert.Equal(t, 100, PositionOf(fifty).HalfMoveClock())

	seventyFive := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 150 105")
	assert.True(t, r.IsTerminal(seventyFive))
	outcome, ok := r.Outcome(seventyFive)
	require.True(t, ok)
	assert.True(t, outcome.Draw)

	// Knights dance back and forth, repeating the starting position.
	s := Game{}.NewMatch()
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for _, uci := range cycle {
		s = play(t, s, uci)
	}
	assert.Equal(t, 1, s.CountRepeats())
	assert.False(t, r.IsClaimableDraw(s))
	for _, uci := range cycle {
		s = play(t, s, uci)
	}
	assert.Equal(t, 2, s.CountRepeats())
	assert.True(t, r.IsClaimableDraw(s))
	assert.False(t, r.IsTerminal(s))
	for range 2 {
		for _, uci := range cycle {
			s = play(t, s, uci)
		}
	}
	assert.Equal(t, 4, s.CountRepeats())
	assert.True(t, r.IsTerminal(s))
	assert.Empty(t, r.Neighbors(s))
}

func TestHeuristics(t *testing.T) {
	g := Game{}
	root := g.NewMatch()
	for _, name := range []string{"material", "mobility", "center", "king_safety", "pawns", "positions", "soft"} {
		h, err := g.Heuristic(name)
		require.NoError(t, err, name)
		assert.InDelta(t, 0.0, h.Score(root), 1e-9, "starting position is symmetric for %s", name)
	}
	_, err := g.Heuristic("unknown")
	require.Error(t, err)

	material, _ := g.Heuristic("material")
	rook := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	assert.Equal(t, 5.0, material.Score(rook))
	blackQueen := mustFEN(t, "3qk3/8/8/8/8/8/8/4K3 b - - 0 1")
	assert.Equal(t, -9.0, material.Score(blackQueen), "scores are from White's point of view")

	soft, _ := g.Heuristic(g.DefaultHeuristic())
	assert.Greater(t, soft.Score(rook), 0.0)
	assert.Less(t, soft.Score(blackQueen), 0.0)

	// e4 opens lines and takes the center.
	e4 := play(t, root, "e2e4")
	center, _ := g.Heuristic("center")
	assert.Greater(t, center.Score(e4), 0.0)
	mobility, _ := g.Heuristic("mobility")
	assert.Greater(t, mobility.Score(e4), 0.0)
}

func TestFeatures(t *testing.T) {
	g := Game{}
	extractor := g.Features()
	require.Equal(t, 20, extractor.NumFeatures())
	require.Equal(t, 20, g.DefaultModel().NumFeatures())

	f := extractor.Extract(g.NewMatch())
	require.Len(t, f, 20)
	assert.InDelta(t, 39.0/48.0, f[0], 1e-6)
	assert.InDelta(t, 39.0/48.0, f[1], 1e-6)
	for ii := 0; ii < 20; ii += 2 {
		assert.InDelta(t, f[ii], f[ii+1], 1e-6, "feature %d should be symmetric", ii/2)
	}
	// King shield: f2, e2 and d2 pawns are in front of the king.
	assert.InDelta(t, 3.0/4.0, f[8], 1e-6)
	// No pawn or piece has moved.
	assert.Equal(t, float32(0), f[12])
	assert.Equal(t, float32(0), f[18])

	e4 := play(t, g.NewMatch(), "e2e4")
	f = extractor.Extract(e4)
	assert.InDelta(t, 1.0/9.0, f[12], 1e-6, "one white pawn moved")
	assert.Equal(t, float32(0), f[13])
	assert.InDelta(t, 2.0/4.0, f[8], 1e-6, "e2 pawn left the king shield")
}
