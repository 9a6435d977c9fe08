package searchers

import (
	"fmt"
	"strings"
)

// Layer identifies one of the cutoff ranking layers.
type Layer uint8

const (
	// LayerH0 ranks children with one static call to a heuristic.
	LayerH0 Layer = iota

	// LayerHl ranks children with a shallow alpha-beta lookahead.
	LayerHl

	// LayerHr ranks children with a pre-trained regression model over a feature vector.
	LayerHr

	// NumLayers is the number of layers. It must always be last.
	NumLayers
)

func (l Layer) String() string {
	switch l {
	case LayerH0:
		return "H0"
	case LayerHl:
		return "Hl"
	case LayerHr:
		return "Hr"
	}
	return fmt.Sprintf("Layer(%d)", l)
}

// LayerStats counts the work of one cutoff layer.
type LayerStats struct {
	// Evals is the number of children scored by the layer.
	Evals int

	// Prunes is the number of children discarded by the layer.
	Prunes int
}

// Stats stores running stats collected during the searches: for benchmarking, monitoring and debugging purposes.
//
// Counters only increase: they are owned by one searcher, and reset only by creating a new one.
// Use Sub to get the counters of one search.
type Stats struct {
	// Searches is the number of completed calls to Search.
	Searches int

	// Evals is the number of nodes whose value was computed: leaves, terminals and internal nodes.
	// Cache hits are not included (see CacheHits).
	Evals int

	// Prunes counts the sibling subtrees skipped by alpha-beta cuts: one per skipped subtree root.
	Prunes int

	// Layers holds the counters for each cutoff layer.
	Layers [NumLayers]LayerStats

	// LookaheadNodes and LookaheadPrunes count the nodes visited and the subtrees pruned by the
	// internal alpha-beta of the Hl layer.
	LookaheadNodes, LookaheadPrunes int

	// CacheHits and CacheStores count the transposition cache usage.
	CacheHits, CacheStores int

	// DrawShortCircuits counts the root children scored as draws because a draw could be claimed.
	DrawShortCircuits int
}

// Sub returns the difference s - other, counter by counter.
func (s Stats) Sub(other Stats) Stats {
	diff := Stats{
		Searches:          s.Searches - other.Searches,
		Evals:             s.Evals - other.Evals,
		Prunes:            s.Prunes - other.Prunes,
		LookaheadNodes:    s.LookaheadNodes - other.LookaheadNodes,
		LookaheadPrunes:   s.LookaheadPrunes - other.LookaheadPrunes,
		CacheHits:         s.CacheHits - other.CacheHits,
		CacheStores:       s.CacheStores - other.CacheStores,
		DrawShortCircuits: s.DrawShortCircuits - other.DrawShortCircuits,
	}
	for ii := range s.Layers {
		diff.Layers[ii].Evals = s.Layers[ii].Evals - other.Layers[ii].Evals
		diff.Layers[ii].Prunes = s.Layers[ii].Prunes - other.Layers[ii].Prunes
	}
	return diff
}

// Add returns the sum s + other, counter by counter. Used to aggregate the counters of many searchers.
func (s Stats) Add(other Stats) Stats {
	sum := Stats{
		Searches:          s.Searches + other.Searches,
		Evals:             s.Evals + other.Evals,
		Prunes:            s.Prunes + other.Prunes,
		LookaheadNodes:    s.LookaheadNodes + other.LookaheadNodes,
		LookaheadPrunes:   s.LookaheadPrunes + other.LookaheadPrunes,
		CacheHits:         s.CacheHits + other.CacheHits,
		CacheStores:       s.CacheStores + other.CacheStores,
		DrawShortCircuits: s.DrawShortCircuits + other.DrawShortCircuits,
	}
	for ii := range s.Layers {
		sum.Layers[ii].Evals = s.Layers[ii].Evals + other.Layers[ii].Evals
		sum.Layers[ii].Prunes = s.Layers[ii].Prunes + other.Layers[ii].Prunes
	}
	return sum
}

// String prints the non-zero counters.
func (s Stats) String() string {
	parts := []string{
		fmt.Sprintf("searches=%d", s.Searches),
		fmt.Sprintf("evals=%d", s.Evals),
		fmt.Sprintf("prunes=%d", s.Prunes),
	}
	for ii, layer := range s.Layers {
		if layer.Evals > 0 || layer.Prunes > 0 {
			parts = append(parts, fmt.Sprintf("evals%[1]s=%[2]d, prunes%[1]s=%[3]d", Layer(ii), layer.Evals, layer.Prunes))
		}
	}
	if s.LookaheadNodes > 0 {
		parts = append(parts, fmt.Sprintf("lookahead nodes=%d, prunes=%d", s.LookaheadNodes, s.LookaheadPrunes))
	}
	if s.CacheHits > 0 || s.CacheStores > 0 {
		parts = append(parts, fmt.Sprintf("cache hits=%d, stores=%d", s.CacheHits, s.CacheStores))
	}
	if s.DrawShortCircuits > 0 {
		parts = append(parts, fmt.Sprintf("draws=%d", s.DrawShortCircuits))
	}
	return strings.Join(parts, ", ")
}
