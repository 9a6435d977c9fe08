// Package ai (Artificial Intelligence) defines the interfaces of the scoring functions used by the
// searchers: leaf heuristics that score positions and feature scorers (pre-trained models that
// score a fixed-width feature vector).
package ai

import (
	"fmt"
	"math"

	"github.com/janpfeifer/gametree/internal/rules"
	. "github.com/janpfeifer/gametree/internal/state"
)

var (
	// WinScore is the score of a position won by the maximizing side (state.SideFirst).
	// It saturates any alpha-beta window.
	WinScore = math.Inf(1)

	// LossScore is the score of a position won by the minimizing side (state.SideSecond).
	LossScore = math.Inf(-1)
)

// DrawScore is the score of a drawn position.
const DrawScore = 0.0

// LeafHeuristic scores a position from the point of view of the maximizing side: higher is better
// for state.SideFirst, regardless of who is to move.
//
// Implementations must be total and side-effect free.
type LeafHeuristic interface {
	Score(s *State) float64
	String() string
}

// FeatureScorer is a pre-trained model that scores a fixed-width feature vector.
type FeatureScorer interface {
	// ScoreFeatures returns the model prediction for one feature vector.
	ScoreFeatures(features []float32) float32

	// NumFeatures is the width of the feature vector the model expects.
	NumFeatures() int

	String() string
}

// OutcomeScore converts the outcome of a finished game to WinScore, LossScore or DrawScore.
func OutcomeScore(outcome rules.Outcome) float64 {
	switch {
	case outcome.Draw:
		return DrawScore
	case outcome.Winner == SideFirst:
		return WinScore
	case outcome.Winner == SideSecond:
		return LossScore
	}
	return DrawScore
}

// TerminalOrLeafScore returns the hard-coded score of a terminal state with a known outcome, and
// falls back to the leaf heuristic otherwise.
func TerminalOrLeafScore(r rules.Provider, leaf LeafHeuristic, s *State) float64 {
	if r.IsTerminal(s) {
		if outcome, ok := r.Outcome(s); ok {
			return OutcomeScore(outcome)
		}
	}
	return leaf.Score(s)
}

// IsDecisive returns whether the score is a sure win or loss.
func IsDecisive(score float64) bool {
	return math.IsInf(score, 0)
}

// heuristicFunc implements LeafHeuristic with a function.
type heuristicFunc struct {
	name string
	fn   func(s *State) float64
}

// NewHeuristic returns a LeafHeuristic that calls fn. The name is returned by String.
func NewHeuristic(name string, fn func(s *State) float64) LeafHeuristic {
	return &heuristicFunc{name: name, fn: fn}
}

func (h *heuristicFunc) Score(s *State) float64 { return h.fn(s) }
func (h *heuristicFunc) String() string         { return h.name }

// Weighted is a term of a linear combination of heuristics.
type Weighted struct {
	Heuristic LeafHeuristic
	Weight    float64
}

// NewCombination returns a LeafHeuristic that sums the weighted scores of the given terms.
func NewCombination(name string, terms ...Weighted) LeafHeuristic {
	return NewHeuristic(name, func(s *State) float64 {
		var sum float64
		for _, term := range terms {
			sum += term.Weight * term.Heuristic.Score(s)
		}
		return sum
	})
}

// FormatScore prints scores, including the decisive ones.
func FormatScore(score float64) string {
	switch {
	case math.IsInf(score, 1):
		return "+∞"
	case math.IsInf(score, -1):
		return "-∞"
	}
	return fmt.Sprintf("%.3f", score)
}
