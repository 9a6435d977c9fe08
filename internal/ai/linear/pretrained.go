package linear

import (
	"github.com/pkg/errors"
)

// Embedded pre-trained linear models.

var (
	// PreTrainedChessV0 scores the 20 chess features (see games/chess.Features), from White's
	// point of view. Features come in (White, Black) pairs, all normalized to [0, 1].
	PreTrainedChessV0 = NewWithWeights(
		// Material
		4.0, -4.0,
		// Space
		0.6, -0.6,
		// Activity
		0.8, -0.8,
		// Threats
		1.2, -1.2,
		// KingSafety
		1.0, -1.0,
		// CenterControl
		0.7, -0.7,
		// MovedPawns
		0.2, -0.2,
		// PawnStructure
		0.5, -0.5,
		// MovedMajorPieces
		-0.3, 0.3,
		// DevelopedMinorPieces
		0.6, -0.6,

		// Bias: *Must always be last*
		0.0,
	).WithName("chess-v0")

	// PreTrainedChess is an alias to the current best linear model for chess.
	PreTrainedChess = PreTrainedChessV0.Clone().WithName("chess")

	preTrained = []*Scorer{PreTrainedChess, PreTrainedChessV0}
)

// ByName returns the embedded pre-trained model with the given name, or the model loaded from
// the file with that name, if there is no embedded model with it.
func ByName(name string) (*Scorer, error) {
	for _, scorer := range preTrained {
		if scorer.name == name {
			return scorer, nil
		}
	}
	scorer, err := Load(name)
	if err != nil {
		return nil, errors.WithMessagef(err, "no pre-trained linear model named %q", name)
	}
	return scorer, nil
}
