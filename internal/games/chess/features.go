package chess

import (
	"github.com/janpfeifer/gametree/internal/features"
	"github.com/janpfeifer/gametree/internal/state"
	"github.com/notnil/chess"
)

// pairSpec creates a feature with values for (White, Black), normalized by [0, max].
func pairSpec(name string, max float32, fn func(a *analysis, c int) int) features.Spec {
	return features.Spec{
		Name: name,
		Dim:  2,
		Max:  max,
		Setter: func(s *state.State, _ *features.Spec, f []float32) {
			a := analyze(boardOf(s))
			f[0], f[1] = float32(fn(a, white)), float32(fn(a, black))
		},
	}
}

// homeRank is the first rank of c: 0 for White, 7 for Black.
func homeRank(c int) int {
	if c == black {
		return 7
	}
	return 0
}

// countNotOn counts the squares of rank r, restricted to files, not holding a piece of c among types.
func countNotOn(a *analysis, c, rank int, files []int, types ...chess.PieceType) (count int) {
	color := chess.White
	if c == black {
		color = chess.Black
	}
	for _, file := range files {
		sq, _ := square(file, rank)
		piece := a.board.Piece(sq)
		found := false
		if piece != chess.NoPiece && piece.Color() == color {
			for _, t := range types {
				if piece.Type() == t {
					found = true
					break
				}
			}
		}
		if !found {
			count++
		}
	}
	return
}

var allFiles = []int{0, 1, 2, 3, 4, 5, 6, 7}

// Features of a chess position: 10 features, each with the value for White and for Black.
var Features = features.NewSet("chess",
	pairSpec("Material", 48, func(a *analysis, c int) int { return a.material[c] }),
	pairSpec("Space", 57, func(a *analysis, c int) int { return a.space(c) }),
	pairSpec("Activity", 84, func(a *analysis, c int) int { return a.activity[c] }),
	pairSpec("Threats", 12, func(a *analysis, c int) int { return a.threatened(c) }),
	pairSpec("KingSafety", 4, func(a *analysis, c int) int { return a.pawnShield(c) }),
	pairSpec("CenterControl", 5, func(a *analysis, c int) int { return a.centerControl(c) }),
	pairSpec("MovedPawns", 9, func(a *analysis, c int) int {
		rank := 1
		if c == black {
			rank = 6
		}
		return countNotOn(a, c, rank, allFiles, chess.Pawn)
	}),
	pairSpec("PawnStructure", 11, func(a *analysis, c int) int { return a.pawnWeaknesses(c) }),
	pairSpec("MovedMajorPieces", 9, func(a *analysis, c int) int {
		return countNotOn(a, c, homeRank(c), allFiles, chess.Rook, chess.Bishop, chess.Queen)
	}),
	pairSpec("DevelopedMinorPieces", 5, func(a *analysis, c int) int {
		return countNotOn(a, c, homeRank(c), []int{1, 2, 5, 6}, chess.Knight, chess.Bishop)
	}),
)
