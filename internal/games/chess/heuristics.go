package chess

import (
	"github.com/janpfeifer/gametree/internal/ai"
	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/state"
	"github.com/notnil/chess"
)

// All heuristics score from White's point of view, regardless of the side to move.

// boardHeuristic builds a leaf heuristic from a function of the board analysis.
func boardHeuristic(name string, fn func(a *analysis) float64) ai.LeafHeuristic {
	return ai.NewHeuristic(name, func(s *state.State) float64 {
		return fn(analyze(boardOf(s)))
	})
}

func materialScore(a *analysis) float64 {
	return float64(a.material[white] - a.material[black])
}

// mobilityScore counts squares attacked by each side (not occupied by its own pieces). This is
// pseudo-legal mobility: it doesn't require generating the moves of the side not to move.
func mobilityScore(a *analysis) float64 {
	return float64(a.mobility[white] - a.mobility[black])
}

const centralSquareControl = 0.3

func centerScore(a *analysis) float64 {
	return centralSquareControl * float64(a.centerControl(white)-a.centerControl(black))
}

const (
	pawnCoverScore      = 0.5
	attackedSquareScore = -0.75
)

// kingSafetyScore rewards own pawns next to the king and penalizes squares around the king attacked
// by the opponent.
func kingSafetyScore(a *analysis) float64 {
	side := func(c int) (score float64) {
		pawn := chess.WhitePawn
		if c == black {
			pawn = chess.BlackPawn
		}
		a.kingZone(c, func(sq chess.Square) {
			if a.board.Piece(sq) == pawn {
				score += pawnCoverScore
			}
			if a.attackers[1-c][sq] > 0 {
				score += attackedSquareScore
			}
		})
		return
	}
	return side(white) - side(black)
}

const (
	isolatedPawnScore    = -20
	doubledPawnScore     = -10
	unsupportedPawnScore = -15
	passedPawnScore      = 50
)

func pawnsScore(a *analysis) float64 {
	side := func(c int) (score int) {
		color, forward := chess.White, 1
		if c == black {
			color, forward = chess.Black, -1
		}
		files := a.pawnsPerFile[c]
		for sq := chess.A1; sq <= chess.H8; sq++ {
			piece := a.board.Piece(sq)
			if piece.Type() != chess.Pawn || piece.Color() != color {
				continue
			}
			file, rank := int(sq.File()), int(sq.Rank())
			if (file == 0 || files[file-1] == 0) && (file == 7 || files[file+1] == 0) {
				score += isolatedPawnScore
			}
			if files[file] > 1 {
				score += doubledPawnScore
			}

			// Supported by any pawn beside it, or diagonally in front of it.
			supported := false
			for _, off := range [][2]int{{-1, 0}, {1, 0}, {-1, forward}, {1, forward}} {
				if support, ok := square(file+off[0], rank+off[1]); ok && a.board.Piece(support).Type() == chess.Pawn {
					supported = true
					break
				}
			}
			if advance, ok := square(file, rank+forward); ok && !supported && a.board.Piece(advance) == chess.NoPiece {
				score += unsupportedPawnScore
			}

			// Passed: no opponent pawn ahead on the same file.
			passed := true
			for r := rank + forward; r >= 0 && r <= 7; r += forward {
				ahead, _ := square(file, r)
				if p := a.board.Piece(ahead); p.Type() == chess.Pawn && p.Color() != color {
					passed = false
					break
				}
			}
			if passed {
				score += passedPawnScore
			}
		}
		return
	}
	return float64(side(white) - side(black))
}

// Piece-square tables, from White's point of view, indexed by chess.Square (A1 = 0).
var (
	pawnTable = [64]int{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	knightTable = [64]int{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	}
	bishopTable = [64]int{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	}
	rookTable = [64]int{
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	queenTable = [64]int{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	}
	kingMiddleGameTable = [64]int{
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	}
	kingEndGameTable = [64]int{
		-50, -40, -30, -20, -20, -30, -40, -50,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-50, -30, -30, -30, -30, -30, -30, -50,
	}
)

// positionsScore sums the piece-square tables; Black uses the vertically mirrored square.
func positionsScore(a *analysis) float64 {
	endgame := a.isEndgame()
	var score int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := a.board.Piece(sq)
		var table *[64]int
		switch piece.Type() {
		case chess.Pawn:
			table = &pawnTable
		case chess.Knight:
			table = &knightTable
		case chess.Bishop:
			table = &bishopTable
		case chess.Rook:
			table = &rookTable
		case chess.Queen:
			table = &queenTable
		case chess.King:
			table = &kingMiddleGameTable
			if endgame {
				table = &kingEndGameTable
			}
		default:
			continue
		}
		if piece.Color() == chess.White {
			score += table[sq]
		} else {
			score -= table[int(sq)^56]
		}
	}
	return float64(score)
}

// Normalization bounds used by the soft combination.
const (
	materialBound   = 39.0
	centerBound     = 4 * centralSquareControl
	kingSafetyBound = 8 * (pawnCoverScore - attackedSquareScore)
	positionsBound  = 420.0
)

// softScore is the weighted combination of normalized material, center control, king safety and
// piece positions.
func softScore(a *analysis) float64 {
	return 0.35*materialScore(a)/materialBound +
		0.20*centerScore(a)/centerBound +
		0.25*kingSafetyScore(a)/kingSafetyBound +
		0.20*positionsScore(a)/positionsBound
}

// Heuristics available for chess, by name.
var Heuristics = games.HeuristicTable{
	"material":    boardHeuristic("material", materialScore),
	"mobility":    boardHeuristic("mobility", mobilityScore),
	"center":      boardHeuristic("center", centerScore),
	"king_safety": boardHeuristic("king_safety", kingSafetyScore),
	"pawns":       boardHeuristic("pawns", pawnsScore),
	"positions":   boardHeuristic("positions", positionsScore),
	"soft":        boardHeuristic("soft", softScore),
}
