package chess

import (
	"github.com/janpfeifer/gametree/internal/rules"
	"github.com/janpfeifer/gametree/internal/state"
	"github.com/notnil/chess"
)

const (
	// ClaimableRepeats is the number of previous occurrences of a position that allow a draw to be
	// claimed (threefold repetition).
	ClaimableRepeats = 2

	// ForcedRepeats ends the game in a draw (fivefold repetition).
	ForcedRepeats = 4

	// ClaimableHalfMoves allow a draw to be claimed (fifty-move rule).
	ClaimableHalfMoves = 100

	// ForcedHalfMoves ends the game in a draw (seventy-five-move rule).
	ForcedHalfMoves = 150
)

// Rules implements rules.Provider for chess.
type Rules struct{}

var _ rules.Provider = Rules{}

// Neighbors implements rules.Provider: one child per legal move, in the order generated by
// notnil/chess. Finished games have no neighbors.
func (r Rules) Neighbors(s *state.State) []*state.State {
	if r.IsTerminal(s) {
		return nil
	}
	pos := PositionOf(s).pos
	moves := pos.ValidMoves()
	children := make([]*state.State, 0, len(moves))
	for _, move := range moves {
		children = append(children, s.NewChild(newPosition(pos.Update(move)), move))
	}
	return children
}

// IsTerminal implements rules.Provider: checkmate, stalemate, insufficient material, the
// seventy-five-move rule and fivefold repetition end the game.
func (Rules) IsTerminal(s *state.State) bool {
	p := PositionOf(s)
	if p.pos.Status() != chess.NoMethod || len(p.pos.ValidMoves()) == 0 {
		return true
	}
	return insufficientMaterial(p.pos.Board()) ||
		p.halfMoveClock >= ForcedHalfMoves ||
		s.CountRepeats() >= ForcedRepeats
}

// IsClaimableDraw implements rules.Provider: threefold repetition or the fifty-move rule.
func (Rules) IsClaimableDraw(s *state.State) bool {
	return PositionOf(s).halfMoveClock >= ClaimableHalfMoves || s.CountRepeats() >= ClaimableRepeats
}

// TurnOf implements rules.Provider.
func (Rules) TurnOf(s *state.State) state.Side {
	return SideOf(PositionOf(s).pos.Turn())
}

// Outcome implements rules.Provider.
func (r Rules) Outcome(s *state.State) (rules.Outcome, bool) {
	if !r.IsTerminal(s) {
		return rules.Outcome{}, false
	}
	pos := PositionOf(s).pos
	if pos.Status() == chess.Checkmate {
		// The side to move is checkmated.
		return rules.WinFor(SideOf(pos.Turn()).Other()), true
	}
	return rules.DrawOutcome, true
}

// insufficientMaterial reports positions where no sequence of legal moves can checkmate: king
// against king, king and minor piece against king, and kings with bishops all on squares of the
// same colour.
func insufficientMaterial(board *chess.Board) bool {
	var knights, bishops int
	var bishopSquareColors [2]int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		switch piece.Type() {
		case chess.NoPieceType, chess.King:
		case chess.Knight:
			knights++
		case chess.Bishop:
			bishops++
			bishopSquareColors[(int(sq.File())+int(sq.Rank()))%2]++
		default:
			// Pawns, rooks or queens.
			return false
		}
	}
	if knights+bishops <= 1 {
		return true
	}
	return knights == 0 && (bishopSquareColors[0] == 0 || bishopSquareColors[1] == 0)
}
