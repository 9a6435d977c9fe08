package chess

import (
	"github.com/notnil/chess"
)

// Color indices used by the analysis arrays.
const (
	white = 0
	black = 1
)

func colorIdx(c chess.Color) int {
	if c == chess.Black {
		return black
	}
	return white
}

// PieceValues used by material counts, indexed by chess.PieceType.
var PieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
	chess.King:   0,
}

var (
	knightOffsets = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs      = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs    = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs     = append(append([][2]int{}, rookDirs...), bishopDirs...)
	centerSquares = []chess.Square{chess.D4, chess.E4, chess.D5, chess.E5}
)

func square(file, rank int) (chess.Square, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return chess.NoSquare, false
	}
	return chess.Square(file + rank*8), true
}

// forEachAttack calls fn for every square attacked by the piece on sq. Attacks include squares
// occupied by pieces of either colour; sliding pieces stop at the first occupied square.
func forEachAttack(board *chess.Board, sq chess.Square, piece chess.Piece, fn func(target chess.Square)) {
	file, rank := int(sq.File()), int(sq.Rank())
	jumps := func(offsets [][2]int) {
		for _, off := range offsets {
			if target, ok := square(file+off[0], rank+off[1]); ok {
				fn(target)
			}
		}
	}
	slides := func(dirs [][2]int) {
		for _, dir := range dirs {
			for step := 1; ; step++ {
				target, ok := square(file+step*dir[0], rank+step*dir[1])
				if !ok {
					break
				}
				fn(target)
				if board.Piece(target) != chess.NoPiece {
					break
				}
			}
		}
	}
	switch piece.Type() {
	case chess.Pawn:
		forward := 1
		if piece.Color() == chess.Black {
			forward = -1
		}
		jumps([][2]int{{-1, forward}, {1, forward}})
	case chess.Knight:
		jumps(knightOffsets)
	case chess.King:
		jumps(kingOffsets)
	case chess.Bishop:
		slides(bishopDirs)
	case chess.Rook:
		slides(rookDirs)
	case chess.Queen:
		slides(queenDirs)
	}
}

// analysis holds the per-board counts shared by the heuristics and the features.
type analysis struct {
	board *chess.Board

	// attackers[color][sq] is the number of pieces of color attacking sq.
	attackers [2][64]int

	// activity is the number of squares attacked by the non-pawn pieces of each color.
	activity [2]int

	// mobility is the number of attacked squares not occupied by own pieces, for all pieces.
	mobility [2]int

	material     [2]int
	kings        [2]chess.Square
	pawnsPerFile [2][8]int
	counts       [2]map[chess.PieceType]int
}

func analyze(board *chess.Board) *analysis {
	a := &analysis{board: board}
	a.kings = [2]chess.Square{chess.NoSquare, chess.NoSquare}
	a.counts = [2]map[chess.PieceType]int{make(map[chess.PieceType]int), make(map[chess.PieceType]int)}
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece {
			continue
		}
		c := colorIdx(piece.Color())
		a.material[c] += PieceValues[piece.Type()]
		a.counts[c][piece.Type()]++
		switch piece.Type() {
		case chess.King:
			a.kings[c] = sq
		case chess.Pawn:
			a.pawnsPerFile[c][sq.File()]++
		}
		forEachAttack(board, sq, piece, func(target chess.Square) {
			a.attackers[c][target]++
			if piece.Type() != chess.Pawn {
				a.activity[c]++
			}
			if occupant := board.Piece(target); occupant == chess.NoPiece || occupant.Color() != piece.Color() {
				a.mobility[c]++
			}
		})
	}
	return a
}

// space is the number of squares attacked by color c.
func (a *analysis) space(c int) (count int) {
	for _, n := range a.attackers[c] {
		if n > 0 {
			count++
		}
	}
	return
}

// threatened is the number of pieces of color c attacked by the opponent.
func (a *analysis) threatened(c int) (count int) {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := a.board.Piece(sq)
		if piece != chess.NoPiece && colorIdx(piece.Color()) == c && a.attackers[1-c][sq] > 0 {
			count++
		}
	}
	return
}

// centerControl is the number of center squares attacked by c.
func (a *analysis) centerControl(c int) (count int) {
	for _, sq := range centerSquares {
		if a.attackers[c][sq] > 0 {
			count++
		}
	}
	return
}

// pawnShield counts the pawns of c right in front of its king (straight and diagonally).
func (a *analysis) pawnShield(c int) (count int) {
	king := a.kings[c]
	if king == chess.NoSquare {
		return 0
	}
	forward := 1
	color := chess.White
	if c == black {
		forward, color = -1, chess.Black
	}
	for _, df := range []int{-1, 0, 1} {
		if sq, ok := square(int(king.File())+df, int(king.Rank())+forward); ok {
			if p := a.board.Piece(sq); p.Type() == chess.Pawn && p.Color() == color {
				count++
			}
		}
	}
	return
}

// kingZone calls fn for every square adjacent to the king of c.
func (a *analysis) kingZone(c int, fn func(sq chess.Square)) {
	king := a.kings[c]
	if king == chess.NoSquare {
		return
	}
	for _, off := range kingOffsets {
		if sq, ok := square(int(king.File())+off[0], int(king.Rank())+off[1]); ok {
			fn(sq)
		}
	}
}

// pawnWeaknesses counts doubled pawns (each pawn on a file with more than one) plus isolated files.
func (a *analysis) pawnWeaknesses(c int) (count int) {
	files := a.pawnsPerFile[c]
	for f, n := range files {
		if n > 1 {
			count += n
		}
		if n > 0 && (f == 0 || files[f-1] == 0) && (f == 7 || files[f+1] == 0) {
			count++
		}
	}
	return
}

// isEndgame: no queens, or each side with a queen has at most one minor piece and no rooks.
func (a *analysis) isEndgame() bool {
	queens := [2]int{a.counts[white][chess.Queen], a.counts[black][chess.Queen]}
	if queens[white] == 0 && queens[black] == 0 {
		return true
	}
	light := func(c int) bool {
		minors := a.counts[c][chess.Knight] + a.counts[c][chess.Bishop]
		return queens[c] == 1 && a.counts[c][chess.Rook] == 0 && minors <= 1
	}
	return (light(white) && queens[black] == 0) ||
		(light(black) && queens[white] == 0) ||
		(light(white) && light(black))
}
