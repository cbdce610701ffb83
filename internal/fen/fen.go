// Package fen converts between engine boards and Forsyth-Edwards Notation.
// Parsing and validation are delegated to github.com/corentings/chess/v2.
package fen

import (
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// Start is the FEN of the standard starting position.
const Start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	toEngine = map[chess.PieceType]model.PieceType{
		chess.King:   model.King,
		chess.Queen:  model.Queen,
		chess.Rook:   model.Rook,
		chess.Bishop: model.Bishop,
		chess.Knight: model.Knight,
		chess.Pawn:   model.Pawn,
	}

	whitePieces = map[model.PieceType]chess.Piece{
		model.King:   chess.WhiteKing,
		model.Queen:  chess.WhiteQueen,
		model.Rook:   chess.WhiteRook,
		model.Bishop: chess.WhiteBishop,
		model.Knight: chess.WhiteKnight,
		model.Pawn:   chess.WhitePawn,
	}

	blackPieces = map[model.PieceType]chess.Piece{
		model.King:   chess.BlackKing,
		model.Queen:  chess.BlackQueen,
		model.Rook:   chess.BlackRook,
		model.Bishop: chess.BlackBishop,
		model.Knight: chess.BlackKnight,
		model.Pawn:   chess.BlackPawn,
	}
)

// castling flags in FEN order with the rook corner each one refers to.
var corners = []struct {
	flag  string
	color model.Color
	file  int
}{
	{"K", model.White, model.FileCount - 1},
	{"Q", model.White, 0},
	{"k", model.Black, model.FileCount - 1},
	{"q", model.Black, 0},
}

// Parse decodes s into a board and the side to move. Castling rights become
// has-moved flags on kings and rooks; the en-passant target square marks the
// pawn that just double stepped.
func Parse(s string) (*model.Board, model.Color, error) {
	opt, err := chess.FEN(s)
	if err != nil {
		return nil, model.White, fmt.Errorf("%w: %v", model.ErrInvalidBoard, err)
	}
	pos := chess.NewGame(opt).Position()
	// chess.FEN has already validated the field layout.
	fields := strings.Fields(s)
	rights, epField := fields[2], fields[3]

	b := model.NewEmptyBoard()
	for sq, p := range pos.Board().SquareMap() {
		color := model.White
		if p.Color() == chess.Black {
			color = model.Black
		}
		piece := model.Piece{
			Type:     toEngine[p.Type()],
			Color:    color,
			Position: model.Position{X: int(sq.File()), Y: int(sq.Rank())},
		}
		piece.HasMoved = !unmoved(&piece, rights)
		if !b.Place(piece) {
			return nil, model.White, fmt.Errorf("%w: square %s occupied twice", model.ErrInvalidBoard, sq)
		}
	}

	if epField != "-" {
		target, err := model.ParsePosition(epField)
		if err != nil {
			return nil, model.White, fmt.Errorf("%w: %v", model.ErrInvalidBoard, err)
		}
		// The target is the square the pawn skipped, one rank behind it.
		dir := 1
		if target.Y == 5 {
			dir = -1
		}
		pawn := b.PieceAt(target.X, target.Y+dir)
		if pawn == nil || pawn.Type != model.Pawn {
			return nil, model.White, fmt.Errorf("%w: no pawn passed %s", model.ErrInvalidBoard, epField)
		}
		b.SetEnPassant(pawn)
	}

	turn := model.White
	if pos.Turn() == chess.Black {
		turn = model.Black
	}
	return b, turn, nil
}

func unmoved(p *model.Piece, rights string) bool {
	home := 0
	if p.Color == model.Black {
		home = model.RankCount - 1
	}
	switch p.Type {
	case model.Pawn:
		if p.Color == model.White {
			return p.Position.Y == 1
		}
		return p.Position.Y == model.RankCount-2
	case model.King:
		if p.Position != (model.Position{X: 4, Y: home}) {
			return false
		}
		for _, c := range corners {
			if c.color == p.Color && strings.Contains(rights, c.flag) {
				return true
			}
		}
		return false
	case model.Rook:
		for _, c := range corners {
			if c.color == p.Color && p.Position == (model.Position{X: c.file, Y: home}) {
				return strings.Contains(rights, c.flag)
			}
		}
		return false
	}
	return true
}

// Encode writes b with turn to move as FEN. The halfmove clock is not
// tracked by the engine and is always 0.
func Encode(b *model.Board, turn model.Color, fullMove int) string {
	m := make(map[chess.Square]chess.Piece)
	for _, p := range b.Pieces() {
		if p.Captured {
			continue
		}
		pieces := whitePieces
		if p.Color == model.Black {
			pieces = blackPieces
		}
		m[chess.NewSquare(chess.File(p.Position.X), chess.Rank(p.Position.Y))] = pieces[p.Type]
	}
	if fullMove < 1 {
		fullMove = 1
	}
	return fmt.Sprintf("%s %s %s %s 0 %d",
		chess.NewBoard(m).String(), turn.Token(), castling(b), enPassant(b), fullMove)
}

func castling(b *model.Board) string {
	var sb strings.Builder
	for _, c := range corners {
		king, rook := kingAt(b, c.color), b.PieceAt(c.file, homeRank(c.color))
		if king == nil || king.HasMoved || rook == nil || rook.Type != model.Rook || rook.Color != c.color || rook.HasMoved {
			continue
		}
		sb.WriteString(c.flag)
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func kingAt(b *model.Board, c model.Color) *model.Piece {
	p := b.PieceAt(4, homeRank(c))
	if p == nil || p.Type != model.King || p.Color != c {
		return nil
	}
	return p
}

func enPassant(b *model.Board) string {
	p := b.EnPassantPawn()
	if p == nil {
		return "-"
	}
	behind := model.Position{X: p.Position.X, Y: p.Position.Y - 1}
	if p.Color == model.Black {
		behind.Y = p.Position.Y + 1
	}
	return behind.String()
}

func homeRank(c model.Color) int {
	if c == model.Black {
		return model.RankCount - 1
	}
	return 0
}

// FullMove derives the FEN move number from the engine's count of moves
// played by White.
func FullMove(whiteMoves int, turn model.Color) int {
	if turn == model.White {
		return whiteMoves + 1
	}
	return whiteMoves
}
