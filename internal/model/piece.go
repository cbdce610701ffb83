package model

import (
	"fmt"
	"math"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Token returns the piece letter used by the board text format. Pawns have
// no letter.
func (t PieceType) Token() string {
	switch t {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func pieceTypeFromToken(token string) (PieceType, bool) {
	switch token {
	case "":
		return Pawn, true
	case "K":
		return King, true
	case "Q":
		return Queen, true
	case "R":
		return Rook, true
	case "B":
		return Bishop, true
	case "N":
		return Knight, true
	}
	return "", false
}

// ParsePieceType accepts either a piece letter ("Q") or a name ("queen").
func ParsePieceType(s string) (PieceType, error) {
	switch PieceType(s) {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return PieceType(s), nil
	}
	if t, ok := pieceTypeFromToken(s); ok && s != "" {
		return t, nil
	}
	return "", fmt.Errorf("invalid piece type %q", s)
}

// KingValue stands in for the king's unbounded material value.
const KingValue = math.MaxInt32

var materialValues = map[PieceType]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   KingValue,
}

type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	Position Position  `json:"position"`
	HasMoved bool      `json:"hasMoved"`
	Captured bool      `json:"captured"`
}

func (p *Piece) Value() int {
	return materialValues[p.Type]
}

// Name is the text format token of the piece, e.g. "wK" or "b" for a black pawn.
func (p *Piece) Name() string {
	return p.Color.Token() + p.Type.Token()
}

func (p *Piece) String() string {
	return p.Name()
}

func (p *Piece) capture() {
	p.Captured = true
	p.Position = OffBoard
}

// PossibleMoves lists the destinations this piece may reach on b, ignoring
// whether the move would leave its own king in check. It never mutates the
// board.
func (p *Piece) PossibleMoves(b *Board) []Destination {
	return b.possibleMoves(p)
}

// InCheck reports whether any enemy piece attacks the square p stands on.
// It is meaningful for kings; other pieces get an "is attacked" answer.
func (p *Piece) InCheck(b *Board) bool {
	if p.Captured {
		return false
	}
	for _, enemy := range b.PiecesByColor(p.Color.Other()) {
		for _, dest := range enemy.candidates(b, false) {
			if dest.Position == p.Position {
				return true
			}
		}
	}
	return false
}

type CastleSide int

const (
	QueenSide CastleSide = iota
	KingSide
)

func (s CastleSide) String() string {
	if s == KingSide {
		return "kingside"
	}
	return "queenside"
}

// step is the file direction the king travels when castling to this side.
func (s CastleSide) step() int {
	if s == KingSide {
		return 1
	}
	return -1
}

func (s CastleSide) rookFile() int {
	if s == KingSide {
		return FileCount - 1
	}
	return 0
}

func homeRank(c Color) int {
	if c == Black {
		return RankCount - 1
	}
	return 0
}

// CanCastle reports whether this king may castle towards side: neither the
// king nor the own rook on that corner has moved, the squares between them
// are empty and the king is not in check. Safety of the squares the king
// crosses is checked by Board.IsLegal.
func (p *Piece) CanCastle(b *Board, side CastleSide) bool {
	if p.Type != King || p.HasMoved || p.Captured {
		return false
	}
	rook := b.PieceAt(side.rookFile(), p.Position.Y)
	if rook == nil || rook.Type != Rook || rook.Color != p.Color || rook.HasMoved {
		return false
	}
	lo, hi := p.Position.X, rook.Position.X
	if lo > hi {
		lo, hi = hi, lo
	}
	for x := lo + 1; x < hi; x++ {
		if b.PieceAt(x, p.Position.Y) != nil {
			return false
		}
	}
	if !IsValid(p.Position.X+2*side.step(), p.Position.Y) {
		return false
	}
	return !p.InCheck(b)
}

var (
	rookDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	queenDirs  = append(append([]Position{}, rookDirs...), bishopDirs...)
	knightDirs = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = queenDirs
)

// candidates generates the pseudo-legal destinations of p. Castling is left
// out of attack queries: a castling king never captures and asking for it
// would recurse into the opponent's check test.
func (p *Piece) candidates(b *Board, castling bool) []Destination {
	if p.Captured {
		return nil
	}
	var dests []Destination
	switch p.Type {
	case Pawn:
		dests = p.pawnCandidates(b)
	case Knight:
		dests = p.stepCandidates(knightDirs)
	case Bishop:
		dests = p.rayCandidates(b, bishopDirs)
	case Rook:
		dests = p.rayCandidates(b, rookDirs)
	case Queen:
		dests = p.rayCandidates(b, queenDirs)
	case King:
		dests = p.stepCandidates(kingDirs)
		if castling {
			for _, side := range []CastleSide{QueenSide, KingSide} {
				if p.CanCastle(b, side) {
					dests = append(dests, Destination{
						Position: p.Position.add(2*side.step(), 0),
						Kind:     MoveCastling,
					})
				}
			}
		}
	}
	legal := dests[:0]
	for _, dest := range dests {
		if b.IsPseudoLegal(p.Position, dest.Position) {
			legal = append(legal, dest)
		}
	}
	return legal
}

func (p *Piece) pawnCandidates(b *Board) []Destination {
	var dests []Destination
	dir := 1
	if p.Color == Black {
		dir = -1
	}
	one := p.Position.add(0, dir)
	if one.Valid() && b.PieceAt(one.X, one.Y) == nil {
		dests = append(dests, Destination{Position: one, Kind: MoveNormal})
		two := p.Position.add(0, 2*dir)
		if !p.HasMoved && two.Valid() && b.PieceAt(two.X, two.Y) == nil {
			dests = append(dests, Destination{Position: two, Kind: MoveDoubleStep})
		}
	}
	for _, dx := range []int{-1, 1} {
		diag := p.Position.add(dx, dir)
		if !diag.Valid() {
			continue
		}
		target := b.PieceAt(diag.X, diag.Y)
		if target != nil {
			if target.Color != p.Color {
				dests = append(dests, Destination{Position: diag, Kind: MoveNormal})
			}
			continue
		}
		if ep := b.EnPassantPawn(); ep != nil && ep.Color != p.Color && ep.Position == p.Position.add(dx, 0) {
			dests = append(dests, Destination{Position: diag, Kind: MoveEnPassant})
		}
	}
	return dests
}

func (p *Piece) stepCandidates(dirs []Position) []Destination {
	dests := make([]Destination, 0, len(dirs))
	for _, dir := range dirs {
		target := p.Position.add(dir.X, dir.Y)
		if target.Valid() {
			dests = append(dests, Destination{Position: target, Kind: MoveNormal})
		}
	}
	return dests
}

// rayCandidates walks each direction until the board edge or the first
// occupied square, which is included.
func (p *Piece) rayCandidates(b *Board, dirs []Position) []Destination {
	var dests []Destination
	for _, dir := range dirs {
		target := p.Position.add(dir.X, dir.Y)
		for target.Valid() {
			dests = append(dests, Destination{Position: target, Kind: MoveNormal})
			if b.PieceAt(target.X, target.Y) != nil {
				break
			}
			target = target.add(dir.X, dir.Y)
		}
	}
	return dests
}
