package model

import (
	"slices"
	"strings"
)

// Board is the position at one point of a game. It owns its squares and
// pieces; captured pieces stay in the piece list, parked off the board.
type Board struct {
	// Index is the board's place in the game history, -1 for scratch copies.
	Index int

	squares   [FileCount * RankCount]Square
	pieces    []Piece
	enPassant int

	// moves caches possible moves per piece index until the next mutation.
	moves map[int][]Destination
}

var backRank = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewEmptyBoard returns a board with squares and no pieces.
func NewEmptyBoard() *Board {
	b := &Board{Index: -1, enPassant: -1}
	for y := 0; y < RankCount; y++ {
		for x := 0; x < FileCount; x++ {
			b.squares[y*FileCount+x] = newSquare(x, y)
		}
	}
	return b
}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	b := NewEmptyBoard()
	for x := 0; x < FileCount; x++ {
		b.Place(Piece{Type: Pawn, Color: White, Position: Position{X: x, Y: 1}})
		b.Place(Piece{Type: Pawn, Color: Black, Position: Position{X: x, Y: RankCount - 2}})
	}
	for x, t := range backRank {
		b.Place(Piece{Type: t, Color: White, Position: Position{X: x, Y: 0}})
		b.Place(Piece{Type: t, Color: Black, Position: Position{X: x, Y: RankCount - 1}})
	}
	return b
}

// Place adds a copy of p on its square. It reports false when the square is
// off the board or taken. Placing may move the piece storage, so pointers
// from earlier PieceAt calls must be looked up again afterwards.
func (b *Board) Place(p Piece) bool {
	if !p.Position.Valid() || b.PieceAt(p.Position.X, p.Position.Y) != nil {
		return false
	}
	b.invalidate()
	p.Captured = false
	b.pieces = append(b.pieces, p)
	return true
}

func (b *Board) PieceAt(x, y int) *Piece {
	if !IsValid(x, y) {
		return nil
	}
	for i := range b.pieces {
		p := &b.pieces[i]
		if !p.Captured && p.Position.X == x && p.Position.Y == y {
			return p
		}
	}
	return nil
}

func (b *Board) SquareAt(x, y int) *Square {
	if !IsValid(x, y) {
		return nil
	}
	return &b.squares[y*FileCount+x]
}

func (b *Board) Squares() []Square {
	return b.squares[:]
}

// Pieces returns every piece, captured ones included.
func (b *Board) Pieces() []*Piece {
	pieces := make([]*Piece, len(b.pieces))
	for i := range b.pieces {
		pieces[i] = &b.pieces[i]
	}
	return pieces
}

func (b *Board) PiecesByColor(c Color) []*Piece {
	var pieces []*Piece
	for i := range b.pieces {
		if p := &b.pieces[i]; !p.Captured && p.Color == c {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

func (b *Board) PiecesByType(t PieceType) []*Piece {
	var pieces []*Piece
	for i := range b.pieces {
		if p := &b.pieces[i]; !p.Captured && p.Type == t {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Captured lists the captured pieces of color c.
func (b *Board) Captured(c Color) []*Piece {
	var pieces []*Piece
	for i := range b.pieces {
		if p := &b.pieces[i]; p.Captured && p.Color == c {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Material sums the values of c's pieces still on the board, kings excluded.
func (b *Board) Material(c Color) int {
	total := 0
	for _, p := range b.PiecesByColor(c) {
		if p.Type != King {
			total += p.Value()
		}
	}
	return total
}

func (b *Board) kingOf(c Color) (*Piece, bool) {
	for i := range b.pieces {
		if p := &b.pieces[i]; !p.Captured && p.Type == King && p.Color == c {
			return p, true
		}
	}
	return nil, false
}

// KingOf returns the king of color c. A board without that king breaks the
// engine's invariants, so this panics instead of returning an error.
func (b *Board) KingOf(c Color) *Piece {
	king, ok := b.kingOf(c)
	if !ok {
		panic("model: no " + c.String() + " king on board")
	}
	return king
}

// EnPassantPawn returns the pawn that just made a double step, if any.
func (b *Board) EnPassantPawn() *Piece {
	if b.enPassant < 0 || b.enPassant >= len(b.pieces) {
		return nil
	}
	if p := &b.pieces[b.enPassant]; !p.Captured {
		return p
	}
	return nil
}

// SetEnPassant records p as vulnerable to en passant. A nil p clears it.
func (b *Board) SetEnPassant(p *Piece) {
	b.invalidate()
	b.enPassant = b.indexOf(p)
}

func (b *Board) indexOf(p *Piece) int {
	for i := range b.pieces {
		if &b.pieces[i] == p {
			return i
		}
	}
	return -1
}

// ApplyMove relocates the piece on start to dest, marks it moved and
// captures whatever stood on dest. It checks nothing.
func (b *Board) ApplyMove(start, dest Position) {
	mover := b.PieceAt(start.X, start.Y)
	if mover == nil {
		return
	}
	b.invalidate()
	if target := b.PieceAt(dest.X, dest.Y); target != nil && target != mover {
		target.capture()
	}
	mover.Position = dest
	mover.HasMoved = true
}

// Capture takes p off the board.
func (b *Board) Capture(p *Piece) {
	if p == nil || p.Captured {
		return
	}
	b.invalidate()
	p.capture()
}

// Promote turns the pawn on pos into a piece of type t.
func (b *Board) Promote(pos Position, t PieceType) {
	if p := b.PieceAt(pos.X, pos.Y); p != nil && p.Type == Pawn {
		b.invalidate()
		p.Type = t
	}
}

func (b *Board) invalidate() {
	b.moves = nil
}

func (b *Board) possibleMoves(p *Piece) []Destination {
	i := b.indexOf(p)
	if i < 0 {
		return p.candidates(b, true)
	}
	if cached, ok := b.moves[i]; ok {
		return slices.Clone(cached)
	}
	dests := p.candidates(b, true)
	if b.moves == nil {
		b.moves = make(map[int][]Destination)
	}
	b.moves[i] = dests
	return slices.Clone(dests)
}

// Clone returns an independent copy of b, en-passant pawn and index
// included.
func (b *Board) Clone() *Board {
	return &Board{
		Index:     b.Index,
		squares:   b.squares,
		pieces:    slices.Clone(b.pieces),
		enPassant: b.enPassant,
	}
}

// probe is a scratch copy for legality tests.
func (b *Board) probe() *Board {
	c := b.Clone()
	c.Index = -1
	return c
}

// String encodes the board in the text grid format: one row per rank
// starting at rank 1, cells separated by '.', '-' for an empty square.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < RankCount; y++ {
		for x := 0; x < FileCount; x++ {
			if p := b.PieceAt(x, y); p != nil {
				sb.WriteString(p.Name())
			} else {
				sb.WriteByte('-')
			}
			if x < FileCount-1 {
				sb.WriteByte('.')
			}
		}
		if y < RankCount-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FromString decodes the text grid format. Has-moved flags are inferred
// from the piece positions; the en-passant pawn is not part of the format.
func FromString(data string) (*Board, error) {
	data = strings.TrimSuffix(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	rows := strings.Split(data, "\n")
	if len(rows) != RankCount {
		return nil, &FormatError{Row: len(rows), Col: -1, Reason: "expected 8 rows"}
	}
	b := NewEmptyBoard()
	for y, row := range rows {
		cells := strings.Split(row, ".")
		if len(cells) != FileCount {
			return nil, &FormatError{Row: y, Col: -1, Reason: "expected 8 columns"}
		}
		for x, token := range cells {
			if token == "-" {
				continue
			}
			c, t, ok := parseToken(token)
			if !ok {
				return nil, &FormatError{Row: y, Col: x, Token: token, Reason: "unknown piece token"}
			}
			p := Piece{Type: t, Color: c, Position: Position{X: x, Y: y}}
			p.HasMoved = !onHomeSquare(&p)
			b.Place(p)
		}
	}
	return b, nil
}

func parseToken(token string) (Color, PieceType, bool) {
	if token == "" {
		return White, "", false
	}
	var c Color
	switch token[0] {
	case 'w':
		c = White
	case 'b':
		c = Black
	default:
		return White, "", false
	}
	t, ok := pieceTypeFromToken(token[1:])
	return c, t, ok
}

// onHomeSquare reports whether p could still be unmoved where it stands.
func onHomeSquare(p *Piece) bool {
	switch p.Type {
	case Pawn:
		if p.Color == White {
			return p.Position.Y == 1
		}
		return p.Position.Y == RankCount-2
	case King:
		return p.Position.Y == homeRank(p.Color) && p.Position.X == 4
	case Rook:
		return p.Position.Y == homeRank(p.Color) && (p.Position.X == 0 || p.Position.X == FileCount-1)
	}
	return true
}
