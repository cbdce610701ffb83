package model

// IsPseudoLegal reports whether dest is on the board and not occupied by a
// piece of the mover's own color. It does not look at checks.
func (b *Board) IsPseudoLegal(start, dest Position) bool {
	if !dest.Valid() {
		return false
	}
	mover := b.PieceAt(start.X, start.Y)
	if mover == nil {
		return false
	}
	target := b.PieceAt(dest.X, dest.Y)
	return target == nil || target.Color != mover.Color
}

// IsLegal reports whether moving the piece on start to dest as a move of
// the given kind keeps the mover's king out of check. Every test runs on a
// scratch copy; b is never touched.
func (b *Board) IsLegal(start, dest Position, kind MoveKind) bool {
	mover := b.PieceAt(start.X, start.Y)
	if mover == nil || kind == MoveIllegal || !b.IsPseudoLegal(start, dest) {
		return false
	}
	color := mover.Color

	if kind == MoveCastling {
		if mover.Type != King || dest.Y != start.Y || abs(dest.X-start.X) != 2 {
			return false
		}
		side, step := KingSide, 1
		if dest.X < start.X {
			side, step = QueenSide, -1
		}
		if !mover.CanCastle(b, side) {
			return false
		}
		for x := start.X + step; ; x += step {
			probe := b.probe()
			probe.ApplyMove(start, Position{X: x, Y: start.Y})
			if probe.InCheck(color) {
				return false
			}
			if x == dest.X {
				return true
			}
		}
	}

	probe := b.probe()
	victim := probe.EnPassantPawn()
	probe.ApplyMove(start, dest)
	if kind == MoveEnPassant {
		probe.Capture(victim)
	}
	return !probe.InCheck(color)
}

// InCheck reports whether the king of color c is attacked.
func (b *Board) InCheck(c Color) bool {
	return b.KingOf(c).InCheck(b)
}

// LegalMoves filters p's possible moves down to the legal ones.
func (b *Board) LegalMoves(p *Piece) []Destination {
	var legal []Destination
	for _, dest := range p.PossibleMoves(b) {
		if b.IsLegal(p.Position, dest.Position, dest.Kind) {
			legal = append(legal, dest)
		}
	}
	return legal
}

// HasLegalMove reports whether color c can make any legal move. It stops at
// the first one found.
func (b *Board) HasLegalMove(c Color) bool {
	for _, p := range b.PiecesByColor(c) {
		start := p.Position
		for _, dest := range p.PossibleMoves(b) {
			if b.IsLegal(start, dest.Position, dest.Kind) {
				return true
			}
		}
	}
	return false
}

func (b *Board) IsCheckmate(c Color) bool {
	return b.InCheck(c) && !b.HasLegalMove(c)
}

func (b *Board) IsStalemate(c Color) bool {
	return !b.InCheck(c) && !b.HasLegalMove(c)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
