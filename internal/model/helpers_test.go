package model

import "testing"

func sq(t *testing.T, name string) Position {
	t.Helper()
	pos, err := ParsePosition(name)
	if err != nil {
		t.Fatalf("bad square in test: %v", err)
	}
	return pos
}

// setup builds a board from square -> token pairs such as "e1": "wK".
func setup(t *testing.T, pieces map[string]string) *Board {
	t.Helper()
	b := NewEmptyBoard()
	for name, token := range pieces {
		pos := sq(t, name)
		c, pt, ok := parseToken(token)
		if !ok {
			t.Fatalf("bad token %q in test", token)
		}
		p := Piece{Type: pt, Color: c, Position: pos}
		p.HasMoved = !onHomeSquare(&p)
		if !b.Place(p) {
			t.Fatalf("cannot place %s on %s", token, name)
		}
	}
	return b
}

func pieceOn(t *testing.T, b *Board, name string) *Piece {
	t.Helper()
	pos := sq(t, name)
	return b.PieceAt(pos.X, pos.Y)
}

func destNames(dests []Destination) map[string]MoveKind {
	names := make(map[string]MoveKind, len(dests))
	for _, d := range dests {
		names[d.Position.String()] = d.Kind
	}
	return names
}

func play(t *testing.T, g *Game, from, to string) Ply {
	t.Helper()
	ply, ok := g.Play(MoveRequest{From: sq(t, from), To: sq(t, to)})
	if !ok {
		t.Fatalf("move %s-%s rejected on board:\n%s", from, to, g.Board())
	}
	return ply
}

func layout(b *Board) map[string]string {
	m := make(map[string]string)
	for _, p := range b.Pieces() {
		if !p.Captured {
			m[p.Position.String()] = p.Name()
		}
	}
	return m
}
