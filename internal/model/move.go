package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MoveKind classifies a move for the caller. MoveIllegal marks a rejected
// request.
type MoveKind int

const (
	MoveIllegal    MoveKind = -1
	MoveNormal     MoveKind = 0
	MoveDoubleStep MoveKind = 1
	MoveCastling   MoveKind = 2
	MoveEnPassant  MoveKind = 3
)

func (k MoveKind) String() string {
	switch k {
	case MoveNormal:
		return "normal"
	case MoveDoubleStep:
		return "double-step"
	case MoveCastling:
		return "castling"
	case MoveEnPassant:
		return "en-passant"
	}
	return "illegal"
}

func (k MoveKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *MoveKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, kind := range []MoveKind{MoveIllegal, MoveNormal, MoveDoubleStep, MoveCastling, MoveEnPassant} {
		if kind.String() == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("invalid move kind %q", s)
}

// Destination is a square a piece can reach, tagged with the kind of move
// that gets it there.
type Destination struct {
	Position
	Kind MoveKind `json:"kind"`
}

type MoveRequest struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// Ply records one committed move.
type Ply struct {
	Piece     PieceType `json:"piece"`
	Color     Color     `json:"color"`
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Kind      MoveKind  `json:"kind"`
	Captured  PieceType `json:"captured,omitempty"`
	Promotion PieceType `json:"promotion,omitempty"`
	Check     bool      `json:"check"`
	Checkmate bool      `json:"checkmate"`
}

func (p Ply) IsCapture() bool {
	return p.Captured != ""
}

// String renders the ply in coordinate notation, e.g. "e2-e4", "Nf3xe5+",
// "O-O" or "e7-e8=Q#".
func (p Ply) String() string {
	var sb strings.Builder
	switch {
	case p.Kind == MoveCastling && p.To.X > p.From.X:
		sb.WriteString("O-O")
	case p.Kind == MoveCastling:
		sb.WriteString("O-O-O")
	default:
		sb.WriteString(p.Piece.Token())
		sb.WriteString(p.From.String())
		if p.IsCapture() {
			sb.WriteByte('x')
		} else {
			sb.WriteByte('-')
		}
		sb.WriteString(p.To.String())
		if p.Promotion != "" {
			sb.WriteByte('=')
			sb.WriteString(p.Promotion.Token())
		}
	}
	switch {
	case p.Checkmate:
		sb.WriteByte('#')
	case p.Check:
		sb.WriteByte('+')
	}
	return sb.String()
}
