package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBoardStateRoundTrip(t *testing.T) {
	g := startedGame(t)
	for _, mv := range [][2]string{{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}, {"c7", "c5"}} {
		play(t, g, mv[0], mv[1])
	}
	b := g.Board()

	restored, err := BoardFromState(b.State())
	if err != nil {
		t.Fatalf("BoardFromState: %v", err)
	}
	if diff := cmp.Diff(b.State(), restored.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if ep := restored.EnPassantPawn(); ep == nil || ep.Position.String() != "c5" {
		t.Errorf("expected en passant pawn on c5, got %v", ep)
	}
	if got := len(restored.Captured(Black)); got != 1 {
		t.Errorf("expected the captured pawn to survive, got %d", got)
	}
	if !restored.IsLegal(sq(t, "d5"), sq(t, "c6"), MoveEnPassant) {
		t.Error("expected d5xc6 en passant to stay available")
	}
}

func TestBoardFromStateErrors(t *testing.T) {
	e4 := Position{X: 4, Y: 3}
	tests := []struct {
		name  string
		state BoardState
	}{
		{
			name: "unknown piece",
			state: BoardState{Pieces: []Piece{
				{Type: "dragon", Color: White, Position: e4},
			}},
		},
		{
			name: "off board",
			state: BoardState{Pieces: []Piece{
				{Type: Rook, Color: White, Position: Position{X: 9, Y: 0}},
			}},
		},
		{
			name: "square taken twice",
			state: BoardState{Pieces: []Piece{
				{Type: Rook, Color: White, Position: e4},
				{Type: Knight, Color: Black, Position: e4},
			}},
		},
		{
			name: "en passant without pawn",
			state: BoardState{
				Pieces:    []Piece{{Type: Rook, Color: White, Position: e4}},
				EnPassant: &e4,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BoardFromState(tt.state); !errors.Is(err, ErrInvalidBoard) {
				t.Errorf("expected ErrInvalidBoard, got %v", err)
			}
		})
	}
}

func TestGameStateJSONRoundTrip(t *testing.T) {
	g := startedGame(t)
	for _, mv := range [][2]string{{"e2", "e4"}, {"e7", "e5"}, {"d1", "h5"}, {"b8", "c6"}, {"h5", "f7"}} {
		play(t, g, mv[0], mv[1])
	}
	g.Back()
	g.Next()

	state := g.State()
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded GameState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(state, decoded); diff != "" {
		t.Errorf("state mismatch after JSON (-want +got):\n%s", diff)
	}

	restored, err := RestoreGame(decoded)
	if err != nil {
		t.Fatalf("RestoreGame: %v", err)
	}
	if diff := cmp.Diff(state, restored.State()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
	if !state.InCheck || state.Checkmate {
		t.Errorf("expected the viewed position to be check without mate, got %+v", state)
	}

	// The restored game plays on from the live position.
	if !restored.Move(sq(t, "e8"), sq(t, "f7")) {
		t.Error("expected Kxf7 to be legal in the restored game")
	}
}

func TestGameStateView(t *testing.T) {
	g := startedGame(t)
	play(t, g, "e2", "e4")
	g.Back()
	s := g.State()
	if s.View != 0 || s.ViewBoard().Grid != startGrid {
		t.Errorf("expected the start grid in view, got %d", s.View)
	}
	if s.Turn != Black {
		t.Errorf("expected black to move in the live position, got %s", s.Turn)
	}
}

func TestRestoreGameErrors(t *testing.T) {
	valid := startedGame(t).State()

	tests := []struct {
		name   string
		mutate func(*GameState)
		want   error
	}{
		{"empty history", func(s *GameState) { s.History = nil }, ErrInvalidState},
		{"view past end", func(s *GameState) { s.View = 5 }, ErrInvalidState},
		{"negative view", func(s *GameState) { s.View = -1 }, ErrInvalidState},
		{"start without kings", func(s *GameState) { s.Start.Pieces = s.Start.Pieces[:16] }, ErrMissingKing},
		{"history without king", func(s *GameState) {
			s.History = []BoardState{{Pieces: []Piece{{Type: King, Color: White, Position: Position{X: 4, Y: 0}}}}}
		}, ErrMissingKing},
		{"corrupt history board", func(s *GameState) {
			s.History = []BoardState{{Pieces: []Piece{{Type: "x", Color: White}}}}
		}, ErrInvalidBoard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.History = append([]BoardState(nil), valid.History...)
			s.Start.Pieces = append([]Piece(nil), valid.Start.Pieces...)
			tt.mutate(&s)
			if _, err := RestoreGame(s); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
