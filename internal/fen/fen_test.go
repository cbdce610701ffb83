package fen

import (
	"errors"
	"testing"

	"github.com/corentings/chess/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-backend/internal/model"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func TestParseStart(t *testing.T) {
	b, turn, err := Parse(Start)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if turn != model.White {
		t.Errorf("expected white to move, got %s", turn)
	}
	if diff := cmp.Diff(model.NewBoard().String(), b.String()); diff != "" {
		t.Errorf("board mismatch (-want +got):\n%s", diff)
	}
	for _, p := range b.Pieces() {
		if p.HasMoved {
			t.Errorf("%s on %s should be unmoved", p.Name(), p.Position)
		}
	}
}

func TestEncodeStart(t *testing.T) {
	if got := Encode(model.NewBoard(), model.White, 1); got != Start {
		t.Errorf("expected %q, got %q", Start, got)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		fullMove int
	}{
		{"start", Start, 1},
		{"kiwipete", kiwipete, 1},
		{"partial castling rights", "r3k2r/8/8/8/8/8/8/R3K2R w Kq - 0 1", 1},
		{"no castling rights", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 1},
		{"black to move with en passant", "rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2", 2},
		{"white to move with en passant", "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, turn, err := Parse(tt.fen)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := Encode(b, turn, tt.fullMove); got != tt.fen {
				t.Errorf("expected %q, got %q", tt.fen, got)
			}
		})
	}
}

func TestParseCastlingRights(t *testing.T) {
	b, _, err := Parse("r3k2r/8/8/8/8/8/8/R3K2R w Kq - 0 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	king := b.KingOf(model.White)
	if !king.CanCastle(b, model.KingSide) || king.CanCastle(b, model.QueenSide) {
		t.Error("expected white to castle kingside only")
	}
	king = b.KingOf(model.Black)
	if king.CanCastle(b, model.KingSide) || !king.CanCastle(b, model.QueenSide) {
		t.Error("expected black to castle queenside only")
	}
}

func TestParseEnPassant(t *testing.T) {
	b, turn, err := Parse("rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if turn != model.Black {
		t.Errorf("expected black to move, got %s", turn)
	}
	ep := b.EnPassantPawn()
	if ep == nil || ep.Position.String() != "d4" || ep.Color != model.White {
		t.Fatalf("expected the white d4 pawn to be en passant, got %v", ep)
	}
	e4 := b.PieceAt(4, 3)
	dests := map[string]model.MoveKind{}
	for _, d := range b.LegalMoves(e4) {
		dests[d.Position.String()] = d.Kind
	}
	if dests["d3"] != model.MoveEnPassant {
		t.Errorf("expected exd3 en passant, got %v", dests)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"garbage", "not a fen"},
		{"short rank", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad turn", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"en passant without pawn", "4k3/8/8/8/8/8/8/4K3 w - e6 0 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Parse(tt.fen); !errors.Is(err, model.ErrInvalidBoard) {
				t.Errorf("expected ErrInvalidBoard, got %v", err)
			}
		})
	}
}

func TestEncodeGameProgress(t *testing.T) {
	g := model.NewGame("fen", model.WithTimeControl(model.Unlimited))
	g.StartGame(model.GameLocal)
	g.Move(model.Position{X: 4, Y: 1}, model.Position{X: 4, Y: 3})

	got := Encode(g.Board(), g.Turn(), FullMove(g.MoveCount(), g.Turn()))
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	g.Move(model.Position{X: 4, Y: 6}, model.Position{X: 4, Y: 4})
	g.Move(model.Position{X: 4, Y: 0}, model.Position{X: 4, Y: 1})
	got = Encode(g.Board(), g.Turn(), FullMove(g.MoveCount(), g.Turn()))
	want = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPPKPPP/RNBQ1BNR b kq - 0 2"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// The engine must agree with an independent move generator on the number
// of legal moves. Positions with pending promotions are left out: the
// engine counts one destination where the generator counts four moves.
func TestLegalMoveCountsMatchGenerator(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		{"start", Start, 20},
		{"kiwipete", kiwipete, 48},
		{"rook endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 14},
		{"black en passant", "rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2", -1},
		{"white en passant", "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", -1},
		{"castling out of reach", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", 26},
		{"castling through check", "4k3/8/8/8/8/8/5r2/R3K2R w KQ - 0 1", -1},
		{"in check", "4k3/8/8/8/8/8/8/R3K2r w Q - 0 1", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, turn, err := Parse(tt.fen)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got := 0
			for _, p := range b.PiecesByColor(turn) {
				got += len(b.LegalMoves(p))
			}

			opt, err := chess.FEN(tt.fen)
			if err != nil {
				t.Fatalf("chess.FEN: %v", err)
			}
			want := len(chess.NewGame(opt).ValidMoves())
			if got != want {
				t.Errorf("engine found %d legal moves, generator %d", got, want)
			}
			if tt.want >= 0 && got != tt.want {
				t.Errorf("expected %d legal moves, got %d", tt.want, got)
			}
		})
	}
}
