package model

import (
	"fmt"
	"time"
)

// BoardState is the transport and storage form of a Board. Unlike the text
// grid it keeps has-moved flags, captured pieces and the en-passant pawn.
type BoardState struct {
	Index     int       `json:"index"`
	Grid      string    `json:"grid"`
	Pieces    []Piece   `json:"pieces"`
	EnPassant *Position `json:"enPassant"`
}

func (b *Board) State() BoardState {
	s := BoardState{
		Index:  b.Index,
		Grid:   b.String(),
		Pieces: append([]Piece(nil), b.pieces...),
	}
	if ep := b.EnPassantPawn(); ep != nil {
		pos := ep.Position
		s.EnPassant = &pos
	}
	return s
}

// BoardFromState rebuilds a board from its state. The grid is ignored in
// favor of the piece list.
func BoardFromState(s BoardState) (*Board, error) {
	b := NewEmptyBoard()
	b.Index = s.Index
	for i, p := range s.Pieces {
		if _, err := ParsePieceType(string(p.Type)); err != nil {
			return nil, fmt.Errorf("%w: piece %d: %v", ErrInvalidBoard, i, err)
		}
		if p.Captured {
			p.Position = OffBoard
		} else {
			if !p.Position.Valid() {
				return nil, fmt.Errorf("%w: piece %d off the board", ErrInvalidBoard, i)
			}
			if b.PieceAt(p.Position.X, p.Position.Y) != nil {
				return nil, fmt.Errorf("%w: square %s occupied twice", ErrInvalidBoard, p.Position)
			}
		}
		b.pieces = append(b.pieces, p)
	}
	if s.EnPassant != nil {
		ep := b.PieceAt(s.EnPassant.X, s.EnPassant.Y)
		if ep == nil || ep.Type != Pawn {
			return nil, fmt.Errorf("%w: no pawn on en passant square %s", ErrInvalidBoard, *s.EnPassant)
		}
		b.SetEnPassant(ep)
	}
	return b, nil
}

type ClockState struct {
	White *time.Duration `json:"white"`
	Black *time.Duration `json:"black"`
}

// GameState is the full, serializable state of a Game.
type GameState struct {
	ID          string       `json:"id"`
	Type        GameType     `json:"gameType"`
	Status      Status       `json:"status"`
	Outcome     Outcome      `json:"outcome"`
	Winner      *Color       `json:"winner"`
	Turn        Color        `json:"turn"`
	Moves       int          `json:"moves"`
	Players     Players      `json:"players"`
	TimeControl TimeControl  `json:"timeControl"`
	Clocks      ClockState   `json:"clocks"`
	View        int          `json:"view"`
	StartTurn   Color        `json:"startTurn"`
	Start       BoardState   `json:"start"`
	History     []BoardState `json:"history"`
	Plies       []Ply        `json:"plies"`
	InCheck     bool         `json:"inCheck"`
	Checkmate   bool         `json:"checkmate"`
}

// ViewBoard returns the snapshot the state's view cursor points at.
func (s GameState) ViewBoard() BoardState {
	return s.History[s.View]
}

func (g *Game) State() GameState {
	s := GameState{
		ID:          g.ID,
		Type:        g.gameType,
		Status:      g.status,
		Outcome:     g.outcome,
		Winner:      g.winner,
		Turn:        g.turn,
		Moves:       g.moves,
		Players:     g.players,
		TimeControl: g.timeControl,
		View:        g.view,
		StartTurn:   g.startTurn,
		Start:       g.start.State(),
		Plies:       g.Plies(),
	}
	if left, ok := g.TimeLeft(White); ok {
		s.Clocks.White = &left
	}
	if left, ok := g.TimeLeft(Black); ok {
		s.Clocks.Black = &left
	}
	for _, b := range g.history {
		s.History = append(s.History, b.State())
	}
	view := g.ViewBoard()
	side := g.ViewTurn()
	s.InCheck = view.InCheck(side)
	s.Checkmate = s.InCheck && !view.HasLegalMove(side)
	return s
}

// RestoreGame rebuilds a game from a state produced by Game.State. Clocks
// resume with their saved time; the side to move's clock starts running if
// the game is in progress.
func RestoreGame(s GameState, opts ...Option) (*Game, error) {
	if len(s.History) == 0 || s.View < 0 || s.View >= len(s.History) {
		return nil, fmt.Errorf("%w: view %d outside history of %d", ErrInvalidState, s.View, len(s.History))
	}
	start, err := BoardFromState(s.Start)
	if err != nil {
		return nil, fmt.Errorf("start board: %w", err)
	}
	g, err := NewGameFromBoard(s.ID, start, s.StartTurn, opts...)
	if err != nil {
		return nil, err
	}
	g.history = g.history[:0]
	for i, bs := range s.History {
		b, err := BoardFromState(bs)
		if err != nil {
			return nil, fmt.Errorf("history %d: %w", i, err)
		}
		if _, ok := b.kingOf(White); !ok {
			return nil, fmt.Errorf("history %d: %w", i, ErrMissingKing)
		}
		if _, ok := b.kingOf(Black); !ok {
			return nil, fmt.Errorf("history %d: %w", i, ErrMissingKing)
		}
		b.Index = i
		g.history = append(g.history, b)
	}
	g.view = s.View
	g.turn = s.Turn
	g.moves = s.Moves
	g.plies = append([]Ply(nil), s.Plies...)
	g.gameType = s.Type
	g.players = s.Players
	g.status = s.Status
	g.outcome = s.Outcome
	g.winner = s.Winner
	g.timeControl = s.TimeControl
	g.clocks = [2]*Clock{restoreClock(s.Clocks.White, g.now), restoreClock(s.Clocks.Black, g.now)}
	if g.status == StatusInProgress {
		g.clocks[g.turn].Start()
	}
	return g, nil
}

func restoreClock(left *time.Duration, now func() time.Time) *Clock {
	if left == nil {
		return NewClock(0, now)
	}
	c := NewClock(*left, now)
	// A clock saved at or below zero must still read as expired.
	c.unlimited = false
	return c
}
