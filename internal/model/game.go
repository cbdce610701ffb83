package model

import (
	"math/rand"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusEnded      Status = "ended"
)

type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeCheckmate Outcome = "checkmate"
	OutcomeStalemate Outcome = "stalemate"
	OutcomeTimeout   Outcome = "timeout"
)

type EventType string

const (
	EventGameStarted   EventType = "gameStarted"
	EventMoveCommitted EventType = "moveCommitted"
	EventGameEnded     EventType = "gameEnded"
	EventViewChanged   EventType = "viewChanged"
)

// Event tells the shell that something happened; the engine itself plays
// no sounds and draws nothing.
type Event struct {
	Type    EventType `json:"type"`
	Index   int       `json:"index"`
	Ply     *Ply      `json:"ply,omitempty"`
	Outcome Outcome   `json:"outcome,omitempty"`
	Winner  *Color    `json:"winner,omitempty"`
}

type Listener func(Event)

// Game keeps the ordered history of board snapshots for one game. The last
// snapshot is the live position; the view cursor may point anywhere in the
// history without affecting it.
type Game struct {
	ID string

	start     *Board
	startTurn Color

	history []*Board
	view    int
	turn    Color
	moves   int
	plies   []Ply

	gameType GameType
	players  Players
	status   Status
	outcome  Outcome
	winner   *Color

	timeControl TimeControl
	clocks      [2]*Clock
	now         func() time.Time
	rng         *rand.Rand

	listeners []Listener
}

type Option func(*Game)

func WithTimeControl(tc TimeControl) Option {
	return func(g *Game) { g.timeControl = tc }
}

// WithNow replaces the wall clock used by the game clocks.
func WithNow(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithRand sets the random source used to assign sides against the computer.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// NewGame returns a game in the standard starting position, not yet
// started and in setup mode.
func NewGame(id string, opts ...Option) *Game {
	g, _ := newGame(id, NewBoard(), White, opts...)
	return g
}

// NewGameFromBoard starts a game from an arbitrary position with turn to
// move. The board must hold exactly one king per side.
func NewGameFromBoard(id string, b *Board, turn Color, opts ...Option) (*Game, error) {
	for _, c := range []Color{White, Black} {
		kings := 0
		for _, p := range b.PiecesByType(King) {
			if p.Color == c {
				kings++
			}
		}
		if kings != 1 {
			return nil, ErrMissingKing
		}
	}
	return newGame(id, b, turn, opts...)
}

func newGame(id string, b *Board, turn Color, opts ...Option) (*Game, error) {
	g := &Game{
		ID:          id,
		start:       b.Clone(),
		startTurn:   turn,
		gameType:    GameUndefined,
		players:     Players{White: Human, Black: Human},
		status:      StatusNotStarted,
		timeControl: Blitz,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g.reset()
	return g, nil
}

func (g *Game) reset() {
	live := g.start.Clone()
	live.Index = 0
	g.history = []*Board{live}
	g.view = 0
	g.turn = g.startTurn
	g.moves = 0
	g.plies = nil
	g.outcome = OutcomeNone
	g.winner = nil
	g.clocks = [2]*Clock{
		NewClock(g.timeControl.Base, g.now),
		NewClock(g.timeControl.Base, g.now),
	}
}

// Subscribe registers l to receive every event the game emits.
func (g *Game) Subscribe(l Listener) {
	g.listeners = append(g.listeners, l)
}

func (g *Game) emit(e Event) {
	for _, l := range g.listeners {
		l(e)
	}
}

// StartGame resets the game to its starting position and begins play. A
// game against the computer gives the human a random color.
func (g *Game) StartGame(t GameType) {
	g.gameType = t
	g.status = StatusInProgress
	g.reset()

	g.players = Players{White: Human, Black: Human}
	if t == GameComputer {
		if g.rng.Intn(2) == 0 {
			g.players.Black = Computer
		} else {
			g.players.White = Computer
		}
	}
	g.clocks[g.turn].Start()
	g.emit(Event{Type: EventGameStarted, Index: 0})
}

// EndGame stops play. A nil winner means a draw. The game drops back into
// setup mode.
func (g *Game) EndGame(winner *Color, outcome Outcome) {
	g.status = StatusEnded
	g.outcome = outcome
	g.winner = winner
	g.gameType = GameUndefined
	for _, c := range g.clocks {
		c.Stop()
	}
	g.emit(Event{Type: EventGameEnded, Index: len(g.history) - 1, Outcome: outcome, Winner: winner})
}

// Move plays start to dest, promoting to a queen where needed.
func (g *Game) Move(start, dest Position) bool {
	_, ok := g.Play(MoveRequest{From: start, To: dest})
	return ok
}

// Classify returns the kind of move req would be on the live board, or
// MoveIllegal. In setup mode any relocation onto an empty square is normal.
func (g *Game) Classify(req MoveRequest) MoveKind {
	live := g.Board()
	mover := live.PieceAt(req.From.X, req.From.Y)
	if mover == nil || !req.To.Valid() {
		return MoveIllegal
	}
	if g.gameType == GameUndefined {
		if live.PieceAt(req.To.X, req.To.Y) != nil {
			return MoveIllegal
		}
		return MoveNormal
	}
	if mover.Color != g.turn {
		return MoveIllegal
	}
	switch req.Promotion {
	case "", Queen, Rook, Bishop, Knight:
	default:
		return MoveIllegal
	}
	for _, dest := range mover.PossibleMoves(live) {
		if dest.Position == req.To {
			if live.IsLegal(req.From, req.To, dest.Kind) {
				return dest.Kind
			}
			return MoveIllegal
		}
	}
	return MoveIllegal
}

// Play validates and commits a move. On rejection the returned ply has kind
// MoveIllegal and nothing changes, except that a player whose time ran out
// loses the game.
func (g *Game) Play(req MoveRequest) (Ply, bool) {
	rejected := Ply{From: req.From, To: req.To, Kind: MoveIllegal}

	if g.status == StatusInProgress && g.clocks[g.turn].Expired() {
		winner := g.turn.Other()
		g.EndGame(&winner, OutcomeTimeout)
		return rejected, false
	}

	kind := g.Classify(req)
	if kind == MoveIllegal {
		return rejected, false
	}

	live := g.Board()
	next := live.Clone()
	next.Index = len(g.history)

	mover := next.PieceAt(req.From.X, req.From.Y)
	ply := Ply{Piece: mover.Type, Color: mover.Color, From: req.From, To: req.To, Kind: kind}
	if target := next.PieceAt(req.To.X, req.To.Y); target != nil {
		ply.Captured = target.Type
	}

	switch kind {
	case MoveNormal:
		next.ApplyMove(req.From, req.To)
		next.SetEnPassant(nil)
	case MoveDoubleStep:
		next.ApplyMove(req.From, req.To)
		next.SetEnPassant(next.PieceAt(req.To.X, req.To.Y))
	case MoveCastling:
		step := 1
		rookFile := FileCount - 1
		if req.To.X < req.From.X {
			step, rookFile = -1, 0
		}
		next.ApplyMove(req.From, req.To)
		next.ApplyMove(Position{X: rookFile, Y: req.From.Y}, Position{X: req.From.X + step, Y: req.From.Y})
		next.SetEnPassant(nil)
	case MoveEnPassant:
		victim := next.EnPassantPawn()
		next.ApplyMove(req.From, req.To)
		if victim != nil {
			ply.Captured = victim.Type
			next.Capture(victim)
		}
		next.SetEnPassant(nil)
	}

	if mover.Type == Pawn && req.To.Y == homeRank(mover.Color.Other()) && g.gameType != GameUndefined {
		promotion := req.Promotion
		if promotion == "" {
			promotion = Queen
		}
		next.Promote(req.To, promotion)
		ply.Promotion = promotion
	}

	g.history = append(g.history, next)
	g.view = next.Index
	g.plies = append(g.plies, ply)

	moverColor := g.turn
	g.turn = g.turn.Other()
	if ply.Color == White {
		g.moves++
	}

	inProgress := g.status == StatusInProgress
	if inProgress {
		g.clocks[moverColor].Stop()
		g.clocks[moverColor].AddTime(g.timeControl.Increment)
		g.clocks[g.turn].Start()
	}

	ply.Check = next.InCheck(g.turn)
	var outcome Outcome
	if inProgress && !next.HasLegalMove(g.turn) {
		outcome = OutcomeStalemate
		if ply.Check {
			outcome = OutcomeCheckmate
			ply.Checkmate = true
		}
	}
	g.plies[len(g.plies)-1] = ply

	g.emit(Event{Type: EventMoveCommitted, Index: next.Index, Ply: &ply})
	switch outcome {
	case OutcomeCheckmate:
		g.EndGame(&moverColor, outcome)
	case OutcomeStalemate:
		g.EndGame(nil, outcome)
	}
	return ply, true
}

// Next moves the view one snapshot forward. It never changes the history.
func (g *Game) Next() bool {
	if g.view >= len(g.history)-1 {
		return false
	}
	g.view++
	g.emit(Event{Type: EventViewChanged, Index: g.view})
	return true
}

// Back moves the view one snapshot backward.
func (g *Game) Back() bool {
	if g.view <= 0 {
		return false
	}
	g.view--
	g.emit(Event{Type: EventViewChanged, Index: g.view})
	return true
}

// Board returns the live board. Callers must not modify it.
func (g *Game) Board() *Board {
	return g.history[len(g.history)-1]
}

// ViewBoard returns the snapshot under the view cursor.
func (g *Game) ViewBoard() *Board {
	return g.history[g.view]
}

// History returns the snapshots in order. The slice is a copy; the boards
// are shared and must not be modified.
func (g *Game) History() []*Board {
	return append([]*Board(nil), g.history...)
}

func (g *Game) ViewIndex() int { return g.view }
func (g *Game) Turn() Color { return g.turn }
func (g *Game) MoveCount() int { return g.moves }
func (g *Game) Type() GameType { return g.gameType }
func (g *Game) Players() Players { return g.players }
func (g *Game) Status() Status { return g.status }
func (g *Game) Outcome() Outcome { return g.outcome }
func (g *Game) Winner() *Color { return g.winner }
func (g *Game) TimeControl() TimeControl { return g.timeControl }

func (g *Game) Plies() []Ply {
	return append([]Ply(nil), g.plies...)
}

// ViewTurn is the side to move in the viewed snapshot.
func (g *Game) ViewTurn() Color {
	if g.view%2 == 0 {
		return g.startTurn
	}
	return g.startTurn.Other()
}

// SetTimeControl changes the time control. It has no effect while a game
// is in progress.
func (g *Game) SetTimeControl(tc TimeControl) {
	if g.status == StatusInProgress {
		return
	}
	g.timeControl = tc
	g.clocks = [2]*Clock{NewClock(tc.Base, g.now), NewClock(tc.Base, g.now)}
}

// TimeLeft reports c's remaining time, false when there is no clock.
func (g *Game) TimeLeft(c Color) (time.Duration, bool) {
	return g.clocks[c].TimeLeft()
}

// Flag ends the game on time if the side to move has run out. It reports
// whether it did.
func (g *Game) Flag() bool {
	if g.status != StatusInProgress || !g.clocks[g.turn].Expired() {
		return false
	}
	winner := g.turn.Other()
	g.EndGame(&winner, OutcomeTimeout)
	return true
}

// Hints returns the legal destinations of the piece on pos in the viewed
// snapshot.
func (g *Game) Hints(pos Position) []Destination {
	b := g.ViewBoard()
	p := b.PieceAt(pos.X, pos.Y)
	if p == nil {
		return nil
	}
	return b.LegalMoves(p)
}
