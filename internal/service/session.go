package service

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// The connections watching a specific game
type GameConnections struct {
	connections map[string]Conn // clientID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Session pairs one game with its observers. The engine is not safe for
// concurrent use, so every game access goes through mu. Lock order is mu,
// then connections.mu, then writeMu.
type Session struct {
	mu      sync.Mutex
	game    *model.Game
	pending []ws.Message
	dirty   bool

	// writeMu serializes writes; a websocket allows one writer at a time.
	writeMu     sync.Mutex
	connections *GameConnections
}

func newSession(g *model.Game) *Session {
	s := &Session{connections: NewGameConnections()}
	s.attach(g)
	return s
}

func (s *Session) attach(g *model.Game) {
	s.game = g
	g.Subscribe(s.onEvent)
}

// onEvent runs inside a game call, with mu held.
func (s *Session) onEvent(e model.Event) {
	s.dirty = true
	if e.Type != model.EventMoveCommitted || e.Ply == nil {
		return
	}
	msg, err := ws.NewMessage(ws.MessageTypeMoveCommitted, ws.CommittedFrom(e.Index, *e.Ply))
	if err != nil {
		log.Errorw("encode move event", "game_id", s.game.ID, "error", err)
		return
	}
	s.pending = append(s.pending, msg)
}

// update runs fn against the game and, when the game emitted anything,
// pushes the queued events plus the new state to every connection. The
// broadcast happens under mu so watchers see states in commit order.
func (s *Session) update(fn func(g *model.Game) error) (model.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.game)
	state := s.game.State()
	msgs, dirty := s.pending, s.dirty
	s.pending, s.dirty = nil, false

	if dirty {
		s.broadcast(append(msgs, stateMessage(state))...)
	}
	return state, err
}

// read runs fn against the game without notifying anyone.
func (s *Session) read(fn func(g *model.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// replace swaps in g, e.g. after loading a save, and tells the watchers.
func (s *Session) replace(g *model.Game) model.GameState {
	state, _ := s.update(func(*model.Game) error {
		s.attach(g)
		s.dirty = true
		return nil
	})
	return state
}

func stateMessage(state model.GameState) ws.Message {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		return ws.ErrorMessage("failed to encode game state")
	}
	return msg
}

func (s *Session) register(clientID string, conn Conn) {
	s.connections.mu.Lock()
	if _, exists := s.connections.connections[clientID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		s.connections.mu.Unlock()
		log.Warnw("rejecting duplicate connection", "client_id", clientID)
		s.send(conn, ws.ErrorMessage("connection already exists"))
		conn.Close()
		return
	}
	s.connections.connections[clientID] = conn
	s.connections.mu.Unlock()

	// Hold mu so no broadcast can overtake the initial state.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send(conn, stateMessage(s.game.State()))
}

// unregister drops conn unless the client has since reconnected.
func (s *Session) unregister(clientID string, conn Conn) {
	s.connections.mu.Lock()
	defer s.connections.mu.Unlock()

	if current, exists := s.connections.connections[clientID]; exists && current == conn {
		delete(s.connections.connections, clientID)
	}
}

func (s *Session) closeAll() {
	s.connections.mu.Lock()
	conns := s.connections.connections
	s.connections.connections = make(map[string]Conn)
	s.connections.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

func (s *Session) send(conn Conn, msgs ...ws.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, msg := range msgs {
		if err := conn.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) broadcast(msgs ...ws.Message) {
	// Make a copy of the connections we need to broadcast to
	s.connections.mu.RLock()
	active := make(map[string]Conn, len(s.connections.connections))
	for clientID, conn := range s.connections.connections {
		active[clientID] = conn
	}
	s.connections.mu.RUnlock()

	// Now broadcast to each connection without holding the map lock
	for clientID, conn := range active {
		if err := s.send(conn, msgs...); err != nil {
			log.Warnw("dropping connection after failed write", "client_id", clientID, "error", err)
			s.unregister(clientID, conn)
		}
	}
}
