// service/game_manager.go
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games map[string]*Session
	mu    sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games: make(map[string]*Session),
	}
}

// AddGame registers g under its id.
func (gm *GameManager) AddGame(g *model.Game) (*Session, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[g.ID]; exists {
		return nil, ErrGameExists
	}
	s := newSession(g)
	gm.games[g.ID] = s
	return s, nil
}

// PutGame registers g, replacing the game of an existing session in place
// so that connected clients stay attached.
func (gm *GameManager) PutGame(g *model.Game) model.GameState {
	gm.mu.Lock()
	s, exists := gm.games[g.ID]
	if !exists {
		s = newSession(g)
		gm.games[g.ID] = s
	}
	gm.mu.Unlock()

	if exists {
		return s.replace(g)
	}
	var state model.GameState
	s.read(func(g *model.Game) { state = g.State() })
	return state
}

func (gm *GameManager) GetSession(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// RemoveGame forgets the game and closes its connections.
func (gm *GameManager) RemoveGame(gameID string) error {
	gm.mu.Lock()
	s, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if !exists {
		return ErrGameNotFound
	}
	s.closeAll()
	return nil
}

func (gm *GameManager) sessions() []*Session {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	sessions := make([]*Session, 0, len(gm.games))
	for _, s := range gm.games {
		sessions = append(sessions, s)
	}
	return sessions
}

// WatchClocks flags games whose side to move ran out of time, every
// interval until ctx is done. A flag is otherwise only noticed on the next
// move attempt.
func (gm *GameManager) WatchClocks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.flagExpired()
		}
	}
}

func (gm *GameManager) flagExpired() {
	for _, s := range gm.sessions() {
		s.update(func(g *model.Game) error {
			if g.Flag() {
				log.Infow("game lost on time", "game_id", g.ID, "winner", *g.Winner())
			}
			return nil
		})
	}
}
