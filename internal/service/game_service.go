package service

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/fen"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNoStorage   = errors.New("storage is disabled")
)

type GameService struct {
	gameManager *GameManager
	store       *storage.Store
	timeControl model.TimeControl
}

// NewGameService wires the service. A nil store disables save and load.
func NewGameService(gameManager *GameManager, store *storage.Store, timeControl model.TimeControl) *GameService {
	return &GameService{
		gameManager: gameManager,
		store:       store,
		timeControl: timeControl,
	}
}

// CreateOptions picks the starting position of a new game. Board is the
// text grid format; at most one of Board and FEN may be set.
type CreateOptions struct {
	Board string
	FEN   string
}

func (gs *GameService) CreateGame(opts CreateOptions) (string, error) {
	gameID := uuid.New().String()
	tc := model.WithTimeControl(gs.timeControl)

	var game *model.Game
	switch {
	case opts.Board != "" && opts.FEN != "":
		return "", fmt.Errorf("%w: give either a board or a FEN, not both", model.ErrInvalidBoard)
	case opts.Board != "":
		b, err := model.FromString(opts.Board)
		if err != nil {
			return "", err
		}
		if game, err = model.NewGameFromBoard(gameID, b, model.White, tc); err != nil {
			return "", err
		}
	case opts.FEN != "":
		b, turn, err := fen.Parse(opts.FEN)
		if err != nil {
			return "", err
		}
		if game, err = model.NewGameFromBoard(gameID, b, turn, tc); err != nil {
			return "", err
		}
	default:
		game = model.NewGame(gameID, tc)
	}

	if _, err := gs.gameManager.AddGame(game); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	log.Infow("game created", "game_id", gameID)
	return gameID, nil
}

// StartGame begins play. A nil time control keeps the current one.
func (gs *GameService) StartGame(gameID string, t model.GameType, tc *model.TimeControl) (model.GameState, error) {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return s.update(func(g *model.Game) error {
		if tc != nil {
			g.SetTimeControl(*tc)
		}
		g.StartGame(t)
		log.Infow("game started", "game_id", gameID, "game_type", t, "time_control", g.TimeControl().Name)
		return nil
	})
}

// HandleMove plays req on the live board.
func (gs *GameService) HandleMove(gameID string, req model.MoveRequest) (model.Ply, model.GameState, error) {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return model.Ply{}, model.GameState{}, err
	}
	var ply model.Ply
	state, err := s.update(func(g *model.Game) error {
		var ok bool
		if ply, ok = g.Play(req); !ok {
			return fmt.Errorf("%w: %s-%s", ErrIllegalMove, req.From, req.To)
		}
		return nil
	})
	if err != nil {
		log.Debugw("move rejected", "game_id", gameID, "from", req.From, "to", req.To)
	}
	return ply, state, err
}

// Back steps the view back; at the first snapshot it is a no-op.
func (gs *GameService) Back(gameID string) (model.GameState, error) {
	return gs.navigate(gameID, (*model.Game).Back)
}

// Next steps the view forward; at the live snapshot it is a no-op.
func (gs *GameService) Next(gameID string) (model.GameState, error) {
	return gs.navigate(gameID, (*model.Game).Next)
}

func (gs *GameService) navigate(gameID string, step func(*model.Game) bool) (model.GameState, error) {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return s.update(func(g *model.Game) error {
		step(g)
		return nil
	})
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	var state model.GameState
	err := gs.withGame(gameID, func(g *model.Game) { state = g.State() })
	return state, err
}

// BoardText returns the viewed snapshot in the text grid format.
func (gs *GameService) BoardText(gameID string) (string, error) {
	var text string
	err := gs.withGame(gameID, func(g *model.Game) { text = g.ViewBoard().String() })
	return text, err
}

// FEN returns the viewed snapshot as FEN.
func (gs *GameService) FEN(gameID string) (string, error) {
	var out string
	err := gs.withGame(gameID, func(g *model.Game) {
		whiteMoves := 0
		for _, ply := range g.Plies()[:g.ViewIndex()] {
			if ply.Color == model.White {
				whiteMoves++
			}
		}
		turn := g.ViewTurn()
		out = fen.Encode(g.ViewBoard(), turn, fen.FullMove(whiteMoves, turn))
	})
	return out, err
}

// Hints lists the legal destinations of the piece on pos in the viewed
// snapshot.
func (gs *GameService) Hints(gameID string, pos model.Position) ([]model.Destination, error) {
	var hints []model.Destination
	err := gs.withGame(gameID, func(g *model.Game) { hints = g.Hints(pos) })
	return hints, err
}

func (gs *GameService) withGame(gameID string, fn func(g *model.Game)) error {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return err
	}
	s.read(fn)
	return nil
}

func (gs *GameService) DeleteGame(gameID string) error {
	if err := gs.gameManager.RemoveGame(gameID); err != nil {
		return err
	}
	log.Infow("game deleted", "game_id", gameID)
	return nil
}

// SaveGame persists the full game state under its id.
func (gs *GameService) SaveGame(gameID string) error {
	if gs.store == nil {
		return ErrNoStorage
	}
	state, err := gs.GetGameState(gameID)
	if err != nil {
		return err
	}
	if err := gs.store.Save(state); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	log.Infow("game saved", "game_id", gameID, "plies", len(state.Plies))
	return nil
}

// LoadGame restores a saved game, replacing the live one with the same id.
func (gs *GameService) LoadGame(gameID string) (model.GameState, error) {
	if gs.store == nil {
		return model.GameState{}, ErrNoStorage
	}
	saved, err := gs.store.Load(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	g, err := model.RestoreGame(saved)
	if err != nil {
		return model.GameState{}, fmt.Errorf("failed to restore game: %w", err)
	}
	log.Infow("game loaded", "game_id", gameID)
	return gs.gameManager.PutGame(g), nil
}

// DeleteSavedGame removes the saved copy of a game. A live game with the
// same id keeps running.
func (gs *GameService) DeleteSavedGame(gameID string) error {
	if gs.store == nil {
		return ErrNoStorage
	}
	if err := gs.store.Delete(gameID); err != nil {
		return fmt.Errorf("failed to delete saved game: %w", err)
	}
	log.Infow("saved game deleted", "game_id", gameID)
	return nil
}

func (gs *GameService) SavedGames() ([]storage.Summary, error) {
	if gs.store == nil {
		return nil, ErrNoStorage
	}
	return gs.store.List()
}

func (gs *GameService) RegisterConnection(gameID string, clientID string, conn Conn) error {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return err
	}
	log.Debugw("registering connection", "game_id", gameID, "client_id", clientID)
	s.register(clientID, conn)
	return nil
}

func (gs *GameService) UnregisterConnection(gameID string, clientID string, conn Conn) {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return
	}
	log.Debugw("unregistering connection", "game_id", gameID, "client_id", clientID)
	s.unregister(clientID, conn)
}

// SendError reports a rejected request to one connection only.
func (gs *GameService) SendError(gameID string, conn Conn, text string) {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return
	}
	if err := s.send(conn, ws.ErrorMessage(text)); err != nil {
		log.Warnw("failed to send error", "game_id", gameID, "error", err)
	}
}
