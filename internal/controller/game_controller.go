package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

var errBadRequest = errors.New("bad request")

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Register mounts the game routes on r.
func (gc *GameController) Register(r fiber.Router) {
	r.Post("/create", gc.CreateGame)
	r.Get("/saved", gc.SavedGames)
	r.Delete("/saved/:gameId", gc.DeleteSavedGame)
	r.Get("/:gameId", gc.GetGameState)
	r.Delete("/:gameId", gc.DeleteGame)
	r.Post("/:gameId/start", gc.StartGame)
	r.Post("/:gameId/move", gc.MakeMove)
	r.Post("/:gameId/back", gc.Back)
	r.Post("/:gameId/next", gc.Next)
	r.Get("/:gameId/board", gc.GetBoard)
	r.Get("/:gameId/fen", gc.GetFEN)
	r.Get("/:gameId/moves/:square", gc.GetHints)
	r.Post("/:gameId/save", gc.SaveGame)
	r.Post("/:gameId/load", gc.LoadGame)
}

type createRequest struct {
	Board string `json:"board"`
	FEN   string `json:"fen"`
}

type startRequest struct {
	GameType    string `json:"gameType"`
	TimeControl string `json:"timeControl"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	gameID, err := gc.gameService.CreateGame(service.CreateOptions{Board: req.Board, FEN: req.FEN})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) StartGame(c *fiber.Ctx) error {
	var req startRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	gameType := model.GameLocal
	if req.GameType != "" {
		t, err := model.ParseGameType(req.GameType)
		if err != nil || t == model.GameUndefined {
			return respondError(c, fmt.Errorf("%w: game type %q", errBadRequest, req.GameType))
		}
		gameType = t
	}
	var tc *model.TimeControl
	if req.TimeControl != "" {
		parsed, err := model.ParseTimeControl(req.TimeControl)
		if err != nil {
			return respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		}
		tc = &parsed
	}

	state, err := gc.gameService.StartGame(c.Params("gameId"), gameType, tc)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var payload ws.MovePayload
	if err := parseBody(c, &payload); err != nil {
		return respondError(c, err)
	}
	req, err := moveRequest(payload)
	if err != nil {
		return respondError(c, err)
	}

	ply, state, err := gc.gameService.HandleMove(c.Params("gameId"), req)
	if errors.Is(err, service.ErrIllegalMove) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"kind":  model.MoveIllegal,
			"state": state,
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"kind":     ply.Kind,
		"notation": ply.String(),
		"state":    state,
	})
}

func (gc *GameController) Back(c *fiber.Ctx) error {
	state, err := gc.gameService.Back(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Next(c *fiber.Ctx) error {
	state, err := gc.gameService.Next(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetBoard(c *fiber.Ctx) error {
	text, err := gc.gameService.BoardText(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.SendString(text)
}

func (gc *GameController) GetFEN(c *fiber.Ctx) error {
	fen, err := gc.gameService.FEN(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"fen": fen})
}

func (gc *GameController) GetHints(c *fiber.Ctx) error {
	pos, err := model.ParsePosition(c.Params("square"))
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}
	hints, err := gc.gameService.Hints(c.Params("gameId"), pos)
	if err != nil {
		return respondError(c, err)
	}
	if hints == nil {
		hints = []model.Destination{}
	}
	return c.JSON(fiber.Map{
		"square": pos.String(),
		"moves":  hints,
	})
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) SaveGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if err := gc.gameService.SaveGame(gameID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game saved",
		"game_id": gameID,
	})
}

func (gc *GameController) LoadGame(c *fiber.Ctx) error {
	state, err := gc.gameService.LoadGame(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) SavedGames(c *fiber.Ctx) error {
	games, err := gc.gameService.SavedGames()
	if err != nil {
		return respondError(c, err)
	}
	if games == nil {
		games = []storage.Summary{}
	}
	return c.JSON(fiber.Map{"games": games})
}

func (gc *GameController) DeleteSavedGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteSavedGame(c.Params("gameId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseBody decodes a JSON body into out. An empty body leaves out as is.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// moveRequest converts square names into an engine move request.
func moveRequest(p ws.MovePayload) (model.MoveRequest, error) {
	from, err := model.ParsePosition(p.From)
	if err != nil {
		return model.MoveRequest{}, fmt.Errorf("%w: from: %v", errBadRequest, err)
	}
	to, err := model.ParsePosition(p.To)
	if err != nil {
		return model.MoveRequest{}, fmt.Errorf("%w: to: %v", errBadRequest, err)
	}
	req := model.MoveRequest{From: from, To: to}
	if p.Promotion != "" {
		if req.Promotion, err = model.ParsePieceType(p.Promotion); err != nil {
			return model.MoveRequest{}, fmt.Errorf("%w: promotion: %v", errBadRequest, err)
		}
	}
	return req, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidBoard),
		errors.Is(err, model.ErrMissingKing),
		errors.Is(err, model.ErrInvalidState):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrIllegalMove), errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrNoStorage):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorw("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
