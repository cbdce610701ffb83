package controller

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	clientID, _ := c.Locals(middleware.ClientIDKey).(string)

	// Register this connection with the game
	if err := wsc.gameService.RegisterConnection(gameID, clientID, c); err != nil {
		log.Warnw("failed to register connection", "game_id", gameID, "client_id", clientID, "error", err)
		c.WriteJSON(ws.ErrorMessage(err.Error()))
		c.Close()
		return
	}
	// Clean up when connection closes
	defer wsc.gameService.UnregisterConnection(gameID, clientID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugw("websocket closed", "game_id", gameID, "client_id", clientID, "error", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.gameService.SendError(gameID, c, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, msg); err != nil {
			log.Debugw("websocket request rejected", "game_id", gameID, "type", msg.Type, "error", err)
			wsc.gameService.SendError(gameID, c, err.Error())
		}
	}
}

// Handle different types of incoming messages. State changes reach every
// watcher through the session broadcast, so nothing is written back here.
func (wsc *WebSocketController) handleMessage(gameID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var payload ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		req, err := moveRequest(payload)
		if err != nil {
			return err
		}
		_, _, err = wsc.gameService.HandleMove(gameID, req)
		return err
	case ws.MessageTypeBack:
		_, err := wsc.gameService.Back(gameID)
		return err
	case ws.MessageTypeNext:
		_, err := wsc.gameService.Next(gameID)
		return err
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
