package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	store, err := storage.Open(cfg.DBDir, cfg.InMemory)
	if err != nil {
		log.Fatalw("failed to open storage", "dir", cfg.DBDir, "error", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	gameManager := service.NewGameManager()
	gameService := service.NewGameService(gameManager, store, cfg.TimeControl)
	go gameManager.WatchClocks(ctx, time.Second)

	// Initialize controllers
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsureClientID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsureClientID())
	gameController.Register(api.Group("/game"))

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}()

	log.Infow("listening", "addr", cfg.Addr, "timeControl", cfg.TimeControl.Name, "inMemory", cfg.InMemory)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorw("server stopped", "error", err)
	}
}
