package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(EnsureClientID())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(ClientID(c))
	})
	app.Get("/ws/game/:gameId", WebSocketUpgrade(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusSwitchingProtocols)
	})
	return app
}

func TestEnsureClientID(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{"header", "/whoami", "abc", fiber.StatusOK, "abc"},
		{"query", "/whoami?clientId=q1", "", fiber.StatusOK, "q1"},
		{"header wins", "/whoami?clientId=q1", "h1", fiber.StatusOK, "h1"},
		{"missing", "/whoami", "", fiber.StatusUnauthorized, ""},
	}
	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Client-ID", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.body != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.body {
					t.Errorf("expected body %q, got %q", tt.body, body)
				}
			}
		})
	}
}

func TestWebSocketUpgradeRequiresUpgrade(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws/game/g1?clientId=c1", nil)
	resp, err := newApp().Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}
