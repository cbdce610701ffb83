package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// ClientIDKey is the fiber.Ctx locals key holding the client id.
const ClientIDKey = "clientID"

// EnsureClientID requires every request to identify its client through the
// X-Client-ID header or the clientId query parameter.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if clientID is already set
		if c.Locals(ClientIDKey) != nil {
			return c.Next()
		}

		// Check header first
		clientID := c.Get("X-Client-ID")
		if clientID == "" {
			clientID = c.Query("clientId")
		}

		if clientID == "" {
			log.Debugw("request without client id", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Client ID is required. Please ensure client is properly initialized.",
			})
		}

		// Store in context for this request
		c.Locals(ClientIDKey, clientID)
		return c.Next()
	}
}

// ClientID returns the id stored by EnsureClientID, or "" without it.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(ClientIDKey).(string)
	return id
}
