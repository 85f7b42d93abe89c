package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stratus-ventures/stratus-site/internal/pkg/env"
)

// BearerTokenMiddleware protects operator endpoints with a static bearer
// token taken from the given environment key. In dev mode the check is
// skipped so local tooling works without a token.
func BearerTokenMiddleware(envKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if env.IsDev() {
			return c.Next()
		}

		token := env.GetEnv(envKey, "")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Endpoint disabled: no token configured",
			})
		}

		auth := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Missing bearer token",
			})
		}

		provided := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Invalid bearer token",
			})
		}

		return c.Next()
	}
}
