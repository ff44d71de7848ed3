package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireUser ensures a user principal was loaded by AuthMiddleware.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
