package middleware

import (
	"strings"

	"tink_backend/pkg/apperror"
	"tink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the Bearer token and stores the claims on the context.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperror.Respond(c, apperror.New(apperror.CodeUnauthorized, "Missing authorization header"))
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			return apperror.Respond(c, apperror.New(apperror.CodeUnauthorized, "Invalid authorization header"))
		}

		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeUnauthorized, "Invalid or expired token", err))
		}

		c.Locals("user", claims)
		return c.Next()
	}
}
