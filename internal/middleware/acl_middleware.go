package middleware

import (
	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
	"tink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// CheckPropertyOwnership verifies the property in :id belongs to the caller.
// Managers pass through; they act on behalf of the landlord.
func CheckPropertyOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		propertyID := c.Params("id")

		var property model.Property
		if err := database.GetDB().First(&property, propertyID).Error; err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "Property not found"))
		}

		if claims.Role != string(model.RoleManager) && property.UserID != claims.UserID {
			return apperror.Respond(c, apperror.New(apperror.CodeForbidden, "You don't have permission to access this property"))
		}

		return c.Next()
	}
}

// RequireRole limits a route to the given roles.
func RequireRole(roles ...model.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		for _, role := range roles {
			if claims.Role == string(role) {
				return c.Next()
			}
		}
		return apperror.Respond(c, apperror.New(apperror.CodeForbidden, "Insufficient permissions"))
	}
}
