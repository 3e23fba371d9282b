package controller

import (
	"time"

	"tink_backend/pkg/apperror"
	"tink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func currentUser(c *fiber.Ctx) *jwt.Claims {
	return c.Locals("user").(*jwt.Claims)
}

// ownedPropertyScope narrows property based queries to the
// authenticated landlord. Managers see every property.
func ownedPropertyScope(claims *jwt.Claims) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if claims.Role == "manager" {
			return db
		}
		return db.Where("user_id = ?", claims.UserID)
	}
}

func respondDBError(c *fiber.Ctx, message string, err error) error {
	if err == gorm.ErrRecordNotFound {
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, message))
	}
	return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, message, err))
}
