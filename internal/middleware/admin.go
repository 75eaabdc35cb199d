package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired must run after JWTProtected. The caller is looked up on every
// request and must be active; they are admin when the stored role is admin or
// the stored email is listed in ADMIN_EMAILS. The token's role claim is not
// trusted, so a demoted admin loses access immediately.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(strings.ToLower(cfg.AdminEmails))

	return func(c *fiber.Ctx) error {
		claims, err := authctx.GetClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var user models.User
		err = db.WithContext(c.UserContext()).
			Select("id", "email", "role", "is_active").
			First(&user, "id = ?", claims.UserID).Error
		if err == nil && user.IsActive &&
			(user.IsAdmin() || contains(adminEmails, strings.ToLower(user.Email))) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
