package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// Locals keys for the authenticated request context.
const (
	LocalsUserID = "auth_user_id"
	LocalsRole   = "auth_role"
)

// Middleware validates the Bearer token and stores the subject and role in
// the request locals.
func Middleware(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return apperrors.NewUnauthorized("missing bearer token")
		}
		meta, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return err
		}
		c.Locals(LocalsUserID, meta.SubjectID)
		c.Locals(LocalsRole, meta.Role)
		return c.Next()
	}
}

// UserID returns the authenticated subject, or "" when unauthenticated.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalsUserID).(string); ok {
		return id
	}
	return ""
}

// Role returns the authenticated role, or "" when unauthenticated.
func Role(c *fiber.Ctx) domain.UserRole {
	if role, ok := c.Locals(LocalsRole).(domain.UserRole); ok {
		return role
	}
	return ""
}
