package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// RequireUser ensures the request carries an authenticated principal.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}

// RequireAuthor ensures the caller may author courses.
func RequireAuthor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !principal.User.IsAuthor {
			return apperrors.NewForbidden("author role required")
		}
		return c.Next()
	}
}
