package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/yuhuhero-service/internal/domain"
)

// RequireRole passes identity through unchanged when it holds role.
func RequireRole(identity domain.Identity, role domain.Role) (domain.Identity, error) {
	if identity.Role != role {
		return domain.Identity{}, ErrForbidden
	}
	return identity, nil
}

// RequireIdentity ensures the resolver middleware ran and stored a caller.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return toHTTPError(ErrMissingCredentials)
		}
		return c.Next()
	}
}

// RequireRoleHandler rejects callers whose identity lacks role.
func RequireRoleHandler(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return toHTTPError(ErrMissingCredentials)
		}
		if _, err := RequireRole(identity, role); err != nil {
			return toHTTPError(err)
		}
		return c.Next()
	}
}
