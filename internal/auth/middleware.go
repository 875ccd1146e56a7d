package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/yuhuhero-service/internal/domain"
	apperrors "github.com/spec-kit/yuhuhero-service/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware resolves bearer tokens into identities.
type AuthMiddleware struct {
	resolver *Resolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver *Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return toHTTPError(err)
	}

	identity, err := m.resolver.Resolve(c.UserContext(), token)
	if err != nil {
		return toHTTPError(err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingCredentials
	}
	parts := strings.SplitN(header, " ", 2)
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidCredentials
	}
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingCredentials
	}
	return strings.TrimSpace(parts[1]), nil
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}

// toHTTPError maps the auth taxonomy onto API errors. Anything else is
// passed through for the global error handler.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return apperrors.NewUnauthorized("missing credentials")
	case errors.Is(err, ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, ErrForbidden):
		return apperrors.NewForbidden("insufficient role")
	default:
		return apperrors.NewInternalError(err)
	}
}
