package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/yuhuhero-service/internal/api/dto"
	"github.com/spec-kit/yuhuhero-service/internal/auth"
	"github.com/spec-kit/yuhuhero-service/internal/service"
	apperrors "github.com/spec-kit/yuhuhero-service/pkg/util"
)

// UsersHandler exposes the caller's profile and the admin user listing.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Me handles GET /api/users/me and /api/users/profile.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing credentials")
	}
	return c.JSON(fiber.Map{"data": identity})
}

// UpdateQuizStatus handles PUT /api/users/me/quiz-status.
func (h *UsersHandler) UpdateQuizStatus(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing credentials")
	}

	var req dto.QuizStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Completed == nil {
		return apperrors.NewValidationError("completed required", nil)
	}

	updated, err := h.users.UpdateQuizStatus(c.UserContext(), identity, *req.Completed)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": updated})
}

// List handles GET /api/admin/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	users, err := h.users.ListUsers(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{"limit": limit, "offset": offset, "count": len(users)},
	})
}
