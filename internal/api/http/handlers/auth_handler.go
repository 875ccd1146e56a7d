package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/yuhuhero-service/internal/api/dto"
	"github.com/spec-kit/yuhuhero-service/internal/service"
	apperrors "github.com/spec-kit/yuhuhero-service/pkg/util"
)

const tokenTypeBearer = "bearer"

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.RegisterUser(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return mapAuthServiceError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": result.User,
			"auth": authResponse(result),
		},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Phone == "" || req.Password == "" {
		return apperrors.NewValidationError("phone and password required", nil)
	}

	result, err := h.auth.LoginUser(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		return mapAuthServiceError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": result.User,
			"auth": authResponse(result),
		},
	})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken: result.Token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   result.ExpiresAt,
	}
}

func mapAuthServiceError(err error) error {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return apperrors.NewValidationError(validationErr.Error(), map[string]any{"field": validationErr.Field})
	case errors.Is(err, service.ErrPhoneRegistered):
		return apperrors.NewConflict("phone already registered", nil)
	case errors.Is(err, service.ErrInvalidLogin):
		return apperrors.NewUnauthorized("invalid phone or password")
	case errors.Is(err, service.ErrTooManyAttempts):
		return apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	default:
		return err
	}
}
