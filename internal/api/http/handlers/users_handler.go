package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chirpy/internal/api/dto"
	"github.com/spec-kit/chirpy/internal/auth"
	"github.com/spec-kit/chirpy/internal/service"
	apperrors "github.com/spec-kit/chirpy/pkg/errorutil"
)

// UsersHandler exposes account and login endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.RegisterUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Update handles PUT /api/users for the authenticated user.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateUser(c.UserContext(), principal.UserID, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Login handles POST /api/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password, req.ExpiresInSeconds)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{UserResponse: dto.NewUserResponse(user), Token: token})
}
