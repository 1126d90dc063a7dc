package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/auth"
	"github.com/tilemart/tilemart-api/internal/application/dto"
)

// AuthHandler serves login and the current-user lookup.
type AuthHandler struct {
	uc *auth.UseCase
}

// NewAuthHandler builds the handler.
func NewAuthHandler(uc *auth.UseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login verifies credentials and issues a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	result, err := h.uc.Login(in.Identifier, in.Password)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"token": result.Token, "user": result.User})
}

// Register creates a backoffice account. Admin only.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	user, err := h.uc.CreateUser(auth.CreateUserInput{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		return fail(c, err)
	}
	user.PasswordHash = ""
	return ok(c, fiber.StatusCreated, fiber.Map{"user": user})
}

// Me returns the account behind the presented token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.uc.Me(GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"user": user})
}
