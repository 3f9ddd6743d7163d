package handlers

import (
	"workorder/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	// Account is a username or a phone number.
	Account  string `json:"account" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	users    *service.UserService
	validate *validator.Validate
}

func NewAuthHandler(users *service.UserService, v *validator.Validate) *AuthHandler {
	return &AuthHandler{users: users, validate: v}
}

// Register membuat user baru dan langsung mengembalikan token.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, h.validate, &req); err != nil {
		return handleError(c, err)
	}
	info, err := h.users.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return handleError(c, err)
	}
	return success(c, info)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return handleError(c, err)
	}
	info, err := h.users.Login(c.UserContext(), req.Account, req.Password)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, info)
}

// Logout has nothing to revoke; clients drop the token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return success(c, nil)
}
