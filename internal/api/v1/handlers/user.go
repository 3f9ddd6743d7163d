package handlers

import (
	"workorder/internal/middleware"
	"workorder/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type UserHandler struct {
	users    *service.UserService
	validate *validator.Validate
}

func NewUserHandler(users *service.UserService, v *validator.Validate) *UserHandler {
	return &UserHandler{users: users, validate: v}
}

// Info returns the caller's own profile.
func (h *UserHandler) Info(c *fiber.Ctx) error {
	info, err := h.users.GetUserInfo(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, info)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	info, err := h.users.GetUserInfo(c.UserContext(), c.Params("userId"))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, info)
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return handleError(c, err)
	}
	info, err := h.users.ChangePassword(c.UserContext(), middleware.UserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, info)
}
