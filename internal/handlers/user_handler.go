package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/services"
)

type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Get returns the sanitized profile of any user by id.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.auth.GetUserByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewUserResponse(user), "user retrieved"))
}
