package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/dto"
)

// ErrorHandler renders every error through the response envelope.
// Application errors keep their status and message; anything mapping
// to a 5xx is logged and masked.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= 500 {
			slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
			return c.Status(appErr.Status).JSON(dto.Fail("internal server error"))
		}
		return c.Status(appErr.Status).JSON(dto.Fail(appErr.Message, appErr.Fields...))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(dto.Fail(fiberErr.Message))
	}

	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		return c.Status(status).JSON(dto.Fail("internal server error"))
	}
	return c.Status(status).JSON(dto.Fail(err.Error()))
}
