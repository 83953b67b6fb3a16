package serverutils

import (
	"errors"

	"ai-musictriage-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates the session error taxonomy into HTTP
// responses. Collaborator failures never reach here: the services degrade
// them to advisory-absent or pending-retry before the controller returns.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		switch {
		case errors.Is(err, entity.ErrStateCorruption):
			return ctx.Status(fiber.StatusConflict).
				JSON(ErrorResponse("STATE_CORRUPTION", err.Error()))
		case errors.Is(err, entity.ErrCursorMismatch):
			return ctx.Status(fiber.StatusConflict).
				JSON(ErrorResponse("CURSOR_MISMATCH", err.Error()))
		case errors.Is(err, entity.ErrUnknownTheme):
			return ctx.Status(fiber.StatusUnprocessableEntity).
				JSON(ErrorResponse("UNKNOWN_THEME", err.Error()))
		case errors.Is(err, entity.ErrNothingToUndo):
			return ctx.Status(fiber.StatusUnprocessableEntity).
				JSON(ErrorResponse("NOTHING_TO_UNDO", err.Error()))
		case errors.Is(err, entity.ErrNoActiveSession):
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse("NO_ACTIVE_SESSION", err.Error()))
		case errors.Is(err, entity.ErrSessionNotComplete):
			return ctx.Status(fiber.StatusUnprocessableEntity).
				JSON(ErrorResponse("SESSION_NOT_COMPLETE", err.Error()))
		case errors.Is(err, entity.ErrNotAuthenticated):
			return ctx.Status(fiber.StatusUnauthorized).
				JSON(ErrorResponse("NOT_AUTHENTICATED", err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse("HTTP_ERROR", fiberErr.Message))
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse("VALIDATION_ERROR", validationErr.Error()))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse("INTERNAL_ERROR", err.Error()))
	}
}
