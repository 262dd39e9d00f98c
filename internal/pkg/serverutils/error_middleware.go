package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"studenthub-be/internal/pkg/apperrors"
)

// ErrorHandlerMiddleware converts domain errors bubbling out of handlers into
// their HTTP shape. Handlers return errors; this is the single place that
// decides status codes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var (
			validationErr *apperrors.ValidationError
			authzErr      *apperrors.AuthorizationError
			transitionErr *apperrors.InvalidTransitionError
			persistErr    *apperrors.PersistenceError
			generationErr *apperrors.GenerationError
			fiberErr      *fiber.Error
		)

		switch {
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validationErr.Error()))
		case errors.As(err, &authzErr):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, authzErr.Error()))
		case errors.As(err, &transitionErr):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(fiber.StatusConflict, transitionErr.Error()))
		case errors.Is(err, apperrors.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, "Resource not found"))
		case errors.As(err, &generationErr):
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, "Assistant is unavailable, please try again"))
		case errors.As(err, &persistErr):
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
		}
	}
}
