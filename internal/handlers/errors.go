package handlers

import (
	"errors"

	"portfolio/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// InternalError is a server-side failure with a client-safe message.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

func internalError(message string, err error) error {
	return &InternalError{Message: message, Err: err}
}

// ErrorHandler is the application's fallback error handler. Errors returned
// by handlers end up here; details are only exposed when exposeDetails is set.
func ErrorHandler(exposeDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var internal *InternalError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &internal):
			logger.Error().Err(err).Str("path", c.Path()).Msg(internal.Message)
			body := fiber.Map{"error": internal.Message}
			if exposeDetails && internal.Err != nil {
				body["details"] = internal.Err.Error()
			}
			return c.Status(fiber.StatusInternalServerError).JSON(body)

		case errors.As(err, &fiberErr):
			message := fiberErr.Message
			if fiberErr.Code == fiber.StatusNotFound {
				message = "Not found"
			}
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": message})

		default:
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			body := fiber.Map{"error": "Server error"}
			if exposeDetails {
				body["details"] = err.Error()
			}
			return c.Status(fiber.StatusInternalServerError).JSON(body)
		}
	}
}

// NotFound answers requests that matched no route.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
}
