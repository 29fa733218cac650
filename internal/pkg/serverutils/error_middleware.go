package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Coarse application error kinds. Services translate internal failures to one
// of these before they cross into the transport layer.
const (
	KindNotFound        = "not_found"
	KindInvalidArgument = "invalid_argument"
	KindTransient       = "transient_failure"
	KindFailedToPrepare = "failed_to_prepare"
	KindInternal        = "internal"
)

type AppError struct {
	Kind    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewInvalidArgumentError(message string) *AppError {
	return &AppError{Kind: KindInvalidArgument, Message: message}
}

func NewTransientError(message string, err error) *AppError {
	return &AppError{Kind: KindTransient, Message: message, Err: err}
}

func NewFailedToPrepareError(message string, err error) *AppError {
	return &AppError{Kind: KindFailedToPrepare, Message: message, Err: err}
}

func statusForKind(kind string) int {
	switch kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware translates errors bubbling out of handlers into the
// JSON error envelope. AppError carries its own kind; anything else is an
// internal error with no detail leaked to the caller.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			status := statusForKind(appErr.Kind)
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
