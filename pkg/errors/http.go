package errors

import (
	"errors"
)

// GenericErrorMessage is returned whenever an error carries no caller-safe message.
const GenericErrorMessage = "An unexpected error occurred"

func HTTPStatusCode(err error) int {
	if err == nil {
		return StatusInternalServerError
	}

	errorType := GetErrorType(err)

	switch errorType {
	case ErrorTypeNotFound:
		return StatusNotFound
	case ErrorTypeInvalidRequest:
		return StatusBadRequest
	case ErrorTypeConflict:
		return StatusConflict
	case ErrorTypeUnauthorized:
		return StatusUnauthorized
	default:
		return StatusInternalServerError
	}
}

func GetHumanReadableMessage(err error) string {
	if err == nil {
		return GenericErrorMessage
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	// SECURITY: avoid leaking internal error strings (DB errors, stack messages, etc.)
	return GenericErrorMessage
}
