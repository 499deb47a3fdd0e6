package types

import (
	"errors"

	appErr "github.com/listing-studio/engine/pkg/errors"
)

func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if errors.As(err, &e) {
		return &APIError{Code: string(e.Code), Message: e.Message}
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}

// StatusOf is the HTTP status for err.
func StatusOf(err error) int {
	return appErr.HTTPStatus(appErr.CodeOf(err))
}
