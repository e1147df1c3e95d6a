// Package apperr holds the error kinds shared by repositories, services and
// handlers. Callers wrap them with fmt.Errorf("...: %w") and match with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound means a referenced user or reel does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidationFailed means the request is missing a required field or upload.
	ErrValidationFailed = errors.New("validation failed")
	// ErrGenerationFailed means caption or thumbnail generation produced no usable output.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrStorageUnavailable means the storage gateway could not accept the media.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConflict means a unique field (username, email) is already taken.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized means the caller identity is missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusCode maps an error to the HTTP status the API reports for it.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
