package auth

import (
	"errors"
	"net/http"
)

var (
	ErrAlreadyExists = errors.New("email already registered")
	ErrNotFound      = errors.New("user not found")
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password so login does not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidOrExpired   = errors.New("invalid or expired code")
	ErrUnauthenticated    = errors.New("missing session token")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrInvalidInput       = errors.New("invalid input")
)

// MapError translates an error into the HTTP status, machine code and
// client-facing message. Anything unrecognised is a 500 with a generic
// message.
func MapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusBadRequest, "ALREADY_EXISTS", ErrAlreadyExists.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusBadRequest, "NOT_FOUND", ErrNotFound.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, "INVALID_CREDENTIALS", ErrInvalidCredentials.Error()
	case errors.Is(err, ErrInvalidOrExpired):
		return http.StatusBadRequest, "INVALID_OR_EXPIRED", ErrInvalidOrExpired.Error()
	case errors.Is(err, ErrNotVerified):
		return http.StatusUnauthorized, "NOT_VERIFIED", ErrNotVerified.Error()
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED", ErrUnauthenticated.Error()
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", ErrInvalidToken.Error()
	default:
		return http.StatusInternalServerError, "SERVER_ERROR", "internal server error"
	}
}
