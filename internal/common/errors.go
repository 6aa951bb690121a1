package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden access")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict") // e.g., slug already taken
	ErrAlreadySubmitted = errors.New("answer already submitted")
	ErrContestNotActive = errors.New("contest is not active")
)

// Specific failures. Each wraps one of the generic kinds above so callers can
// match either the exact cause or its kind with errors.Is.
var (
	ErrContestNotFound    = fmt.Errorf("contest not found: %w", ErrNotFound)
	ErrQuestionNotFound   = fmt.Errorf("question not found: %w", ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrEmailExists        = fmt.Errorf("email already exists: %w", ErrConflict)
)

// PgUniqueViolation is the SQLSTATE postgres reports for a unique constraint.
const PgUniqueViolation = "23505"

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrAlreadySubmitted) || errors.Is(err, ErrContestNotActive) || errors.Is(err, ErrEmailExists) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ErrorCode returns the stable, client-facing code for err. Anything that is not
// a known domain failure collapses to INTERNAL_SERVER_ERROR.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrContestNotFound):
		return "CONTEST_NOT_FOUND"
	case errors.Is(err, ErrQuestionNotFound):
		return "QUESTION_NOT_FOUND"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrBadRequest):
		return "INVALID_REQUEST"
	case errors.Is(err, ErrAlreadySubmitted):
		return "ALREADY_SUBMITTED"
	case errors.Is(err, ErrContestNotActive):
		return "CONTEST_NOT_ACTIVE"
	case errors.Is(err, ErrEmailExists):
		return "EMAIL_ALREADY_EXISTS"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	}
	return "INTERNAL_SERVER_ERROR"
}

// IsUniqueViolation reports whether err is a postgres unique constraint failure,
// optionally restricted to a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != PgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
