package utilities

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// AppError is an error that knows which HTTP status and message it maps to.
type AppError struct {
	Status  int
	Message string
	Details any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewValidationError carries every collected field message.
func NewValidationError(messages []string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: "Invalid request", Details: messages}
}

// NewUnauthorized is returned when the request does not carry a usable identity.
func NewUnauthorized(msg string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: msg}
}

// NewForbidden is returned when the identity's role is not allowed.
func NewForbidden(msg string) *AppError {
	return &AppError{Status: http.StatusForbidden, Message: msg}
}

func NewBadRequest(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: msg}
}

// NewNotFoundOrUnauthorized hides whether the resource exists when the
// requester does not own it.
func NewNotFoundOrUnauthorized(resource string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: resource + " not found or not authorized"}
}

func NewConflict(msg string) *AppError {
	return &AppError{Status: http.StatusConflict, Message: msg}
}

func NewPayloadTooLarge(msg string) *AppError {
	return &AppError{Status: http.StatusRequestEntityTooLarge, Message: msg}
}

// NewInternal wraps an unexpected fault. The cause is passed through as detail.
func NewInternal(err error) *AppError {
	ae := &AppError{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
	if err != nil {
		ae.Details = err.Error()
	}
	return ae
}

// Fail records err for the error normalizer and stops the handler chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// AsAppError maps any error onto the taxonomy; unknown errors become internal.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return NewPayloadTooLarge(fmt.Sprintf("Request body exceeds %d bytes", mbe.Limit))
	}
	return NewInternal(err)
}

// Postgres error codes used by the handlers
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation || errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsForeignKeyViolation reports whether err references a missing row.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation || errors.Is(err, gorm.ErrForeignKeyViolated)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
