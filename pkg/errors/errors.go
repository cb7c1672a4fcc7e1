package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an application error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindNotFound
	KindConflict
	KindStore
)

// AppError represents an application error
type AppError struct {
	Kind       Kind     `json:"kind"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
	Err        error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if len(e.Violations) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Violations, "; "))
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation builds an error carrying every violation found, not just
// the first one.
func Validation(violations ...string) *AppError {
	msg := "datos inválidos"
	if len(violations) == 1 {
		msg = violations[0]
	} else if len(violations) > 1 {
		msg = strings.Join(violations, "; ")
	}
	return &AppError{
		Kind:       KindValidation,
		Message:    msg,
		Violations: violations,
	}
}

func Authorization(message string) *AppError {
	if message == "" {
		message = "acceso denegado"
	}
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s no encontrado", resource),
	}
}

func NotFoundMsg(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func Store(err error) *AppError {
	return &AppError{
		Kind:    KindStore,
		Message: "error interno del servidor",
		Err:     err,
	}
}

func isKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsValidation(err error) bool    { return isKind(err, KindValidation) }
func IsAuthorization(err error) bool { return isKind(err, KindAuthorization) }
func IsNotFound(err error) bool      { return isKind(err, KindNotFound) }
func IsConflict(err error) bool      { return isKind(err, KindConflict) }
func IsStore(err error) bool         { return isKind(err, KindStore) }

// PublicMessage returns the message safe to hand to callers. Store
// errors keep their wrapped cause out of the response.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "error interno del servidor"
}
