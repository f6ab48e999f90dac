package apperr

import (
	"context"
	"errors"
	"fmt"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code and message,
// so a sentinel still matches after With attaches a cause to it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Constructors
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// With returns a copy of sentinel carrying cause.
func With(sentinel error, cause error) error {
	var ae *AppError
	if !errors.As(sentinel, &ae) {
		return fmt.Errorf("%w: %w", sentinel, cause)
	}
	return &AppError{Code: ae.Code, Message: ae.Message, Cause: cause}
}

func InvalidInput(msg string) error {
	return New(CodeInvalidInput, msg)
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func Transient(msg string, cause error) error {
	return Wrap(CodeTransient, msg, cause)
}

func Internal(msg string, cause error) error {
	return Wrap(CodeInternal, msg, cause)
}

// CodeOf returns the code of the outermost AppError in err's chain.
// Context deadline and cancellation map to CodeTimeout and CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeUnknown
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeTransient, CodeTimeout:
		return true
	}
	return false
}
