package errors

import (
	"fmt"
)

// ErrorType classifies server side failures
type ErrorType string

const (
	ErrTypeExport ErrorType = "EXPORT"
	ErrTypeConfig ErrorType = "CONFIG"
)

// AppError is a failure inside the service after the request was accepted.
// Op names the step that failed, e.g. "comparison workbook".
type AppError struct {
	Type    ErrorType
	Op      string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Op, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Op)
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key to the error for logging
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewExportError wraps a failed chart, workbook or CSV rendering
func NewExportError(op string, cause error) *AppError {
	return &AppError{Type: ErrTypeExport, Op: op, Cause: cause}
}

// NewConfigError wraps an invalid or unreadable configuration
func NewConfigError(op string, cause error) *AppError {
	return &AppError{Type: ErrTypeConfig, Op: op, Cause: cause}
}
