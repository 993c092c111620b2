package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeEntity     ErrorType = "entity"
	ErrorTypeLink       ErrorType = "link"
	ErrorTypeTime       ErrorType = "time"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	CodeMalformedEntity          = "MALFORMED_ENTITY"
	CodeUnrecognizedIntentAction = "UNRECOGNIZED_INTENT_ACTION"
	CodeInvalidTimestamp         = "INVALID_TIMESTAMP"
	CodeUnknownEntityKind        = "UNKNOWN_ENTITY_KIND"
	CodeInvalidJSON              = "INVALID_JSON"
	CodeReadFailed               = "READ_FAILED"
	CodeRenderFailed             = "RENDER_FAILED"
	CodeInvalidOption            = "INVALID_OPTION"
	CodeInvalidConfig            = "INVALID_CONFIG"
)

// Sentinels for errors.Is. Matching compares Type and Code only.
var (
	ErrMalformedEntity          = &TweetifyError{Type: ErrorTypeEntity, Code: CodeMalformedEntity}
	ErrUnrecognizedIntentAction = &TweetifyError{Type: ErrorTypeLink, Code: CodeUnrecognizedIntentAction}
	ErrInvalidTimestamp         = &TweetifyError{Type: ErrorTypeTime, Code: CodeInvalidTimestamp}
)

// TweetifyError is a structured error type with context.
type TweetifyError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *TweetifyError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TweetifyError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *TweetifyError) Is(target error) bool {
	var t *TweetifyError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *TweetifyError) WithContext(key string, value interface{}) *TweetifyError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// NewMalformedEntityError reports an entity that cannot be rendered or is
// missing a required field.
func NewMalformedEntityError(message string) *TweetifyError {
	return &TweetifyError{
		Type:    ErrorTypeEntity,
		Code:    CodeMalformedEntity,
		Message: message,
	}
}

// NewUnrecognizedIntentError reports an intent action outside reply, retweet
// and favorite.
func NewUnrecognizedIntentError(action string) *TweetifyError {
	return &TweetifyError{
		Type:        ErrorTypeLink,
		Code:        CodeUnrecognizedIntentAction,
		Message:     fmt.Sprintf("unrecognized intent action %q", action),
		Recoverable: true,
	}
}

// NewInvalidTimestampError reports a timestamp value that cannot be turned
// into a point in time.
func NewInvalidTimestampError(value interface{}, cause error) *TweetifyError {
	return &TweetifyError{
		Type:        ErrorTypeTime,
		Code:        CodeInvalidTimestamp,
		Message:     fmt.Sprintf("invalid timestamp %v", value),
		Cause:       cause,
		Recoverable: true,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *TweetifyError {
	return &TweetifyError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *TweetifyError {
	return &TweetifyError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *TweetifyError {
	return &TweetifyError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var te *TweetifyError
	if errors.As(err, &te) {
		return te.Recoverable
	}

	return false
}

// IsMalformedEntity reports whether err carries a malformed entity error.
func IsMalformedEntity(err error) bool {
	return errors.Is(err, ErrMalformedEntity)
}
