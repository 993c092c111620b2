package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a TweetifyError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *TweetifyError {
	if err == nil {
		return nil
	}

	// Keep the context of an existing TweetifyError
	var te *TweetifyError
	if errors.As(err, &te) {
		return &TweetifyError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       te,
			Context:     te.Context,
			Recoverable: te.Recoverable,
		}
	}

	return &TweetifyError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeTime,
	}
}

// WrapWithContext wraps an error with context information
func WrapWithContext(err error, errType ErrorType, code, message string, context map[string]interface{}) *TweetifyError {
	tweetErr := Wrap(err, errType, code, message)
	if tweetErr != nil {
		tweetErr.Context = context
	}
	return tweetErr
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, message string) *TweetifyError {
	tweetErr := Wrap(err, ErrorTypeIO, CodeReadFailed, message)
	if tweetErr != nil {
		tweetErr.Recoverable = false
	}
	return tweetErr
}

// WrapDecode wraps a JSON decoding failure
func WrapDecode(err error, message string) *TweetifyError {
	return Wrap(err, ErrorTypeDecode, CodeInvalidJSON, message)
}

// WrapEntity wraps an error as a malformed entity error so that errors.Is
// matches ErrMalformedEntity
func WrapEntity(err error, message string) *TweetifyError {
	return Wrap(err, ErrorTypeEntity, CodeMalformedEntity, message)
}

// GetErrorType returns the type of the outermost TweetifyError in the chain
func GetErrorType(err error) ErrorType {
	var te *TweetifyError
	if errors.As(err, &te) {
		return te.Type
	}
	return ErrorTypeInternal
}

// GetErrorContext returns the context of the outermost TweetifyError in the chain
func GetErrorContext(err error) map[string]interface{} {
	var te *TweetifyError
	if errors.As(err, &te) {
		return te.Context
	}
	return nil
}
