package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweetifyErrorError(t *testing.T) {
	testCases := []struct {
		name     string
		err      *TweetifyError
		expected string
	}{
		{
			name:     "code and message",
			err:      NewMalformedEntityError("mention at 3 has no screen name"),
			expected: "[MALFORMED_ENTITY] mention at 3 has no screen name",
		},
		{
			name: "with cause",
			err: &TweetifyError{
				Type:    ErrorTypeDecode,
				Code:    CodeInvalidJSON,
				Message: "decoding timeline",
				Cause:   fmt.Errorf("unexpected EOF"),
			},
			expected: "[INVALID_JSON] decoding timeline: unexpected EOF",
		},
		{
			name:     "message only",
			err:      &TweetifyError{Message: "plain"},
			expected: "plain",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	t.Run("malformed entity", func(t *testing.T) {
		err := fmt.Errorf("annotating: %w", NewMalformedEntityError("overshoot"))
		assert.True(t, errors.Is(err, ErrMalformedEntity))
		assert.False(t, errors.Is(err, ErrInvalidTimestamp))
		assert.True(t, IsMalformedEntity(err))
	})

	t.Run("intent action", func(t *testing.T) {
		err := NewUnrecognizedIntentError("bogus")
		assert.True(t, errors.Is(err, ErrUnrecognizedIntentAction))
		assert.Contains(t, err.Error(), `"bogus"`)
	})

	t.Run("timestamp", func(t *testing.T) {
		cause := errors.New("no layout matched")
		err := NewInvalidTimestampError("yesterday-ish", cause)
		assert.True(t, errors.Is(err, ErrInvalidTimestamp))
		assert.Equal(t, cause, errors.Unwrap(err))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrorTypeIO, CodeReadFailed, "reading"))
		assert.Nil(t, WrapIO(nil, "reading"))
	})

	t.Run("plain error", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := WrapIO(cause, "reading timeline.json")
		require.NotNil(t, err)
		assert.Equal(t, ErrorTypeIO, err.Type)
		assert.False(t, err.Recoverable)
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("keeps context of wrapped error", func(t *testing.T) {
		inner := NewMalformedEntityError("missing indices").WithContext("kind", "hashtag")
		err := WrapDecode(inner, "decoding tweet 42")
		require.NotNil(t, err)
		assert.Equal(t, "hashtag", err.Context["kind"])
		assert.True(t, errors.Is(err, ErrMalformedEntity))
		assert.Equal(t, ErrorTypeDecode, GetErrorType(err))
	})

	t.Run("entity wrap matches sentinel", func(t *testing.T) {
		err := WrapEntity(errors.New("index out of range"), "media entity")
		assert.True(t, errors.Is(err, ErrMalformedEntity))
	})

	t.Run("with context", func(t *testing.T) {
		err := WrapWithContext(errors.New("boom"), ErrorTypeConfig, CodeInvalidConfig, "loading", map[string]interface{}{"file": ".tweetify.yml"})
		assert.Equal(t, ".tweetify.yml", GetErrorContext(err)["file"])
	})
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewUnrecognizedIntentError("x")))
	assert.True(t, IsRecoverable(NewValidationError(CodeInvalidOption, "bad")))
	assert.False(t, IsRecoverable(NewConfigError(CodeInvalidConfig, "bad")))
	assert.False(t, IsRecoverable(errors.New("plain")))
	assert.Equal(t, ErrorTypeInternal, GetErrorType(errors.New("plain")))
	assert.Nil(t, GetErrorContext(errors.New("plain")))
}
