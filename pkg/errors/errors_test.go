package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("message formatting", func(t *testing.T) {
		err := New(CodeProviderError, "provider call failed")
		assert.Contains(t, err.Error(), "provider call failed")
	})

	t.Run("wrap preserves the cause", func(t *testing.T) {
		cause := stderrors.New("connection refused")
		err := Wrap(cause, CodeProviderError, "provider unreachable")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("with detail", func(t *testing.T) {
		err := New(CodeValidationFailed, "article rejected").WithDetail("body too short")
		assert.Equal(t, "body too short", err.Detail)
	})

	t.Run("code appears in message", func(t *testing.T) {
		err := New(CodeValidationFailed, "article rejected")
		assert.Contains(t, err.Error(), string(CodeValidationFailed))
	})
}

func TestFatalClassification(t *testing.T) {
	t.Run("config errors are fatal", func(t *testing.T) {
		assert.True(t, New(CodeConfigInvalid, "bad config").Fatal())
		assert.True(t, New(CodeCredentialMissing, "no api key").Fatal())
	})

	t.Run("provider errors are not fatal", func(t *testing.T) {
		assert.False(t, New(CodeProviderError, "transient").Fatal())
		assert.False(t, New(CodeProviderTimeout, "slow").Fatal())
		assert.False(t, New(CodeValidationFailed, "rejected").Fatal())
	})

	t.Run("fatal errors exit nonzero", func(t *testing.T) {
		assert.Equal(t, 1, New(CodeCredentialMissing, "no api key").ExitCode())
	})
}

func TestAsAppError(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := New(CodeCacheError, "redis down")
		got := AsAppError(err)
		require.NotNil(t, got)
		assert.Equal(t, CodeCacheError, got.Code)
	})

	t.Run("wrapped in plain error", func(t *testing.T) {
		inner := New(CodeStorageError, "upload failed")
		outer := Wrap(inner, CodeInternalError, "pipeline step failed")
		assert.True(t, IsAppError(outer))
	})

	t.Run("non-app error coerced to unknown", func(t *testing.T) {
		got := AsAppError(stderrors.New("plain"))
		require.NotNil(t, got)
		assert.Equal(t, CodeUnknown, got.Code)
		assert.False(t, IsAppError(stderrors.New("plain")))
	})
}

func TestPredefinedErrors(t *testing.T) {
	t.Run("with detail returns a copy", func(t *testing.T) {
		derived := ErrCredentialMissing.WithDetail("no api key for llm provider")
		assert.Equal(t, "no api key for llm provider", derived.Detail)
		assert.Equal(t, CodeCredentialMissing, derived.Code)
		assert.Empty(t, ErrCredentialMissing.Detail, "shared sentinel must stay untouched")
	})

	t.Run("with error returns a copy", func(t *testing.T) {
		cause := stderrors.New("connection reset")
		derived := ErrProviderTimeout.WithError(cause)
		assert.ErrorIs(t, derived, cause)
		assert.Nil(t, ErrProviderTimeout.Err)
	})

	t.Run("timeout sentinel survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("job req-42 gave up: %w", ErrProviderTimeout)
		assert.ErrorIs(t, wrapped, ErrProviderTimeout)
		assert.Contains(t, wrapped.Error(), "timeout")
	})
}
