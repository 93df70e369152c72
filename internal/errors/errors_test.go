package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	averrors "github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// testError is a custom error type used to exercise default branches
// in UserMessage and Actionable without matching any sentinel.
type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func TestSentinelErrors_Existence(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrTransportTimeout", averrors.ErrTransportTimeout},
		{"ErrHTTPStatus", averrors.ErrHTTPStatus},
		{"ErrResponseParse", averrors.ErrResponseParse},
		{"ErrMalformedResponse", averrors.ErrMalformedResponse},
		{"ErrBuildNotFound", averrors.ErrBuildNotFound},
		{"ErrJobNameNotFound", averrors.ErrJobNameNotFound},
		{"ErrJobFailed", averrors.ErrJobFailed},
		{"ErrUnknownJobStatus", averrors.ErrUnknownJobStatus},
		{"ErrPollingTimeout", averrors.ErrPollingTimeout},
		{"ErrConfigValidation", averrors.ErrConfigValidation},
		{"ErrDownloadFailed", averrors.ErrDownloadFailed},
		{"ErrFileCollision", averrors.ErrFileCollision},
	}

	for _, tc := range sentinels {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.err, "%s should not be nil", tc.name)
			assert.NotEmpty(t, tc.err.Error(), "%s should have a message", tc.name)
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, averrors.Wrap(nil, "context"))
	})

	t.Run("wrapped error preserves chain", func(t *testing.T) {
		err := averrors.Wrap(averrors.ErrBuildNotFound, "locating build")
		require.Error(t, err)
		assert.ErrorIs(t, err, averrors.ErrBuildNotFound)
		assert.Equal(t, "locating build: build not found in history", err.Error())
	})
}

func TestWrapf(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, averrors.Wrapf(nil, "job %s", "abc"))
	})

	t.Run("formats message and preserves chain", func(t *testing.T) {
		err := averrors.Wrapf(averrors.ErrJobFailed, "job %s", "abc123")
		require.Error(t, err)
		assert.ErrorIs(t, err, averrors.ErrJobFailed)
		assert.Contains(t, err.Error(), "job abc123")
	})
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, averrors.UserMessage(nil))
	})

	t.Run("direct sentinel", func(t *testing.T) {
		msg := averrors.UserMessage(averrors.ErrPollingTimeout)
		assert.Contains(t, msg, "Timed out waiting")
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("polling build 1.0.42: %w", averrors.ErrJobFailed)
		msg := averrors.UserMessage(err)
		assert.Contains(t, msg, "AppVeyor job failed")
	})

	t.Run("unrecognized error falls back to original message", func(t *testing.T) {
		err := testError{msg: "something odd"}
		assert.Equal(t, "something odd", averrors.UserMessage(err))
	})
}

func TestActionable(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		msg, action := averrors.Actionable(nil)
		assert.Empty(t, msg)
		assert.Empty(t, action)
	})

	t.Run("sentinel has action", func(t *testing.T) {
		_, action := averrors.Actionable(averrors.ErrJobNameNotFound)
		assert.Contains(t, action, "--job-name")
	})

	t.Run("unrecognized error has no action", func(t *testing.T) {
		msg, action := averrors.Actionable(testError{msg: "boom"})
		assert.Equal(t, "boom", msg)
		assert.Empty(t, action)
	})
}

func TestInvalidInputError(t *testing.T) {
	t.Run("wraps and unwraps", func(t *testing.T) {
		inner := averrors.ErrConfigValidation
		err := averrors.NewInvalidInputError(inner)
		assert.Equal(t, inner.Error(), err.Error())
		assert.ErrorIs(t, err, inner)
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		err := averrors.Wrap(averrors.NewInvalidInputError(averrors.ErrConfigValidation), "validating flags")
		assert.True(t, averrors.IsInvalidInputError(err))
	})

	t.Run("plain errors are not invalid input", func(t *testing.T) {
		assert.False(t, averrors.IsInvalidInputError(averrors.ErrJobFailed))
		assert.False(t, averrors.IsInvalidInputError(nil))
	})
}
