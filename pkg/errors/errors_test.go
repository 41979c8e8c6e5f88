package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(InvalidInput, "bad value")
	assert.Equal(t, "bad value", err.Error())
	assert.Equal(t, InvalidInput, Code(err))
}

func TestNewf(t *testing.T) {
	err := Newf(InvalidConfiguration, "population size must be positive, got %d", -1)
	assert.Equal(t, "population size must be positive, got -1", err.Error())
	assert.Equal(t, InvalidConfiguration, Code(err))
}

func TestWrap(t *testing.T) {
	t.Run("wraps and unwraps", func(t *testing.T) {
		cause := stderrors.New("disk full")
		err := Wrap(cause, StorageFailed, "failed to persist trial")

		assert.Equal(t, "failed to persist trial: disk full", err.Error())
		assert.Equal(t, StorageFailed, Code(err))
		assert.Equal(t, cause, stderrors.Unwrap(err))
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, StorageFailed, "ignored"))
	})
}

func TestWithFields(t *testing.T) {
	t.Run("adds context to our errors", func(t *testing.T) {
		err := WithFields(New(TrialNotFound, "no such trial"), Fields{"trial_id": 7})

		var e *Error
		require.True(t, stderrors.As(err, &e))
		assert.Equal(t, 7, e.Fields()["trial_id"])
		assert.Contains(t, err.Error(), "trial_id=7")
	})

	t.Run("merges with existing fields", func(t *testing.T) {
		err := WithFields(New(TrialNotFound, "no such trial"), Fields{"a": 1})
		err = WithFields(err, Fields{"b": 2})

		var e *Error
		require.True(t, stderrors.As(err, &e))
		assert.Len(t, e.Fields(), 2)
	})

	t.Run("adopts foreign errors", func(t *testing.T) {
		err := WithFields(fmt.Errorf("boom"), Fields{"a": 1})
		assert.Equal(t, Unknown, Code(err))
	})
}

func TestIs(t *testing.T) {
	err := Wrap(New(TrialNotFound, "inner"), StorageFailed, "outer")
	assert.True(t, stderrors.Is(err, New(StorageFailed, "any message")))
	assert.True(t, stderrors.Is(err, New(TrialNotFound, "any message")))
	assert.False(t, stderrors.Is(err, New(InvalidInput, "any message")))
}

func TestCode(t *testing.T) {
	assert.Equal(t, Unknown, Code(fmt.Errorf("plain")))
	assert.Equal(t, SamplingFailed, Code(New(SamplingFailed, "x")))
}

func TestCheckContext(t *testing.T) {
	t.Run("live context passes", func(t *testing.T) {
		assert.NoError(t, CheckContext(context.Background(), "op"))
	})

	t.Run("canceled context reports Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := CheckContext(ctx, "optimize")
		require.Error(t, err)
		assert.Equal(t, Canceled, Code(err))
		assert.Contains(t, err.Error(), "optimize canceled")
	})
}
