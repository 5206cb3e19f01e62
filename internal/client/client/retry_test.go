package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, Backoff: []time.Duration{time.Millisecond, 2 * time.Millisecond}}
	assert.Equal(t, time.Millisecond, p.Delay(0))
	assert.Equal(t, 2*time.Millisecond, p.Delay(1))
	assert.Equal(t, 2*time.Millisecond, p.Delay(4))
	assert.Equal(t, time.Duration(0), RetryPolicy{}.Delay(0))
}

func TestRetryPolicy_Do(t *testing.T) {
	boom := errors.New("boom")
	p := RetryPolicy{MaxAttempts: 3, Backoff: []time.Duration{time.Millisecond}}

	t.Run("stops after max attempts", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return Retryable(boom)
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("non retryable error returns at once", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds on later attempt", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 2 {
				return Retryable(boom)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("zero attempts means one", func(t *testing.T) {
		calls := 0
		_ = RetryPolicy{}.Do(context.Background(), func(context.Context) error {
			calls++
			return Retryable(boom)
		})
		assert.Equal(t, 1, calls)
	})
}
