package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{Attempts: 5, InitialBackoff: 100 * time.Millisecond, MaxBackoff: 350 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 350*time.Millisecond, p.Backoff(3))
	assert.Equal(t, 350*time.Millisecond, p.Backoff(10))
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	calls := 0

	err := Do(context.Background(), Policy{Attempts: 3, InitialBackoff: time.Millisecond}, "redis", zap.New(core), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, logs.FilterMessage("dependency not ready").Len())
}

func TestDo_GivesUp(t *testing.T) {
	refused := errors.New("connection refused")
	calls := 0

	err := Do(context.Background(), Policy{Attempts: 2, InitialBackoff: time.Millisecond}, "postgres", nil, func(context.Context) error {
		calls++
		return refused
	})

	assert.ErrorIs(t, err, refused)
	assert.Contains(t, err.Error(), "postgres: giving up after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Policy{Attempts: 5, InitialBackoff: time.Hour}, "mongodb", nil, func(context.Context) error {
		return errors.New("no primary")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_ZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, "outbox", nil, func(context.Context) error {
		calls++
		return errors.New("locked")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
