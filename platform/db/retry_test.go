package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"fdpg_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logger.Discard(), "op", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	cause := errors.New("refused")
	err := Retry(context.Background(), logger.Discard(), "database connection", 2, time.Millisecond, func() error {
		return cause
	})

	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "database connection")
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, logger.Discard(), "op", 5, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	assert.Error(t, Retry(context.Background(), logger.Discard(), "op", 0, time.Millisecond, func() error { return nil }))
}
