package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

func testPolicy() Policy {
	return Policy{
		InitialInterval: time.Millisecond,
		Multiplier:      2,
		MaxInterval:     5 * time.Millisecond,
		MaxRetries:      3,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", testPolicy(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", testPolicy(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", testPolicy(), func() error {
		calls++
		return errors.New("server is unavailable")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))
	// Initial attempt plus MaxRetries.
	assert.Equal(t, 4, calls)
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	permanent := errors.New("document is malformed")
	calls := 0
	err := Do(context.Background(), logger.NewNop(), "op", testPolicy(), func() error {
		calls++
		return permanent
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, permanent)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, time.Second, p.InitialInterval)
	assert.Equal(t, float64(2), p.Multiplier)
	assert.Equal(t, 10*time.Second, p.MaxInterval)
	assert.Equal(t, uint64(3), p.MaxRetries)
}
