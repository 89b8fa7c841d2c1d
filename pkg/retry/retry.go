package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

// Policy holds the backoff parameters for transient store failures:
// 1s base, doubling, capped at 10s, at most 3 retries after the first
// attempt.
type Policy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxRetries      uint64
}

func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 1 * time.Second,
		Multiplier:      2,
		MaxInterval:     10 * time.Second,
		MaxRetries:      3,
	}
}

// Do runs op, retrying with exponential backoff while op returns a
// transient error. Permanent errors abort immediately and are returned
// as-is. Each retry is logged so a flapping store is visible.
func Do(ctx context.Context, log logger.Logger, label string, policy Policy, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.InitialInterval
	bo.Multiplier = policy.Multiplier
	bo.MaxInterval = policy.MaxInterval
	bo.RandomizationFactor = 0

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !apperror.IsTransient(err) {
			return backoff.Permanent(err)
		}
		log.Warn("transient store failure, will retry",
			zap.String("op", label),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	err := backoff.Retry(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, policy.MaxRetries), ctx))
	if err != nil {
		if apperror.IsTransient(err) {
			return apperror.NewUnavailable(label+" failed after retries", err)
		}
		return err
	}
	return nil
}
