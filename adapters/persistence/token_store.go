package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

const (
	resetTokenPrefix  = "reset:"
	revokedJTIPrefix  = "revoked:"
	signInFailsPrefix = "signin-fails:"

	signInFailWindow = 15 * time.Minute
)

// RedisTokenStore backs the three short-lived credential concerns:
// single-use password-reset tokens, the revoked-session deny list,
// and the failed sign-in counters behind rate limiting.
type RedisTokenStore struct {
	rdb      *redis.Client
	resetTTL time.Duration
}

func NewRedisTokenStore(rdb *redis.Client, resetTTL time.Duration) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, resetTTL: resetTTL}
}

func (s *RedisTokenStore) CreateResetToken(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, resetTokenPrefix+token, userID, s.resetTTL).Err(); err != nil {
		return "", fmt.Errorf("cannot store reset token: %w", err)
	}
	return token, nil
}

// ConsumeResetToken resolves and invalidates a reset token in one
// step, so a token can never be replayed.
func (s *RedisTokenStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, resetTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperror.NewUnauthorized("reset token is invalid or expired", nil)
		}
		return "", fmt.Errorf("cannot consume reset token: %w", err)
	}
	return userID, nil
}

func (s *RedisTokenStore) RevokeSession(ctx context.Context, jti string, until time.Duration) error {
	if err := s.rdb.Set(ctx, revokedJTIPrefix+jti, "1", until).Err(); err != nil {
		return fmt.Errorf("cannot revoke session: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedJTIPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("cannot check session revocation: %w", err)
	}
	return n > 0, nil
}

// RecordSignInFailure bumps the rolling failure counter for an email
// and returns the new count.
func (s *RedisTokenStore) RecordSignInFailure(ctx context.Context, email string) (int, error) {
	key := signInFailsPrefix + email
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot record sign-in failure: %w", err)
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, key, signInFailWindow).Err(); err != nil {
			return int(n), fmt.Errorf("cannot expire sign-in counter: %w", err)
		}
	}
	return int(n), nil
}

func (s *RedisTokenStore) SignInFailures(ctx context.Context, email string) (int, error) {
	n, err := s.rdb.Get(ctx, signInFailsPrefix+email).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot read sign-in counter: %w", err)
	}
	return n, nil
}

func (s *RedisTokenStore) ClearSignInFailures(ctx context.Context, email string) error {
	if err := s.rdb.Del(ctx, signInFailsPrefix+email).Err(); err != nil {
		return fmt.Errorf("cannot clear sign-in counter: %w", err)
	}
	return nil
}
