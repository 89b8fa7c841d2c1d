package auth

import (
	"context"
	"errors"
	"time"

	"github.com/filipposta/legacy-premium-api/adapters/event"
)

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrUnknownUser        = errors.New("no account exists for this email")
)

// TokenStore covers the short-lived credential state: single-use
// password-reset tokens, revoked sessions, and failed sign-in
// counters. The Redis adapter implements it.
type TokenStore interface {
	CreateResetToken(ctx context.Context, userID string) (string, error)
	ConsumeResetToken(ctx context.Context, token string) (string, error)
	RevokeSession(ctx context.Context, jti string, until time.Duration) error
	IsSessionRevoked(ctx context.Context, jti string) (bool, error)
	RecordSignInFailure(ctx context.Context, email string) (int, error)
	SignInFailures(ctx context.Context, email string) (int, error)
	ClearSignInFailures(ctx context.Context, email string) error
}

// AccountEventPublisher is the slice of the Kafka producer the auth
// flows need.
type AccountEventPublisher interface {
	PublishAccountEvent(ctx context.Context, payload event.AccountEventPayload) error
}
