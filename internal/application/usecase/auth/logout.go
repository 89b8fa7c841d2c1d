package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/internal/identity"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

type LogoutUseCase struct {
	tokens   TokenStore
	sessions *identity.Sessions
	logger   logger.Logger
}

func NewLogoutUseCase(tokens TokenStore, sessions *identity.Sessions, log logger.Logger) *LogoutUseCase {
	return &LogoutUseCase{tokens: tokens, sessions: sessions, logger: log}
}

type LogoutInput struct {
	UserID string
	JTI    string
	// TTL is how long the token would still be valid; the deny-list
	// entry only needs to outlive it.
	TTL time.Duration
}

func (uc *LogoutUseCase) Execute(ctx context.Context, input LogoutInput) error {
	if input.JTI != "" {
		if err := uc.tokens.RevokeSession(ctx, input.JTI, input.TTL); err != nil {
			uc.logger.Error("failed to revoke session", err, zap.String("user_id", input.UserID))
			return err
		}
	}

	uc.sessions.Publish(identity.SessionEvent{
		Type:   identity.EventSignedOut,
		UserID: input.UserID,
	})
	return nil
}
