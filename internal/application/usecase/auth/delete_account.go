package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	"github.com/filipposta/legacy-premium-api/internal/domain/settings"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/internal/identity"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

type DeleteAccountUseCase struct {
	userRepo     user.Repository
	settingsRepo settings.Repository
	tokens       TokenStore
	publisher    AccountEventPublisher
	sessions     *identity.Sessions
	logger       logger.Logger
}

func NewDeleteAccountUseCase(userRepo user.Repository, settingsRepo settings.Repository, tokens TokenStore, publisher AccountEventPublisher, sessions *identity.Sessions, log logger.Logger) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		tokens:       tokens,
		publisher:    publisher,
		sessions:     sessions,
		logger:       log,
	}
}

type DeleteAccountInput struct {
	UserID   string
	Password string
	JTI      string
	TokenTTL time.Duration
}

// Execute removes the account after re-checking the password. Stray
// profileViews referencing the deleted user are left behind; the
// reconciliation routine prunes them as invalid on its next run.
func (uc *DeleteAccountUseCase) Execute(ctx context.Context, input DeleteAccountInput) error {
	ctx, span := tracer.Start(ctx, "DeleteAccount")
	defer span.End()

	u, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		return apperror.NewUnauthorized("incorrect password", ErrInvalidCredentials)
	}

	if err := uc.settingsRepo.Delete(ctx, u.ID); err != nil {
		uc.logger.Warn("failed to delete settings document", zap.String("user_id", u.ID), zap.Error(err))
	}

	if err := uc.userRepo.Delete(ctx, u.ID); err != nil {
		span.RecordError(err)
		return err
	}

	if input.JTI != "" {
		if err := uc.tokens.RevokeSession(ctx, input.JTI, input.TokenTTL); err != nil {
			uc.logger.Warn("failed to revoke session of deleted account", zap.String("user_id", u.ID), zap.Error(err))
		}
	}

	if uc.publisher != nil {
		payload := event.AccountEventPayload{
			EventType:  event.AccountDeleted,
			UserID:     u.ID,
			Email:      u.Email,
			OccurredAt: time.Now().UTC(),
		}
		if err := uc.publisher.PublishAccountEvent(ctx, payload); err != nil {
			uc.logger.Warn("failed to publish account deletion event", zap.String("user_id", u.ID), zap.Error(err))
		}
	}

	uc.sessions.Publish(identity.SessionEvent{
		Type:   identity.EventDeleted,
		UserID: u.ID,
		Email:  u.Email,
	})

	uc.logger.Info("account deleted", zap.String("user_id", u.ID))
	return nil
}
