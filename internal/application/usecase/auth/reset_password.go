package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

type ResetPasswordUseCase struct {
	userRepo  user.Repository
	tokens    TokenStore
	publisher AccountEventPublisher
	logger    logger.Logger
}

func NewResetPasswordUseCase(userRepo user.Repository, tokens TokenStore, publisher AccountEventPublisher, log logger.Logger) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{
		userRepo:  userRepo,
		tokens:    tokens,
		publisher: publisher,
		logger:    log,
	}
}

type RequestResetInput struct {
	Email string
}

// Request issues a single-use reset token and hands it to the account
// events topic, which is where the mail sender listens.
func (uc *ResetPasswordUseCase) Request(ctx context.Context, input RequestResetInput) error {
	ctx, span := tracer.Start(ctx, "RequestPasswordReset")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := user.ValidateEmail(email); err != nil {
		return apperror.NewInvalidInput("malformed email address", err)
	}

	u, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NewAppError(apperror.ErrUnauthorized, ErrUnknownUser.Error(), "email: "+email, nil)
		}
		span.RecordError(err)
		return err
	}

	token, err := uc.tokens.CreateResetToken(ctx, u.ID)
	if err != nil {
		span.RecordError(err)
		return apperror.NewInternal("failed to create reset token", err)
	}

	if uc.publisher != nil {
		payload := event.AccountEventPayload{
			EventType:  event.PasswordResetRequested,
			UserID:     u.ID,
			Email:      u.Email,
			ResetToken: token,
			OccurredAt: time.Now().UTC(),
		}
		if err := uc.publisher.PublishAccountEvent(ctx, payload); err != nil {
			uc.logger.Error("failed to publish password reset event", err, zap.String("user_id", u.ID))
			return apperror.NewInternal("failed to dispatch reset email", err)
		}
	}

	return nil
}

type ConfirmResetInput struct {
	Token       string
	NewPassword string
}

func (uc *ResetPasswordUseCase) Confirm(ctx context.Context, input ConfirmResetInput) error {
	ctx, span := tracer.Start(ctx, "ConfirmPasswordReset")
	defer span.End()

	if input.Token == "" {
		return apperror.NewInvalidInput("reset token is required", nil)
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}

	userID, err := uc.tokens.ConsumeResetToken(ctx, input.Token)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := uc.userRepo.Update(ctx, userID, map[string]any{"passwordHash": hash}); err != nil {
		span.RecordError(err)
		return err
	}

	uc.logger.Info("password reset completed", zap.String("user_id", userID))
	return nil
}
