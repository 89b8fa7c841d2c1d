package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	"github.com/filipposta/legacy-premium-api/internal/domain/settings"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/internal/identity"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

type RegisterUseCase struct {
	userRepo     user.Repository
	settingsRepo settings.Repository
	jwtSvc       *auth.JWTService
	publisher    AccountEventPublisher
	sessions     *identity.Sessions
	logger       logger.Logger
}

func NewRegisterUseCase(userRepo user.Repository, settingsRepo settings.Repository, jwtSvc *auth.JWTService, publisher AccountEventPublisher, sessions *identity.Sessions, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		jwtSvc:       jwtSvc,
		publisher:    publisher,
		sessions:     sessions,
		logger:       log,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	Username    string
	DisplayName string
}

type RegisterOutput struct {
	AccessToken string
	UserID      string
}

func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := user.ValidateEmail(email); err != nil {
		return nil, apperror.NewInvalidInput("malformed email address", err)
	}
	username := strings.TrimSpace(input.Username)
	if err := user.ValidateUsername(username); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if _, err := uc.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.NewConflict("user", "email", email)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}
	if _, err := uc.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, apperror.NewConflict("user", "username", username)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		Privacy:      user.PrivacyPublic,
		JoinedAt:     time.Now().UTC(),
	}
	if err := uc.userRepo.Create(ctx, u); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := uc.settingsRepo.Upsert(ctx, settings.Defaults(u.ID)); err != nil {
		// The account exists; missing settings fall back to defaults
		// on read.
		uc.logger.Warn("failed to provision default settings",
			zap.String("user_id", u.ID), zap.Error(err))
	}

	token, err := uc.jwtSvc.GenerateToken(u.ID, u.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token after registration", err, zap.String("user_id", u.ID))
		return nil, apperror.NewInternal("failed to generate token", err)
	}

	if uc.publisher != nil {
		payload := event.AccountEventPayload{
			EventType:  event.AccountRegistered,
			UserID:     u.ID,
			Email:      u.Email,
			OccurredAt: time.Now().UTC(),
		}
		if err := uc.publisher.PublishAccountEvent(ctx, payload); err != nil {
			uc.logger.Warn("failed to publish account event", zap.String("user_id", u.ID), zap.Error(err))
		}
	}

	uc.sessions.Publish(identity.SessionEvent{
		Type:        identity.EventSignedIn,
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	})

	return &RegisterOutput{AccessToken: token, UserID: u.ID}, nil
}
