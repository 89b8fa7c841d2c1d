package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/internal/identity"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

var tracer = otel.Tracer("auth_usecase")

type LoginUseCase struct {
	userRepo    user.Repository
	jwtSvc      *auth.JWTService
	tokens      TokenStore
	sessions    *identity.Sessions
	maxAttempts int
	logger      logger.Logger
}

func NewLoginUseCase(repo user.Repository, jwtSvc *auth.JWTService, tokens TokenStore, sessions *identity.Sessions, maxAttempts int, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		userRepo:    repo,
		jwtSvc:      jwtSvc,
		tokens:      tokens,
		sessions:    sessions,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string
	UserID      string
	DisplayName string
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := user.ValidateEmail(email); err != nil {
		return nil, apperror.NewInvalidInput("malformed email address", err)
	}

	fails, err := uc.tokens.SignInFailures(ctx, email)
	if err != nil {
		uc.logger.Warn("cannot read sign-in failure counter", zap.String("email", email), zap.Error(err))
	}
	if fails >= uc.maxAttempts {
		return nil, apperror.NewRateLimited("too many failed sign-in attempts")
	}

	u, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewAppError(apperror.ErrUnauthorized, ErrUnknownUser.Error(), "email: "+email, nil)
		}
		span.RecordError(err)
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		if _, err := uc.tokens.RecordSignInFailure(ctx, email); err != nil {
			uc.logger.Warn("cannot record sign-in failure", zap.String("email", email), zap.Error(err))
		}
		err := apperror.NewUnauthorized("incorrect password", ErrInvalidCredentials)
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(u.ID, u.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}

	if err := uc.tokens.ClearSignInFailures(ctx, email); err != nil {
		uc.logger.Warn("cannot clear sign-in failure counter", zap.String("email", email), zap.Error(err))
	}

	uc.sessions.Publish(identity.SessionEvent{
		Type:        identity.EventSignedIn,
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	})

	span.SetAttributes(attribute.String("user_id", u.ID))
	return &LoginOutput{AccessToken: token, UserID: u.ID, DisplayName: u.DisplayName}, nil
}
