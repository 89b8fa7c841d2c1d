package profile

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/internal/application/service"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

const avatarFolder = "legacy/avatars"

type ProfileUseCase struct {
	userRepo user.Repository
	uploader service.Uploader
	logger   logger.Logger
}

func NewProfileUseCase(repo user.Repository, uploader service.Uploader, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo: repo,
		uploader: uploader,
		logger:   log,
	}
}

type GetProfileInput struct {
	TargetID string
	// RequesterID is empty for anonymous visitors.
	RequesterID string
}

type GetProfileOutput struct {
	User *user.User
	// IsOwner makes the handler include private fields.
	IsOwner bool
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "GetProfile")
	defer span.End()

	target, err := uc.userRepo.GetByID(ctx, input.TargetID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var requester *user.User
	if input.RequesterID != "" {
		requester, err = uc.userRepo.GetByID(ctx, input.RequesterID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			span.RecordError(err)
			return nil, err
		}
	}

	if !target.CanBeViewedBy(requester) {
		return nil, apperror.NewPermissionDenied("this profile is not visible to you")
	}

	return &GetProfileOutput{
		User:    target,
		IsOwner: requester != nil && requester.ID == target.ID,
	}, nil
}

type UpdateProfileInput struct {
	UserID      string
	DisplayName *string
	Bio         *string
	Location    *string
	Website     *string
	Nationality *string
	Age         *int
	Privacy     *string
	IsAdult     *bool
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	fields := map[string]any{}
	if input.DisplayName != nil {
		fields["displayName"] = strings.TrimSpace(*input.DisplayName)
	}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if input.Website != nil {
		fields["website"] = *input.Website
	}
	if input.Nationality != nil {
		fields["nationality"] = *input.Nationality
	}
	if input.Age != nil {
		if *input.Age < 0 || *input.Age > 150 {
			return nil, apperror.NewInvalidInput("age is out of range", nil)
		}
		fields["age"] = *input.Age
	}
	if input.Privacy != nil {
		switch *input.Privacy {
		case user.PrivacyPublic, user.PrivacyFriends, user.PrivacyPrivate:
		default:
			return nil, apperror.NewInvalidInput("privacy must be one of public, friends, private", nil)
		}
		fields["privacy"] = *input.Privacy
	}
	if input.IsAdult != nil {
		fields["isAdult"] = *input.IsAdult
	}
	if len(fields) == 0 {
		return nil, apperror.NewInvalidInput("no profile fields to update", nil)
	}

	if err := uc.userRepo.Update(ctx, input.UserID, fields); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return uc.userRepo.GetByID(ctx, input.UserID)
}

type UpdateAvatarInput struct {
	UserID string
	File   io.Reader
}

func (uc *ProfileUseCase) UpdateAvatar(ctx context.Context, input UpdateAvatarInput) (string, error) {
	ctx, span := tracer.Start(ctx, "UpdateAvatar")
	defer span.End()

	if uc.uploader == nil {
		return "", apperror.NewInternal("media storage is not configured", nil)
	}

	url, err := uc.uploader.Upload(ctx, input.File, avatarFolder, input.UserID)
	if err != nil {
		span.RecordError(err)
		return "", apperror.NewInternal("failed to upload avatar", err)
	}

	if err := uc.userRepo.Update(ctx, input.UserID, map[string]any{"profilePic": url}); err != nil {
		span.RecordError(err)
		return "", err
	}

	uc.logger.Info("avatar updated", zap.String("user_id", input.UserID))
	return url, nil
}
