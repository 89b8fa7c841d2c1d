package settings

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/internal/domain/settings"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

type SettingsUseCase struct {
	settingsRepo settings.Repository
	userRepo     user.Repository
	logger       logger.Logger
}

func NewSettingsUseCase(settingsRepo settings.Repository, userRepo user.Repository, log logger.Logger) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
		userRepo:     userRepo,
		logger:       log,
	}
}

type GetSettingsInput struct {
	UserID string
}

func (uc *SettingsUseCase) Get(ctx context.Context, input GetSettingsInput) (*settings.Settings, error) {
	return uc.settingsRepo.Get(ctx, input.UserID)
}

type UpdateSettingsInput struct {
	UserID         string
	Notifications  *bool
	Privacy        *string
	Theme          *string
	Language       *string
	EmailUpdates   *bool
	DataCollection *bool
}

func (uc *SettingsUseCase) Update(ctx context.Context, input UpdateSettingsInput) (*settings.Settings, error) {
	current, err := uc.settingsRepo.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Notifications != nil {
		current.Notifications = *input.Notifications
	}
	if input.Privacy != nil {
		current.Privacy = *input.Privacy
	}
	if input.Theme != nil {
		current.Theme = *input.Theme
	}
	if input.Language != nil {
		current.Language = *input.Language
	}
	if input.EmailUpdates != nil {
		current.EmailUpdates = *input.EmailUpdates
	}
	if input.DataCollection != nil {
		current.DataCollection = *input.DataCollection
	}
	current.UpdatedAt = time.Now().UTC()

	if err := current.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.settingsRepo.Upsert(ctx, current); err != nil {
		return nil, err
	}

	// The profile privacy tier lives on the user document too; keep
	// both in step so profile reads enforce what settings say.
	if input.Privacy != nil {
		if err := uc.userRepo.Update(ctx, input.UserID, map[string]any{"privacy": current.Privacy}); err != nil {
			uc.logger.Warn("failed to mirror privacy onto user document",
				zap.String("user_id", input.UserID), zap.Error(err))
		}
	}

	return current, nil
}
