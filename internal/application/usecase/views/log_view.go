package views

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	"github.com/filipposta/legacy-premium-api/internal/domain/views"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

// ViewEventPublisher is the slice of the Kafka producer LogView needs.
type ViewEventPublisher interface {
	PublishViewEvent(ctx context.Context, payload event.ViewEventPayload) error
}

// LogViewUseCase appends a raw ViewEvent when one user opens another's
// profile. Reconciliation collapses duplicates later, so this path
// stays a plain append.
type LogViewUseCase struct {
	viewRepo  views.Repository
	publisher ViewEventPublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewLogViewUseCase(viewRepo views.Repository, publisher ViewEventPublisher, log logger.Logger) *LogViewUseCase {
	return &LogViewUseCase{
		viewRepo:  viewRepo,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

type LogViewInput struct {
	ProfileID string
	ViewerID  string
}

func (uc *LogViewUseCase) Execute(ctx context.Context, input LogViewInput) error {
	if input.ProfileID == "" || input.ViewerID == "" {
		return apperror.NewInvalidInput("profile id and viewer id are required", nil)
	}
	if input.ProfileID == input.ViewerID {
		// Own visits are not views.
		return nil
	}

	at := uc.now()
	id, err := uc.viewRepo.Add(ctx, input.ProfileID, input.ViewerID, at)
	if err != nil {
		return err
	}

	if uc.publisher != nil {
		payload := event.ViewEventPayload{
			EventType: event.ViewLogged,
			ProfileID: input.ProfileID,
			ViewerID:  input.ViewerID,
			EventID:   id,
			ViewedAt:  at.UTC(),
		}
		if err := uc.publisher.PublishViewEvent(ctx, payload); err != nil {
			uc.logger.Warn("failed to publish view event",
				zap.String("event_id", id), zap.Error(err))
		}
	}

	return nil
}
