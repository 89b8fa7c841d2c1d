package views

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/internal/domain/views"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

// CleanupFetchLimit caps the maintenance pass. It is deliberately
// wider than ReconcileFetchLimit, so the two passes can disagree about
// events sitting between the two caps.
const CleanupFetchLimit = 200

// CleanUseCase is the user-triggered maintenance variant of
// reconciliation: it walks a wider window, deletes duplicate and
// orphaned events, then re-runs reconciliation for a fresh list.
type CleanUseCase struct {
	viewRepo  views.Repository
	userRepo  user.Repository
	reconcile *ReconcileUseCase
	logger    logger.Logger
}

func NewCleanUseCase(viewRepo views.Repository, userRepo user.Repository, reconcile *ReconcileUseCase, log logger.Logger) *CleanUseCase {
	return &CleanUseCase{
		viewRepo:  viewRepo,
		userRepo:  userRepo,
		reconcile: reconcile,
		logger:    log,
	}
}

type CleanInput struct {
	OwnerID string
}

type CleanOutput struct {
	Deleted int
	Views   []views.ReconciledView
}

func (uc *CleanUseCase) Execute(ctx context.Context, input CleanInput) (*CleanOutput, error) {
	ctx, span := tracer.Start(ctx, "CleanInvalidViews")
	defer span.End()

	if input.OwnerID == "" {
		return nil, apperror.NewInvalidInput("owner id is required", nil)
	}

	docs, err := uc.viewRepo.ListByProfile(ctx, input.OwnerID, CleanupFetchLimit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	seen := make(map[string]views.ViewEvent)
	marked := make(map[string]string)

	for _, doc := range docs {
		ev := views.EventFromDoc(doc, uc.reconcile.now)
		if ev.ViewerID == "" {
			marked[ev.ID] = pruneReasonMissingViewer
			continue
		}
		if prev, dup := seen[ev.ViewerID]; dup {
			// Keep the newer of the pair, delete the older.
			if ev.ViewedAt.After(prev.ViewedAt) {
				marked[prev.ID] = pruneReasonDuplicate
				seen[ev.ViewerID] = ev
			} else {
				marked[ev.ID] = pruneReasonDuplicate
			}
			continue
		}
		seen[ev.ViewerID] = ev
	}

	// Orphan check: here only existence of the user document matters,
	// not username validity.
	for viewerID, ev := range seen {
		if _, err := uc.userRepo.GetByID(ctx, viewerID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				marked[ev.ID] = pruneReasonInvalidViewer
				continue
			}
			uc.logger.Warn("failed to check viewer existence during cleanup",
				zap.String("viewer_id", viewerID), zap.Error(err))
		}
	}

	deleted := uc.deleteMarked(ctx, marked)
	span.SetAttributes(
		attribute.Int("events_scanned", len(docs)),
		attribute.Int("events_deleted", deleted),
	)

	out, err := uc.reconcile.Execute(ctx, ReconcileInput{OwnerID: input.OwnerID})
	if err != nil {
		return nil, err
	}

	return &CleanOutput{Deleted: deleted, Views: out.Views}, nil
}

func (uc *CleanUseCase) deleteMarked(ctx context.Context, marked map[string]string) int {
	if len(marked) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	deleted := 0
	for id, reason := range marked {
		wg.Add(1)
		go func(id, reason string) {
			defer wg.Done()
			if err := uc.viewRepo.Delete(ctx, id); err != nil {
				pruneFailures.Inc()
				uc.logger.Warn("failed to delete view event during cleanup",
					zap.String("event_id", id), zap.String("reason", reason), zap.Error(err))
				return
			}
			prunedViewEvents.WithLabelValues(reason).Inc()
			mu.Lock()
			deleted++
			mu.Unlock()
		}(id, reason)
	}
	wg.Wait()
	return deleted
}
