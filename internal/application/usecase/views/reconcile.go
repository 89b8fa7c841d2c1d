package views

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/internal/domain/views"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

// ReconcileFetchLimit caps how many raw view events one reconciliation
// run reads. High-traffic profiles can hold more than this; events
// past the cap are simply not seen by the run.
const ReconcileFetchLimit = 100

var tracer = otel.Tracer("views_usecase")

// ReconcileUseCase collapses raw profileViews documents into the
// deduplicated "who viewed me" list, opportunistically pruning
// superseded and invalid source events along the way.
type ReconcileUseCase struct {
	viewRepo views.Repository
	userRepo user.Repository
	logger   logger.Logger
	now      func() time.Time
}

func NewReconcileUseCase(viewRepo views.Repository, userRepo user.Repository, log logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{
		viewRepo: viewRepo,
		userRepo: userRepo,
		logger:   log,
		now:      time.Now,
	}
}

type ReconcileInput struct {
	OwnerID string
}

type ReconcileOutput struct {
	Views []views.ReconciledView
}

func (uc *ReconcileUseCase) Execute(ctx context.Context, input ReconcileInput) (*ReconcileOutput, error) {
	ctx, span := tracer.Start(ctx, "ReconcileViews")
	defer span.End()

	if input.OwnerID == "" {
		return nil, apperror.NewInvalidInput("owner id is required", nil)
	}
	span.SetAttributes(attribute.String("owner_id", input.OwnerID))

	docs, err := uc.viewRepo.ListByProfile(ctx, input.OwnerID, ReconcileFetchLimit)
	if err != nil {
		span.RecordError(err)
		reconcileRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	// viewerId -> most recent event seen so far. Everything that loses
	// the max-reduction, or never qualifies for it, gets marked.
	best := make(map[string]views.ViewEvent)
	marked := make(map[string]string)

	for _, doc := range docs {
		ev := views.EventFromDoc(doc, uc.now)
		if ev.ViewerID == "" {
			marked[ev.ID] = pruneReasonMissingViewer
			continue
		}
		prev, seen := best[ev.ViewerID]
		if !seen {
			best[ev.ViewerID] = ev
			continue
		}
		if ev.ViewedAt.After(prev.ViewedAt) {
			marked[prev.ID] = pruneReasonDuplicate
			best[ev.ViewerID] = ev
		} else {
			marked[ev.ID] = pruneReasonDuplicate
		}
	}

	result := make([]views.ReconciledView, 0, len(best))
	for viewerID, ev := range best {
		viewer, ok := uc.resolveViewer(ctx, viewerID)
		if !ok {
			marked[ev.ID] = pruneReasonInvalidViewer
			continue
		}
		result = append(result, views.ReconciledView{
			ID:       ev.ID,
			ViewerID: viewerID,
			ViewedAt: ev.ViewedAt,
			Viewer:   viewer,
		})
	}

	uc.pruneMarked(ctx, marked)

	sort.Slice(result, func(i, j int) bool {
		return result[i].ViewedAt.After(result[j].ViewedAt)
	})

	reconcileRuns.WithLabelValues("ok").Inc()
	reconciledViewers.Add(float64(len(result)))
	span.SetAttributes(
		attribute.Int("events_fetched", len(docs)),
		attribute.Int("viewers_returned", len(result)),
		attribute.Int("events_pruned", len(marked)),
	)

	return &ReconcileOutput{Views: result}, nil
}

// resolveViewer degrades any per-viewer failure to "invalid" so a
// single bad profile read never aborts the run.
func (uc *ReconcileUseCase) resolveViewer(ctx context.Context, viewerID string) (views.ViewerProfile, bool) {
	u, err := uc.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			uc.logger.Warn("failed to resolve viewer profile, treating as invalid",
				zap.String("viewer_id", viewerID), zap.Error(err))
		}
		return views.ViewerProfile{}, false
	}
	if !u.HasValidUsername() {
		return views.ViewerProfile{}, false
	}
	return views.ViewerProfile{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		ProfilePic:  u.ProfilePic,
	}, true
}

// pruneMarked deletes every marked event in parallel and waits for the
// batch to settle. Failures are logged and dropped; a later run will
// mark the same events again.
func (uc *ReconcileUseCase) pruneMarked(ctx context.Context, marked map[string]string) {
	if len(marked) == 0 {
		return
	}

	var wg sync.WaitGroup
	for id, reason := range marked {
		wg.Add(1)
		go func(id, reason string) {
			defer wg.Done()
			if err := uc.viewRepo.Delete(ctx, id); err != nil {
				pruneFailures.Inc()
				uc.logger.Warn("failed to prune view event",
					zap.String("event_id", id), zap.String("reason", reason), zap.Error(err))
				return
			}
			prunedViewEvents.WithLabelValues(reason).Inc()
		}(id, reason)
	}
	wg.Wait()
}
