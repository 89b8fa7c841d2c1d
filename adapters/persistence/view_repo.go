package persistence

import (
	"context"
	"time"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/internal/domain/views"
)

type docViewRepo struct {
	store docstore.Store
}

func NewDocViewRepo(store docstore.Store) views.Repository {
	return &docViewRepo{store: store}
}

func (r *docViewRepo) ListByProfile(ctx context.Context, profileID string, limit int) ([]docstore.Document, error) {
	return r.store.Query(ctx, docstore.CollectionProfileViews,
		docstore.Filter{Field: "profileId", Value: profileID}, limit)
}

func (r *docViewRepo) Add(ctx context.Context, profileID, viewerID string, at time.Time) (string, error) {
	// Legacy clients wrote both fields; keep doing so to stay readable
	// by whatever still consumes the old shape.
	return r.store.Add(ctx, docstore.CollectionProfileViews, map[string]any{
		"profileId": profileID,
		"viewerId":  viewerID,
		"timestamp": at.UnixMilli(),
		"viewedAt":  at.UTC().Format(time.RFC3339),
	})
}

func (r *docViewRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.CollectionProfileViews, id)
}
