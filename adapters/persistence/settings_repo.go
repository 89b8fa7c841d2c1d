package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/internal/domain/settings"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

type docSettingsRepo struct {
	store docstore.Store
}

func NewDocSettingsRepo(store docstore.Store) settings.Repository {
	return &docSettingsRepo{store: store}
}

func (r *docSettingsRepo) Get(ctx context.Context, userID string) (*settings.Settings, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUserSettings, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return settings.Defaults(userID), nil
		}
		return nil, err
	}

	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode settings document %s: %w", userID, err)
	}
	s := settings.Defaults(userID)
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("cannot decode settings document %s: %w", userID, err)
	}
	s.UserID = userID
	return s, nil
}

func (r *docSettingsRepo) Upsert(ctx context.Context, s *settings.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("cannot encode settings document %s: %w", s.UserID, err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("cannot encode settings document %s: %w", s.UserID, err)
	}
	return r.store.Set(ctx, docstore.CollectionUserSettings, s.UserID, data, true)
}

func (r *docSettingsRepo) Delete(ctx context.Context, userID string) error {
	return r.store.Delete(ctx, docstore.CollectionUserSettings, userID)
}
