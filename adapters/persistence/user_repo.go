package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

type docUserRepo struct {
	store docstore.Store
}

func NewDocUserRepo(store docstore.Store) user.Repository {
	return &docUserRepo{store: store}
}

func userToDoc(u *user.User) (map[string]any, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("cannot encode user document: %w", err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("cannot encode user document: %w", err)
	}
	return data, nil
}

func userFromDoc(doc *docstore.Document) (*user.User, error) {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode user document %s: %w", doc.ID, err)
	}
	u := &user.User{}
	if err := json.Unmarshal(raw, u); err != nil {
		return nil, fmt.Errorf("cannot decode user document %s: %w", doc.ID, err)
	}
	u.ID = doc.ID
	return u, nil
}

func (r *docUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	return userFromDoc(doc)
}

func (r *docUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, docstore.Filter{Field: "email", Value: email})
}

func (r *docUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, docstore.Filter{Field: "username", Value: username})
}

func (r *docUserRepo) findOne(ctx context.Context, filter docstore.Filter) (*user.User, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionUsers, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperror.NewNotFound("user", fmt.Sprintf("%v", filter.Value))
	}
	return userFromDoc(&docs[0])
}

func (r *docUserRepo) Create(ctx context.Context, u *user.User) error {
	data, err := userToDoc(u)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, docstore.CollectionUsers, u.ID, data, false)
}

func (r *docUserRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Set(ctx, docstore.CollectionUsers, id, fields, true)
}

func (r *docUserRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.CollectionUsers, id)
}
