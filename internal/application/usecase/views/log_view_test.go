package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	"github.com/filipposta/legacy-premium-api/adapters/persistence"
	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

type capturingPublisher struct {
	published []event.ViewEventPayload
	fail      error
}

func (p *capturingPublisher) PublishViewEvent(_ context.Context, payload event.ViewEventPayload) error {
	if p.fail != nil {
		return p.fail
	}
	p.published = append(p.published, payload)
	return nil
}

func TestLogView_AppendsEventAndPublishes(t *testing.T) {
	store := persistence.NewMemoryDocStore()
	pub := &capturingPublisher{}
	uc := NewLogViewUseCase(persistence.NewDocViewRepo(store), pub, logger.NewNop())
	uc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	err := uc.Execute(context.Background(), LogViewInput{ProfileID: "owner-1", ViewerID: "viewer-1"})
	require.NoError(t, err)

	docs, err := store.Query(context.Background(), docstore.CollectionProfileViews,
		docstore.Filter{Field: "profileId", Value: "owner-1"}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "viewer-1", docs[0].Data["viewerId"])
	assert.Equal(t, "2025-06-01T12:00:00Z", docs[0].Data["viewedAt"])

	require.Len(t, pub.published, 1)
	assert.Equal(t, event.ViewLogged, pub.published[0].EventType)
	assert.Equal(t, docs[0].ID, pub.published[0].EventID)
}

func TestLogView_SelfViewIgnored(t *testing.T) {
	store := persistence.NewMemoryDocStore()
	uc := NewLogViewUseCase(persistence.NewDocViewRepo(store), &capturingPublisher{}, logger.NewNop())

	err := uc.Execute(context.Background(), LogViewInput{ProfileID: "u1", ViewerID: "u1"})
	require.NoError(t, err)

	docs, err := store.Query(context.Background(), docstore.CollectionProfileViews,
		docstore.Filter{Field: "profileId", Value: "u1"}, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLogView_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := persistence.NewMemoryDocStore()
	pub := &capturingPublisher{fail: errors.New("broker down")}
	uc := NewLogViewUseCase(persistence.NewDocViewRepo(store), pub, logger.NewNop())

	err := uc.Execute(context.Background(), LogViewInput{ProfileID: "owner-1", ViewerID: "viewer-1"})
	require.NoError(t, err)

	docs, err := store.Query(context.Background(), docstore.CollectionProfileViews,
		docstore.Filter{Field: "profileId", Value: "owner-1"}, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLogView_RequiresIDs(t *testing.T) {
	store := persistence.NewMemoryDocStore()
	uc := NewLogViewUseCase(persistence.NewDocViewRepo(store), nil, logger.NewNop())

	assert.Error(t, uc.Execute(context.Background(), LogViewInput{ProfileID: "", ViewerID: "v"}))
	assert.Error(t, uc.Execute(context.Background(), LogViewInput{ProfileID: "p", ViewerID: ""}))
}
