package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

func TestMemoryDocStore_SetAndGet(t *testing.T) {
	store := NewMemoryDocStore()
	ctx := context.Background()

	err := store.Set(ctx, "users", "u1", map[string]any{"username": "ada"}, false)
	require.NoError(t, err)

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.ID)
	assert.Equal(t, "ada", doc.Data["username"])
}

func TestMemoryDocStore_GetMissing(t *testing.T) {
	store := NewMemoryDocStore()

	_, err := store.Get(context.Background(), "users", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestMemoryDocStore_SetMergePreservesOtherFields(t *testing.T) {
	store := NewMemoryDocStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"username": "ada", "bio": "hi"}, false))
	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"bio": "hello"}, true))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada", doc.Data["username"])
	assert.Equal(t, "hello", doc.Data["bio"])
}

func TestMemoryDocStore_SetOverwriteReplacesDocument(t *testing.T) {
	store := NewMemoryDocStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"username": "ada", "bio": "hi"}, false))
	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"username": "ada"}, false))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	_, hasBio := doc.Data["bio"]
	assert.False(t, hasBio)
}

func TestMemoryDocStore_AddGeneratesID(t *testing.T) {
	store := NewMemoryDocStore()
	ctx := context.Background()

	id, err := store.Add(ctx, "profileViews", map[string]any{"viewerId": "v1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, "profileViews", id)
	require.NoError(t, err)
	assert.Equal(t, "v1", doc.Data["viewerId"])
}

func TestMemoryDocStore_DeleteMissingIsNoOp(t *testing.T) {
	store := NewMemoryDocStore()

	err := store.Delete(context.Background(), "users", "nope")
	assert.NoError(t, err)
}

func TestMemoryDocStore_QueryMatchesFieldAndHonorsLimit(t *testing.T) {
	store := NewMemoryDocStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, "profileViews", id, map[string]any{"profileId": "p1"}, false))
	}
	require.NoError(t, store.Set(ctx, "profileViews", "other", map[string]any{"profileId": "p2"}, false))

	docs, err := store.Query(ctx, "profileViews", docstore.Filter{Field: "profileId", Value: "p1"}, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	docs, err = store.Query(ctx, "profileViews", docstore.Filter{Field: "profileId", Value: "p1"}, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestMemoryDocStore_SubscribeSeesWritesAndDeletes(t *testing.T) {
	store := NewMemoryDocStore()
	ctx := context.Background()

	var got []*docstore.Document
	unsubscribe := store.Subscribe("users", "u1", func(doc *docstore.Document) {
		got = append(got, doc)
	}, nil)

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"username": "ada"}, false))
	require.NoError(t, store.Delete(ctx, "users", "u1"))

	require.Len(t, got, 2)
	require.NotNil(t, got[0])
	assert.Equal(t, "ada", got[0].Data["username"])
	assert.Nil(t, got[1])

	unsubscribe()
	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"username": "ada"}, false))
	assert.Len(t, got, 2)
}

func TestMemoryDocStore_SubscribeIgnoresOtherDocuments(t *testing.T) {
	store := NewMemoryDocStore()

	calls := 0
	unsubscribe := store.Subscribe("users", "u1", func(*docstore.Document) { calls++ }, nil)
	defer unsubscribe()

	require.NoError(t, store.Set(context.Background(), "users", "u2", map[string]any{"username": "bob"}, false))
	assert.Zero(t, calls)
}
