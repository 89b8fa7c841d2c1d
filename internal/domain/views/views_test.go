package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
)

func TestEventFromDoc_TimestampPrecedence(t *testing.T) {
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixedNow }

	native := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		data map[string]any
		want time.Time
	}{
		{
			name: "native time value wins",
			data: map[string]any{
				"timestamp": native,
				"viewedAt":  "2020-01-01T00:00:00Z",
			},
			want: native,
		},
		{
			name: "numeric unix millis",
			data: map[string]any{"timestamp": float64(native.UnixMilli())},
			want: native,
		},
		{
			name: "numeric unix seconds",
			data: map[string]any{"timestamp": float64(native.Unix())},
			want: native,
		},
		{
			name: "string RFC3339 timestamp",
			data: map[string]any{"timestamp": "2024-03-10T08:30:00Z"},
			want: native,
		},
		{
			name: "falls back to viewedAt",
			data: map[string]any{"viewedAt": "2024-03-10T08:30:00Z"},
			want: native,
		},
		{
			name: "unparseable timestamp falls back to viewedAt",
			data: map[string]any{
				"timestamp": "not-a-time",
				"viewedAt":  "2024-03-10T08:30:00Z",
			},
			want: native,
		},
		{
			name: "nothing parseable defaults to now",
			data: map[string]any{},
			want: fixedNow,
		},
		{
			name: "empty strings default to now",
			data: map[string]any{"timestamp": "", "viewedAt": ""},
			want: fixedNow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EventFromDoc(docstore.Document{ID: "e1", Data: tt.data}, now)
			assert.True(t, tt.want.Equal(ev.ViewedAt), "got %v want %v", ev.ViewedAt, tt.want)
		})
	}
}

func TestEventFromDoc_Fields(t *testing.T) {
	now := func() time.Time { return time.Now() }

	ev := EventFromDoc(docstore.Document{
		ID: "e42",
		Data: map[string]any{
			"profileId": "owner-1",
			"viewerId":  "viewer-1",
			"viewedAt":  "2024-03-10T08:30:00Z",
		},
	}, now)

	assert.Equal(t, "e42", ev.ID)
	assert.Equal(t, "owner-1", ev.ProfileID)
	assert.Equal(t, "viewer-1", ev.ViewerID)
}

func TestEventFromDoc_MissingViewerID(t *testing.T) {
	now := func() time.Time { return time.Now() }

	ev := EventFromDoc(docstore.Document{
		ID:   "e1",
		Data: map[string]any{"profileId": "owner-1", "viewerId": 42},
	}, now)

	assert.Empty(t, ev.ViewerID)
}
