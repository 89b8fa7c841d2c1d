package views

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
)

// ViewEvent is one raw "viewer visited this profile" record as it
// sits in the profileViews collection. Duplicates per
// (ProfileID, ViewerID) pair are expected.
type ViewEvent struct {
	ID        string
	ProfileID string
	ViewerID  string
	ViewedAt  time.Time
}

// ViewerProfile is the slice of a user document the viewers list
// displays.
type ViewerProfile struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	ProfilePic  string `json:"profilePic,omitempty"`
}

// ReconciledView is the deduplicated, validated output unit: one per
// distinct viewer, carrying the id of the most recent source event.
type ReconciledView struct {
	ID       string        `json:"id"`
	ViewerID string        `json:"viewerId"`
	ViewedAt time.Time     `json:"viewedAt"`
	Viewer   ViewerProfile `json:"viewer"`
}

// EventFromDoc maps a raw document into a ViewEvent. The timestamp is
// resolved with this precedence: a native time value, then a
// numeric/string "timestamp" field, then "viewedAt", then now. Legacy
// clients wrote all three shapes. An event with no parseable
// timestamp therefore reports as the most recent; that is inherited
// behavior callers rely on not changing.
func EventFromDoc(doc docstore.Document, now func() time.Time) ViewEvent {
	ev := ViewEvent{ID: doc.ID}
	if v, ok := doc.Data["profileId"].(string); ok {
		ev.ProfileID = v
	}
	if v, ok := doc.Data["viewerId"].(string); ok {
		ev.ViewerID = v
	}

	if ts, ok := parseTimeValue(doc.Data["timestamp"]); ok {
		ev.ViewedAt = ts
	} else if ts, ok := parseTimeValue(doc.Data["viewedAt"]); ok {
		ev.ViewedAt = ts
	} else {
		ev.ViewedAt = now()
	}
	return ev
}

func parseTimeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case float64:
		return fromEpoch(t), true
	case int64:
		return fromEpoch(float64(t)), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return fromEpoch(f), true
		}
	case string:
		if t == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return fromEpoch(f), true
		}
	}
	return time.Time{}, false
}

// fromEpoch accepts either unix seconds or unix milliseconds; legacy
// records hold both. Anything above ~year 33658 in seconds is treated
// as milliseconds.
func fromEpoch(f float64) time.Time {
	const msThreshold = 1e12
	if f >= msThreshold {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Unix(int64(f), 0).UTC()
}

type Repository interface {
	// ListByProfile returns raw view documents addressed to profileID,
	// capped at limit, in no particular order.
	ListByProfile(ctx context.Context, profileID string, limit int) ([]docstore.Document, error)
	Add(ctx context.Context, profileID, viewerID string, at time.Time) (string, error)
	Delete(ctx context.Context, id string) error
}
