package settings

import (
	"context"
	"errors"
	"time"

	"github.com/filipposta/legacy-premium-api/internal/domain/user"
)

type Settings struct {
	UserID         string    `json:"-"`
	Notifications  bool      `json:"notifications"`
	Privacy        string    `json:"privacy"`
	Theme          string    `json:"theme"`
	Language       string    `json:"language"`
	EmailUpdates   bool      `json:"emailUpdates"`
	DataCollection bool      `json:"dataCollection"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Defaults mirrors what the product provisions for a fresh account.
func Defaults(userID string) *Settings {
	return &Settings{
		UserID:         userID,
		Notifications:  true,
		Privacy:        user.PrivacyPublic,
		Theme:          "dark",
		Language:       "en",
		EmailUpdates:   true,
		DataCollection: true,
	}
}

func (s *Settings) Validate() error {
	switch s.Privacy {
	case user.PrivacyPublic, user.PrivacyFriends, user.PrivacyPrivate:
	default:
		return errors.New("privacy must be one of public, friends, private")
	}
	if s.Language == "" {
		return errors.New("language is required")
	}
	return nil
}

type Repository interface {
	// Get returns stored settings, or Defaults when the user has no
	// settings document yet.
	Get(ctx context.Context, userID string) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
	Delete(ctx context.Context, userID string) error
}
