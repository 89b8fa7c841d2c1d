package user

import (
	"context"
	"errors"
	"net/mail"
	"slices"
	"time"
)

const (
	PrivacyPublic  = "public"
	PrivacyFriends = "friends"
	PrivacyPrivate = "private"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UsernamePlaceholder is what legacy sign-up flows wrote before the
// user picked a name. A profile still carrying it is not a real
// profile and must never be surfaced as a viewer.
const UsernamePlaceholder = "unknown"

type User struct {
	ID            string    `json:"-"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"displayName"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"passwordHash,omitempty"`
	ProfilePic    string    `json:"profilePic,omitempty"`
	BackgroundURL string    `json:"backgroundUrl,omitempty"`
	Friends       []string  `json:"friends,omitempty"`
	Role          string    `json:"role,omitempty"`
	Privacy       string    `json:"privacy,omitempty"`
	IsAdult       bool      `json:"isAdult,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Location      string    `json:"location,omitempty"`
	Website       string    `json:"website,omitempty"`
	Nationality   string    `json:"nationality,omitempty"`
	Age           int       `json:"age,omitempty"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// HasValidUsername reports whether the profile resolved to a real,
// named user rather than a deleted or half-created account.
func (u *User) HasValidUsername() bool {
	return u != nil && u.Username != "" && u.Username != UsernamePlaceholder
}

func (u *User) IsFriend(viewerID string) bool {
	return slices.Contains(u.Friends, viewerID)
}

// CanBeViewedBy applies the profile privacy tiers. Owners and admins
// always pass; the friends tier requires membership in u.Friends.
func (u *User) CanBeViewedBy(viewer *User) bool {
	if viewer != nil && (viewer.ID == u.ID || viewer.Role == RoleAdmin) {
		return true
	}
	switch u.Privacy {
	case PrivacyPrivate:
		return false
	case PrivacyFriends:
		return viewer != nil && u.IsFriend(viewer.ID)
	default:
		return true
	}
}

func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("malformed email address")
	}
	return nil
}

func ValidateUsername(username string) error {
	if username == "" || username == UsernamePlaceholder {
		return errors.New("username is required")
	}
	if len(username) < 3 || len(username) > 30 {
		return errors.New("username must be between 3 and 30 characters")
	}
	return nil
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}
