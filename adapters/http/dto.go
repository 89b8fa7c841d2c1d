package http

import (
	"time"

	"github.com/filipposta/legacy-premium-api/internal/domain/settings"
	"github.com/filipposta/legacy-premium-api/internal/domain/user"
	"github.com/filipposta/legacy-premium-api/internal/domain/views"
)

// Auth DTOs

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type requestResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type confirmResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// Profile DTOs

type ProfileDTO struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	Email         string    `json:"email,omitempty"`
	ProfilePic    string    `json:"profile_pic,omitempty"`
	BackgroundURL string    `json:"background_url,omitempty"`
	Friends       []string  `json:"friends,omitempty"`
	Role          string    `json:"role,omitempty"`
	Privacy       string    `json:"privacy"`
	IsAdult       bool      `json:"is_adult"`
	Bio           string    `json:"bio,omitempty"`
	Location      string    `json:"location,omitempty"`
	Website       string    `json:"website,omitempty"`
	Nationality   string    `json:"nationality,omitempty"`
	Age           int       `json:"age,omitempty"`
	JoinedAt      time.Time `json:"joined_at"`
}

// ToProfileDTO projects a user document for display. Email and the
// friends list stay owner-only.
func ToProfileDTO(u *user.User, isOwner bool) ProfileDTO {
	dto := ProfileDTO{
		ID:            u.ID,
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		ProfilePic:    u.ProfilePic,
		BackgroundURL: u.BackgroundURL,
		Role:          u.Role,
		Privacy:       u.Privacy,
		IsAdult:       u.IsAdult,
		Bio:           u.Bio,
		Location:      u.Location,
		Website:       u.Website,
		Nationality:   u.Nationality,
		Age:           u.Age,
		JoinedAt:      u.JoinedAt,
	}
	if isOwner {
		dto.Email = u.Email
		dto.Friends = u.Friends
	}
	return dto
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	Nationality *string `json:"nationality"`
	Age         *int    `json:"age"`
	Privacy     *string `json:"privacy"`
	IsAdult     *bool   `json:"is_adult"`
}

// Settings DTOs

type SettingsDTO struct {
	Notifications  bool      `json:"notifications"`
	Privacy        string    `json:"privacy"`
	Theme          string    `json:"theme"`
	Language       string    `json:"language"`
	EmailUpdates   bool      `json:"email_updates"`
	DataCollection bool      `json:"data_collection"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToSettingsDTO(s *settings.Settings) SettingsDTO {
	return SettingsDTO{
		Notifications:  s.Notifications,
		Privacy:        s.Privacy,
		Theme:          s.Theme,
		Language:       s.Language,
		EmailUpdates:   s.EmailUpdates,
		DataCollection: s.DataCollection,
		UpdatedAt:      s.UpdatedAt,
	}
}

type updateSettingsRequest struct {
	Notifications  *bool   `json:"notifications"`
	Privacy        *string `json:"privacy"`
	Theme          *string `json:"theme"`
	Language       *string `json:"language"`
	EmailUpdates   *bool   `json:"email_updates"`
	DataCollection *bool   `json:"data_collection"`
}

// Profile-view DTOs

type ReconciledViewDTO struct {
	ID          string    `json:"id"`
	ViewerID    string    `json:"viewer_id"`
	ViewedAt    time.Time `json:"viewed_at"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	ProfilePic  string    `json:"profile_pic,omitempty"`
}

func ToReconciledViewDTOs(in []views.ReconciledView) []ReconciledViewDTO {
	out := make([]ReconciledViewDTO, len(in))
	for i, v := range in {
		out[i] = ReconciledViewDTO{
			ID:          v.ID,
			ViewerID:    v.ViewerID,
			ViewedAt:    v.ViewedAt,
			Username:    v.Viewer.Username,
			DisplayName: v.Viewer.DisplayName,
			ProfilePic:  v.Viewer.ProfilePic,
		}
	}
	return out
}
