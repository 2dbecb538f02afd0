package dto

import (
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	// RememberDevice persists the login on this device for thirty days.
	RememberDevice bool `json:"remember_device"`
}

type LoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	RememberDevice bool   `json:"remember_device"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
	// ProfileComplete is false when the display name still needs to be set;
	// the client routes such logins to the finish-registration screen.
	ProfileComplete bool `json:"profile_complete"`
}

type UserDTO struct {
	Id    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// ExportDataResponse is the full takeout of one account: the profile plus
// every chat session, trashed ones included.
type ExportDataResponse struct {
	User       UserDTO                `json:"user"`
	ExportedAt string                 `json:"exported_at"`
	Sessions   []*ChatSessionResponse `json:"sessions"`
}
