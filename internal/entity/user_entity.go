package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Email        string
	Name         string
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsProfileComplete mirrors the signup flow: a user whose display name is
// missing, one character long, or still looks like an email address has to
// finish registration before entering the app.
func (u *User) IsProfileComplete() bool {
	if len([]rune(u.Name)) <= 1 {
		return false
	}
	for _, r := range u.Name {
		if r == '@' {
			return false
		}
	}
	return true
}
