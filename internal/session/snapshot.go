package session

import (
	"time"

	"github.com/gittutor/tutor/internal/api"
)

// snapshot is the on-disk session document.
type snapshot struct {
	Token   string     `toml:"token"`
	SavedAt time.Time  `toml:"saved_at"`
	User    storedUser `toml:"user"`
}

type storedUser struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Email      string `toml:"email"`
	Role       string `toml:"role"`
	IsVerified bool   `toml:"is_verified"`
	Avatar     string `toml:"avatar,omitempty"`
}

func fromUser(u api.User) storedUser {
	return storedUser{
		ID:         string(u.ID),
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		Avatar:     u.Avatar,
	}
}

// toUser returns the stored identity. Snapshots written without one report
// false.
func (s storedUser) toUser() (api.User, bool) {
	if s.ID == "" {
		return api.User{}, false
	}
	return api.User{
		ID:         api.ID(s.ID),
		Name:       s.Name,
		Email:      s.Email,
		Role:       api.Role(s.Role),
		IsVerified: s.IsVerified,
		Avatar:     s.Avatar,
	}, true
}
