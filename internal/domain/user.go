package domain

import "time"

type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Roles           []Role     `json:"roles"`
	Name            string     `json:"name"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	Active          bool       `json:"active"`
	DeactivatedAt   *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (u *User) Principal() Principal {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return Principal{UserID: u.ID, Roles: roles}
}
