package auth

import (
	"time"

	"gearvault/internal/domain"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=100"`
	ProfileImageURL *string `json:"profile_image_url" validate:"omitempty,url"`
}

type UserPublic struct {
	ID              int64         `json:"id"`
	Email           string        `json:"email"`
	Name            string        `json:"name"`
	Roles           []domain.Role `json:"roles"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
	Active          bool          `json:"active"`
	CreatedAt       time.Time     `json:"created_at"`
}

type AuthResult struct {
	User      UserPublic `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func toPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Roles:           u.Roles,
		ProfileImageURL: u.ProfileImageURL,
		Active:          u.Active,
		CreatedAt:       u.CreatedAt,
	}
}
