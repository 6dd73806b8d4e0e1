package auth

import (
	"context"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/pkg/jwt"
)

// UserRepository lists the user store methods the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	Deactivate(ctx context.Context, id int64, at time.Time) error
}

type tokenService interface {
	GenerateToken(userID int64, roles []string) (string, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

// AttemptLimiter counts failed logins per key and locks the key once the
// limit is reached until the window expires.
type AttemptLimiter interface {
	Locked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}
