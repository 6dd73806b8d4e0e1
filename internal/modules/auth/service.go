package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/validator"
	"gearvault/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service contains the account logic: registration, login and the
// caller's own profile.
type Service struct {
	users    UserRepository
	tokens   tokenService
	limiter  AttemptLimiter
	tokenTTL time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewService(users UserRepository, tokens tokenService, limiter AttemptLimiter, tokenTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		limiter:  limiter,
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidationError("name", "is required")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Roles:        []domain.Role{domain.RoleUser},
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login checks the lockout window before the password so a locked key does
// not leak whether the password was right.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)

	locked, err := s.limiter.Locked(ctx, email)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.fail(ctx, email)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.fail(ctx, email)
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn("reset login attempts", zap.Error(err))
	}
	return s.issue(user)
}

func (s *Service) Me(ctx context.Context, p domain.Principal) (*UserPublic, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrUnauthenticated
		}
		return nil, err
	}
	out := toPublic(user)
	return &out, nil
}

func (s *Service) UpdateProfile(ctx context.Context, p domain.Principal, req UpdateProfileRequest) (*UserPublic, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.NewValidationError("name", "is required")
		}
		user.Name = name
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = strings.TrimSpace(*req.ProfileImageURL)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	out := toPublic(user)
	return &out, nil
}

// Deactivate closes the caller's own account.
func (s *Service) Deactivate(ctx context.Context, p domain.Principal) error {
	if p.IsZero() {
		return apperror.ErrUnauthenticated
	}
	return s.deactivate(ctx, p.UserID)
}

// DeactivateUser is the admin variant. It only flips the account state and
// never exposes the user's equipment.
func (s *Service) DeactivateUser(ctx context.Context, p domain.Principal, userID int64) error {
	if !p.HasRole(domain.RoleAdmin) {
		return apperror.ErrAccessDenied
	}
	if err := s.deactivate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.ErrAccessDenied
		}
		return err
	}
	s.log.Info("user deactivated by admin", zap.Int64("admin_id", p.UserID), zap.Int64("user_id", userID))
	return nil
}

func (s *Service) deactivate(ctx context.Context, userID int64) error {
	return s.users.Deactivate(ctx, userID, s.now())
}

func (s *Service) issue(user *domain.User) (*AuthResult, error) {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}
	token, err := s.tokens.GenerateToken(user.ID, roles)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:      toPublic(user),
		Token:     token,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}, nil
}

func (s *Service) fail(ctx context.Context, email string) error {
	if _, err := s.limiter.Fail(ctx, email); err != nil {
		s.log.Warn("record failed login", zap.Error(err))
	}
	return ErrInvalidCredentials
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
