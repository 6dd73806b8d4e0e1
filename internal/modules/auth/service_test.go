package auth

import (
	"context"
	"testing"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/jwt"
	"gearvault/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 42
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// Mock JWT service
type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) GenerateToken(userID int64, roles []string) (string, error) {
	args := m.Called(userID, roles)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) ValidateToken(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Claims), args.Error(1)
}

func newService(users *mockUserRepo, tokens *mockTokens) *Service {
	return NewService(users, tokens, NewMemoryLimiter(3, time.Minute), time.Hour, nil)
}

func storedUser(t *testing.T, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           7,
		Email:        "test@example.com",
		PasswordHash: string(hash),
		Name:         "Test",
		Roles:        []domain.Role{domain.RoleUser},
		Active:       active,
	}
}

func TestService_Register_Success(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockTokens)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "test@example.com" && u.PasswordHash != "secret-password" && u.Active
	})).Return(nil)
	tokens.On("GenerateToken", int64(42), []string{"user"}).Return("fake-jwt-token", nil)

	result, err := newService(users, tokens).Register(context.Background(), RegisterRequest{
		Name:     "Test",
		Email:    "  Test@Example.com ",
		Password: "secret-password",
	})

	require.NoError(t, err)
	assert.Equal(t, "fake-jwt-token", result.Token)
	assert.Equal(t, int64(42), result.User.ID)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	users := new(mockUserRepo)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrUniqueViolation)

	_, err := newService(users, new(mockTokens)).Register(context.Background(), RegisterRequest{
		Name:     "Test",
		Email:    "test@example.com",
		Password: "secret-password",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_Login_Success(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockTokens)
	users.On("GetByEmail", mock.Anything, "test@example.com").Return(storedUser(t, "correct-horse", true), nil)
	tokens.On("GenerateToken", int64(7), []string{"user"}).Return("token", nil)

	result, err := newService(users, tokens).Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "correct-horse"})

	require.NoError(t, err)
	assert.Equal(t, "token", result.Token)
	assert.Equal(t, int64(7), result.User.ID)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "test@example.com").Return(storedUser(t, "correct-horse", true), nil)
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
	svc := newService(users, new(mockTokens))

	_, err := svc.Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_LocksAfterRepeatedFailures(t *testing.T) {
	users := new(mockUserRepo)
	tokens := new(mockTokens)
	users.On("GetByEmail", mock.Anything, "test@example.com").Return(storedUser(t, "correct-horse", true), nil)
	svc := newService(users, tokens)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestService_Login_InactiveAccount(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "test@example.com").Return(storedUser(t, "correct-horse", false), nil)

	_, err := newService(users, new(mockTokens)).Login(context.Background(), LoginRequest{Email: "test@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestService_UpdateProfile(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).Return(storedUser(t, "pw", true), nil)
	users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "New Name"
	})).Return(nil)
	svc := newService(users, new(mockTokens))
	p := domain.Principal{UserID: 7}

	name := "  New Name "
	out, err := svc.UpdateProfile(context.Background(), p, UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", out.Name)

	bad := "not a url"
	_, err = svc.UpdateProfile(context.Background(), p, UpdateProfileRequest{ProfileImageURL: &bad})
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "profile_image_url")
	users.AssertNumberOfCalls(t, "UpdateProfile", 1)
}

func TestService_DeactivateUser_RequiresAdmin(t *testing.T) {
	users := new(mockUserRepo)
	users.On("Deactivate", mock.Anything, int64(9), mock.Anything).Return(nil)
	users.On("Deactivate", mock.Anything, int64(404), mock.Anything).Return(repository.ErrNotFound)
	svc := newService(users, new(mockTokens))
	ctx := context.Background()

	err := svc.DeactivateUser(ctx, domain.Principal{UserID: 1, Roles: []domain.Role{domain.RoleUser}}, 9)
	assert.ErrorIs(t, err, apperror.ErrAccessDenied)
	users.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything, mock.Anything)

	admin := domain.Principal{UserID: 1, Roles: []domain.Role{domain.RoleAdmin}}
	require.NoError(t, svc.DeactivateUser(ctx, admin, 9))
	assert.ErrorIs(t, svc.DeactivateUser(ctx, admin, 404), apperror.ErrAccessDenied)
}

func TestIdentity_Verify(t *testing.T) {
	tokens := new(mockTokens)
	tokens.On("ValidateToken", "good").Return(&jwt.Claims{UserID: 5, Roles: []string{"user", "admin"}}, nil)
	tokens.On("ValidateToken", "bad").Return(nil, jwt.ErrInvalidToken)
	id := NewIdentity(tokens)

	p, err := id.Verify("good")
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.UserID)
	assert.True(t, p.HasRole(domain.RoleAdmin))

	_, err = id.Verify("bad")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
