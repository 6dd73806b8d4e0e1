package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gearvault/internal/config"
	"gearvault/internal/domain"
	"gearvault/internal/pkg/jwt"
	"gearvault/internal/repository"
	"gearvault/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type E2ETestSuite struct {
	router     *gin.Engine
	store      *repository.Store
	jwtService *jwt.Service
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	gin.SetMode(gin.TestMode)
	store := testutil.NewStore(t)
	jwtService := jwt.New("test_secret_key_32_characters_min", time.Hour)

	cfg := &config.Config{
		AppEnv:              "test",
		LoginMaxAttempts:    5,
		LoginLockout:        time.Minute,
		MaintenanceInterval: 180 * 24 * time.Hour,
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
	}

	a := New(Deps{Config: cfg, Store: store, Tokens: jwtService})
	return &E2ETestSuite{router: a.Router, store: store, jwtService: jwtService}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) (int, *TestResponse) {
	t.Helper()
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, &resp
}

func (s *E2ETestSuite) register(t *testing.T, email string) string {
	t.Helper()
	code, resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, code)
	token, ok := resp.Data["token"].(string)
	require.True(t, ok)
	return token
}

func idOf(t *testing.T, data map[string]interface{}, key string) int64 {
	t.Helper()
	obj, ok := data[key].(map[string]interface{})
	require.True(t, ok, "missing %s", key)
	return int64(obj["id"].(float64))
}

func TestEquipmentLifecycleFlow(t *testing.T) {
	s := setupTestSuite(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	code, resp := s.makeRequest(t, http.MethodPost, "/api/v1/equipment", map[string]interface{}{
		"name":         "Les Paul",
		"manufacturer": "Gibson",
		"status":       "SOLD",
	}, alice)
	require.Equal(t, http.StatusCreated, code)
	equipmentID := idOf(t, resp.Data, "equipment")
	assert.Equal(t, "ACTIVE", resp.Data["equipment"].(map[string]interface{})["status"])

	base := fmt.Sprintf("/api/v1/equipment/%d", equipmentID)

	code, resp = s.makeRequest(t, http.MethodPost, base+"/maintenance", map[string]string{"description": "Fret repair"}, alice)
	require.Equal(t, http.StatusCreated, code)
	recordID := idOf(t, resp.Data, "record")

	code, resp = s.makeRequest(t, http.MethodGet, base, nil, bob)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	code, missing := s.makeRequest(t, http.MethodGet, "/api/v1/equipment/99999", nil, bob)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, resp.Error, missing.Error)

	code, resp = s.makeRequest(t, http.MethodDelete, base, nil, alice)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "REFERENTIAL_INTEGRITY", resp.Error.Code)

	code, resp = s.makeRequest(t, http.MethodPost, base+"/status", map[string]string{"status": "SOLD"}, alice)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SOLD", resp.Data["equipment"].(map[string]interface{})["status"])

	rec, err := s.store.Maintenance().GetByID(t.Context(), recordID)
	require.NoError(t, err)
	assert.NotNil(t, rec.ClosedAt)

	code, resp = s.makeRequest(t, http.MethodPost, base+"/status", map[string]string{"status": "ACTIVE"}, alice)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
	assert.Equal(t, "SOLD", resp.Error.Details["from"])
}

func TestAuthFlow(t *testing.T) {
	s := setupTestSuite(t)
	token := s.register(t, "user@example.com")

	code, resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Again",
		"email":    "USER@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)

	code, resp = s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)

	code, resp = s.makeRequest(t, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user@example.com", resp.Data["user"].(map[string]interface{})["email"])

	code, _ = s.makeRequest(t, http.MethodDelete, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "ACCOUNT_INACTIVE", resp.Error.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupTestSuite(t)

	code, resp := s.makeRequest(t, http.MethodGet, "/api/v1/equipment", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)

	code, resp = s.makeRequest(t, http.MethodGet, "/api/v1/equipment", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)
}

func TestAdminDeactivation(t *testing.T) {
	s := setupTestSuite(t)
	userToken := s.register(t, "user@example.com")
	admin := testutil.CreateUser(t, s.store, "admin@example.com", domain.RoleUser, domain.RoleAdmin)
	adminToken, err := s.jwtService.GenerateToken(admin.ID, []string{"user", "admin"})
	require.NoError(t, err)

	user, err := s.store.Users().GetByEmail(t.Context(), "user@example.com")
	require.NoError(t, err)
	path := fmt.Sprintf("/api/v1/admin/users/%d/deactivate", user.ID)

	code, resp := s.makeRequest(t, http.MethodPost, path, nil, userToken)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	code, _ = s.makeRequest(t, http.MethodPost, path, nil, adminToken)
	require.Equal(t, http.StatusOK, code)

	user, err = s.store.Users().GetByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.False(t, user.Active)
}

func TestHealth(t *testing.T) {
	s := setupTestSuite(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestResponsesCarrySecurityHeaders(t *testing.T) {
	s := setupTestSuite(t)

	for _, path := range []string{"/health", "/api/v1/equipment"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		h := w.Header()
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"), path)
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"), path)
		assert.Equal(t, "no-referrer", h.Get("Referrer-Policy"), path)
		assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'none'", path)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/equipment", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
