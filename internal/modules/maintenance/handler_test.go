package maintenance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"gearvault/internal/domain"
	"gearvault/internal/middleware"
	"gearvault/internal/modules/equipment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := setup(t)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.GetHeader("X-Test-User"), 10, 64)
		middleware.SetPrincipal(c, domain.Principal{UserID: id})
		c.Next()
	})
	NewHandler(f.svc, nil).RegisterRoutes(api)
	return r, f
}

func do(t *testing.T, r *gin.Engine, method, path string, userID int64, body any) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", strconv.FormatInt(userID, 10))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestMaintenanceEndpoints(t *testing.T) {
	r, f := setupRouter(t)
	id := f.create(t, "Les Paul")
	base := fmt.Sprintf("/api/v1/equipment/%d/maintenance", id)

	code, resp := do(t, r, http.MethodPost, base, f.alice.UserID, gin.H{"description": "Fret repair", "cost": 4500})
	require.Equal(t, http.StatusCreated, code)
	var opened struct {
		Record domain.MaintenanceRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &opened))
	assert.True(t, opened.Record.IsOpen())

	code, resp = do(t, r, http.MethodPost, base, f.alice.UserID, gin.H{"description": "Again"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_IN_MAINTENANCE", resp.Error.Code)

	code, resp = do(t, r, http.MethodGet, base+"/next-due", f.alice.UserID, nil)
	require.Equal(t, http.StatusOK, code)
	var due struct {
		Reminder Reminder `json:"reminder"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &due))
	assert.False(t, due.Reminder.Due)

	closePath := fmt.Sprintf("/api/v1/maintenance/%d/close", opened.Record.ID)
	code, _ = do(t, r, http.MethodPost, closePath, f.bob.UserID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, r, http.MethodPost, closePath, f.alice.UserID, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = do(t, r, http.MethodPost, closePath, f.alice.UserID, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NO_OPEN_RECORD", resp.Error.Code)

	code, resp = do(t, r, http.MethodGet, base, f.alice.UserID, nil)
	require.Equal(t, http.StatusOK, code)
	var history struct {
		Records []domain.MaintenanceRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &history))
	require.Len(t, history.Records, 1)
	assert.Equal(t, int64(4500), *history.Records[0].Cost)
}

func TestOpenOnSoldReturnsTransitionDetails(t *testing.T) {
	r, f := setupRouter(t)
	id := f.create(t, "Old amp")
	_, err := f.equipment.ChangeStatus(t.Context(), f.alice, id, equipment.ChangeStatusRequest{Status: "SOLD"})
	require.NoError(t, err)

	code, resp := do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/equipment/%d/maintenance", id), f.alice.UserID, gin.H{"description": "Check"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
	assert.Equal(t, "SOLD", resp.Error.Details["from"])
	assert.Equal(t, "MAINTENANCE", resp.Error.Details["to"])
}

func TestMaintenanceRejectsBadIDs(t *testing.T) {
	r, f := setupRouter(t)

	code, resp := do(t, r, http.MethodGet, "/api/v1/equipment/abc/maintenance", f.alice.UserID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/maintenance/0/close", f.alice.UserID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
