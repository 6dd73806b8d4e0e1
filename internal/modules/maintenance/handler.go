package maintenance

import (
	"net/http"
	"strconv"

	"gearvault/internal/middleware"
	"gearvault/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/equipment/:id/maintenance", h.ListHistory)
	protected.POST("/equipment/:id/maintenance", h.Open)
	protected.GET("/equipment/:id/maintenance/next-due", h.NextDue)
	protected.POST("/maintenance/:recordId/close", h.Close)
}

// Open starts maintenance on an item.
// POST /api/v1/equipment/:id/maintenance
func (h *Handler) Open(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	rec, err := h.service.Open(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"record": rec})
}

// Close ends an open record. The body is optional.
// POST /api/v1/maintenance/:recordId/close
func (h *Handler) Close(c *gin.Context) {
	id, ok := pathID(c, "recordId")
	if !ok {
		return
	}

	var req CloseRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	rec, err := h.service.Close(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// GET /api/v1/equipment/:id/maintenance
func (h *Handler) ListHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	records, err := h.service.ListHistory(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// GET /api/v1/equipment/:id/maintenance/next-due
func (h *Handler) NextDue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reminder, err := h.service.NextDue(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reminder": reminder})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}
