package catalog

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
	categories := protected.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.RenameCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	locations := protected.Group("/locations")
	{
		locations.GET("", h.ListLocations)
		locations.POST("", h.CreateLocation)
		locations.PUT("/:id", h.UpdateLocation)
		locations.DELETE("/:id", h.DeleteLocation)
	}
}

/* ---------- CATEGORY HANDLERS ---------- */

// GET /api/v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	items, err := h.service.ListCategories(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": items})
}

// POST /api/v1/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"category": category})
}

// PUT /api/v1/categories/:id
func (h *Handler) RenameCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	category, err := h.service.RenameCategory(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"category": category})
}

// DELETE /api/v1/categories/:id
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

/* ---------- LOCATION HANDLERS ---------- */

// GET /api/v1/locations
func (h *Handler) ListLocations(c *gin.Context) {
	items, err := h.service.ListLocations(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"locations": items})
}

// POST /api/v1/locations
func (h *Handler) CreateLocation(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	location, err := h.service.CreateLocation(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"location": location})
}

// PUT /api/v1/locations/:id
func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	location, err := h.service.UpdateLocation(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"location": location})
}

// DELETE /api/v1/locations/:id
func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLocation(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
