package equipment

import (
	"net/http"
	"strconv"

	"gearvault/internal/middleware"
	"gearvault/internal/pkg/apperror"
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
	equipmentGroup := protected.Group("/equipment")
	{
		equipmentGroup.GET("", h.List)
		equipmentGroup.POST("", h.Create)
		equipmentGroup.GET("/:id", h.Get)
		equipmentGroup.PATCH("/:id", h.Update)
		equipmentGroup.DELETE("/:id", h.Delete)
		equipmentGroup.POST("/:id/status", h.ChangeStatus)

		equipmentGroup.GET("/:id/images", h.ListImages)
		equipmentGroup.POST("/:id/images", h.AddImage)
		equipmentGroup.POST("/:id/images/:imageId/primary", h.SetPrimaryImage)
		equipmentGroup.DELETE("/:id/images/:imageId", h.DeleteImage)
	}
}

// Create registers a new item for the caller.
// POST /api/v1/equipment
func (h *Handler) Create(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	view, err := h.service.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"equipment": view})
}

// List returns the caller's equipment.
// GET /api/v1/equipment?status=&category_id=&location_id=&q=&limit=&offset=
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Status: c.Query("status"),
		Query:  c.Query("q"),
	}

	verr := &apperror.ValidationError{}
	q.CategoryID = optionalID(c, "category_id", verr)
	q.LocationID = optionalID(c, "location_id", verr)
	q.Limit = queryInt(c, "limit", verr)
	q.Offset = queryInt(c, "offset", verr)
	if err := verr.OrNil(); err != nil {
		response.FromError(c, h.log, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), middleware.GetPrincipal(c), q)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GET /api/v1/equipment/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": view})
}

// PATCH /api/v1/equipment/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	view, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": view})
}

// POST /api/v1/equipment/:id/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	view, err := h.service.ChangeStatus(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": view})
}

// DELETE /api/v1/equipment/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/v1/equipment/:id/images
func (h *Handler) ListImages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	images, err := h.service.ListImages(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"images": images})
}

// POST /api/v1/equipment/:id/images
func (h *Handler) AddImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AddImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	img, err := h.service.AddImage(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"image": img})
}

// POST /api/v1/equipment/:id/images/:imageId/primary
func (h *Handler) SetPrimaryImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	img, err := h.service.SetPrimaryImage(c.Request.Context(), middleware.GetPrincipal(c), id, imageID)
	if err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"image": img})
}

// DELETE /api/v1/equipment/:id/images/:imageId
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), middleware.GetPrincipal(c), id, imageID); err != nil {
		response.FromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func optionalID(c *gin.Context, name string, verr *apperror.ValidationError) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		verr.Add(name, "must be a positive integer")
		return nil
	}
	return &id
}

func queryInt(c *gin.Context, name string, verr *apperror.ValidationError) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(name, "must be an integer")
		return 0
	}
	return n
}
