package response

import (
	"errors"
	"net/http"

	"gearvault/internal/pkg/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes the envelope for a service error. Unknown errors are
// logged and reported as INTERNAL_ERROR without leaking their text.
func FromError(c *gin.Context, log *zap.Logger, err error) {
	var (
		validationErr *apperror.ValidationError
		transitionErr *apperror.InvalidTransitionError
		integrityErr  *apperror.ReferentialIntegrityError
	)

	switch {
	case errors.As(err, &validationErr):
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", validationErr.Fields)
	case errors.Is(err, apperror.ErrAccessDenied):
		Error(c, http.StatusNotFound, "NOT_FOUND", apperror.ErrAccessDenied.Error())
	case errors.Is(err, apperror.ErrUnauthenticated):
		Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.As(err, &transitionErr):
		ErrorWithDetails(c, http.StatusConflict, "INVALID_TRANSITION", transitionErr.Error(), gin.H{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		})
	case errors.Is(err, apperror.ErrAlreadyInMaintenance):
		Error(c, http.StatusConflict, "ALREADY_IN_MAINTENANCE", apperror.ErrAlreadyInMaintenance.Error())
	case errors.Is(err, apperror.ErrNoOpenRecord):
		Error(c, http.StatusConflict, "NO_OPEN_RECORD", apperror.ErrNoOpenRecord.Error())
	case errors.As(err, &integrityErr):
		ErrorWithDetails(c, http.StatusConflict, "REFERENTIAL_INTEGRITY", integrityErr.Error(), gin.H{
			"entity": integrityErr.Entity,
			"id":     integrityErr.ID,
			"reason": integrityErr.Reason,
		})
	case errors.Is(err, apperror.ErrConflict):
		Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, apperror.ErrUnavailable):
		if log != nil {
			log.Warn("storage unavailable", zap.Error(err), zap.String("path", c.FullPath()))
		}
		c.Header("Retry-After", "5")
		Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
	default:
		if log != nil {
			log.Error("unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
		}
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
