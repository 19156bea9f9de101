package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/gin-gonic/gin"
)

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorOversizeUpload), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrorPermission), errors.Is(err, common.ErrorCSRF):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		msg = common.ErrorInternal.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
