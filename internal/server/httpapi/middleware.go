package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/gin-gonic/gin"
)

func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ctx := c.Request.Context()

		fields := []any{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if req, ok := models.RequesterFromContext(ctx); ok {
			fields = append(fields, "user_id", req.UserID)
		}

		switch {
		case status >= 500:
			log.Error(ctx, "HTTP request", fields...)
		case status >= 400:
			log.Warn(ctx, "HTTP request", fields...)
		default:
			log.Info(ctx, "HTTP request", fields...)
		}
	}
}

// BodyLimit caps request bodies at limit bytes. It must run before any
// middleware that reads the form.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
