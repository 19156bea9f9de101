package auth

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/gin-gonic/gin"
)

// tokenFromRequest reads the bearer token, falling back to the session cookie.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	if t, err := c.Cookie(common.SessionCookieName); err == nil {
		return t
	}
	return ""
}

// LoadSession attaches the Requester to the request context when a valid
// token is present. Requests without a token pass through anonymously; an
// invalid token is rejected with 401.
func LoadSession(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFromRequest(c)
		if tok == "" {
			c.Next()
			return
		}

		claims, err := ParseToken(tok, secretKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		ctx := models.WithRequester(c.Request.Context(), models.Requester{UserID: claims.UserID, SessionID: claims.SessionID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSession rejects requests that LoadSession left anonymous.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := models.RequesterFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrorUnauthorized.Error()})
			return
		}
		c.Next()
	}
}
