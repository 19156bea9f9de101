// Package csrf issues per-session anti-forgery tokens and checks them on
// state-changing requests.
package csrf

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/gin-gonic/gin"
)

const tokenBytes = 32

// Guard hands out and verifies CSRF tokens.
type Guard struct {
	store Store
	log   logging.Logger
}

func NewGuard(store Store, log logging.Logger) *Guard {
	return &Guard{store: store, log: log.With("module", "csrf")}
}

// Token returns the session's token, creating it on first use.
func (g *Guard) Token(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", common.ErrorUnauthorized
	}
	candidate, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return "", err
	}
	return g.store.GetOrCreate(ctx, sessionID, candidate)
}

// Verify checks presented against the session's token. Same-origin script
// requests (X-Requested-With: XMLHttpRequest) need no token.
func (g *Guard) Verify(ctx context.Context, sessionID, presented string, sameOrigin bool) error {
	if sameOrigin {
		return nil
	}
	if sessionID == "" || presented == "" {
		return common.ErrorCSRF
	}
	expected, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) != 1 {
		return common.ErrorCSRF
	}
	return nil
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// Middleware must run after the session middleware. Safe requests receive
// the token in the X-CSRF-Token header; other requests must present it in
// that header or in the csrf_token form field.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		req, ok := models.RequesterFromContext(ctx)

		if isSafeMethod(c.Request.Method) {
			if ok {
				if token, err := g.Token(ctx, req.SessionID); err == nil {
					c.Header(common.CSRFHeaderName, token)
				} else {
					g.log.Warn(ctx, "csrf token unavailable", "error", err)
				}
			}
			c.Next()
			return
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrorUnauthorized.Error()})
			return
		}

		presented := c.GetHeader(common.CSRFHeaderName)
		if presented == "" {
			presented = c.PostForm(common.CSRFFormField)
		}
		sameOrigin := c.GetHeader("X-Requested-With") == "XMLHttpRequest"

		if err := g.Verify(ctx, req.SessionID, presented, sameOrigin); err != nil {
			if !errors.Is(err, common.ErrorCSRF) {
				g.log.Error(ctx, "csrf verification failed", "error", err)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": common.ErrorCSRF.Error()})
			return
		}
		c.Next()
	}
}
