package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/williamsps/maintenance-portal/internal/model"
)

const (
	principalKey   = "principal"
	tokenExpiryKey = "token_expires_at"

	ClientContextHeader = "X-Client-Context"
)

// Authenticator resolves bearer tokens and validates admin client switches.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (model.Principal, time.Time, error)
	ClientContext(ctx context.Context, id uuid.UUID) error
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// Auth requires a valid bearer token. Admins may scope the request to one
// tenant with X-Client-Context; the header is ignored for every other role.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abort(c, http.StatusUnauthorized, "authorization is required")
			return
		}

		principal, expiresAt, err := authn.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		if raw := strings.TrimSpace(c.GetHeader(ClientContextHeader)); raw != "" && principal.IsAdmin() {
			clientID, err := uuid.Parse(raw)
			if err != nil {
				abort(c, http.StatusBadRequest, "invalid "+ClientContextHeader+" header")
				return
			}
			if err := authn.ClientContext(c.Request.Context(), clientID); err != nil {
				abort(c, http.StatusBadRequest, "unknown client in "+ClientContextHeader+" header")
				return
			}
			principal.ContextClientID = &clientID
		}

		c.Set(principalKey, principal)
		c.Set(tokenExpiryKey, expiresAt)
		c.Set("user_id", principal.UserID.String())
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

// TokenExpiry is when the bearer token of the current request stops being valid.
func TokenExpiry(c *gin.Context) time.Time {
	value, _ := c.Get(tokenExpiryKey)
	expiresAt, _ := value.(time.Time)
	return expiresAt
}
