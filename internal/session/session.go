// Package session identifies anonymous clients by a random id stored in a
// cookie. The id is a row filter, not a credential.
package session

import (
	"net/http"
	"time"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "sessionId"
	MaxAge     = 7 * 24 * time.Hour

	// MaxIDLength bounds client-supplied ids so they fit every store's key limits.
	MaxIDLength = 256

	contextKey = "sessionID"
)

// FromCookie returns the session id sent by the client, if any. Ids longer
// than MaxIDLength are treated as absent.
func FromCookie(c *gin.Context) (string, bool) {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" || len(id) > MaxIDLength {
		return "", false
	}
	return id, true
}

// Issue mints a new session id and sets it as a site-wide cookie.
func Issue(c *gin.Context, secure bool) string {
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, int(MaxAge.Seconds()), "/", "", secure, true)
	return id
}

// Ensure returns the caller's session id, issuing one when the request
// carries none.
func Ensure(c *gin.Context, secure bool) string {
	if id, ok := FromCookie(c); ok {
		return id
	}
	return Issue(c, secure)
}

// Require rejects requests without a session cookie and stores the id on
// the context for ID.
func Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromCookie(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized."})
			return
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// ID returns the session id placed on the context by Require.
func ID(c *gin.Context) (string, bool) {
	id := c.GetString(contextKey)
	return id, id != ""
}
