package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

const sessionIDContextKey = "study_session_id"

var sessionIDPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Middleware makes sure every request carries a session id, issuing a new
// random one in cookieName when the browser has none. The id only keys the
// session state; it grants nothing.
func Middleware(cookieName string, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || !sessionIDPattern.MatchString(id) {
			id, err = NewID()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "issue session failed"})
				return
			}
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cookieName,
			Value:    id,
			MaxAge:   int(ttl.Seconds()),
			Path:     "/",
			Secure:   gin.Mode() == gin.ReleaseMode,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(sessionIDContextKey, id)
		c.Next()
	}
}

// IDFromContext retrieves the session id stored by Middleware.
func IDFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(sessionIDContextKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

// NewID returns a random session id.
func NewID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
