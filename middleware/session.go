package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "syt_session"
	SessionKey    = "sessionID"

	// 30 days, matching the cart TTL default.
	sessionMaxAge = 30 * 24 * 60 * 60
)

// SessionMiddleware assigns every visitor an opaque session id cookie; the
// cart is keyed by it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			sessionID = newSessionID()
			// Secure + HttpOnly; browsers exempt localhost from the Secure
			// restriction so local development still works over http.
			c.SetCookie(SessionCookie, sessionID, sessionMaxAge, "/", "", true, true)
		}
		c.Set(SessionKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the request's session id.
func GetSessionID(c *gin.Context) string {
	if val, exists := c.Get(SessionKey); exists {
		return val.(string)
	}
	return ""
}

func newSessionID() string {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		// rand.Read only fails when the OS entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(raw)
}
