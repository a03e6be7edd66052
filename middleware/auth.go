package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const UserKey = "userID"

// AuthMiddleware validates the bearer token and stores the user id in the
// request context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseUserID(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(UserKey, userID)
		c.Next()
	}
}

// OptionalAuth parses the token when present but lets anonymous requests
// through; guest checkout depends on this.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := parseUserID(c, secret); ok {
			c.Set(UserKey, userID)
		}
		c.Next()
	}
}

func parseUserID(c *gin.Context, secret []byte) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", false
	}
	return sub, true
}

// GetUserID returns the authenticated user's id, or nil for guests.
func GetUserID(c *gin.Context) *uuid.UUID {
	val, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	id, err := uuid.Parse(val.(string))
	if err != nil {
		return nil
	}
	return &id
}
