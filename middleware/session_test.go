package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		*captured = GetSessionID(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestSessionMiddleware(t *testing.T) {
	t.Run("New visitor - Secure HttpOnly cookie issued", func(t *testing.T) {
		var sessionID string
		router := sessionRouter(&sessionID)

		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.NotEmpty(t, sessionID)

		cookies := recorder.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, SessionCookie, cookie.Name)
		assert.Equal(t, sessionID, cookie.Value)
		assert.True(t, cookie.Secure, "session cookie must only travel over https")
		assert.True(t, cookie.HttpOnly, "session cookie must be hidden from scripts")
	})

	t.Run("Returning visitor - existing id reused without a new cookie", func(t *testing.T) {
		var sessionID string
		router := sessionRouter(&sessionID)

		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc123"})
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, "abc123", sessionID)
		assert.Empty(t, recorder.Result().Cookies())
	})
}
