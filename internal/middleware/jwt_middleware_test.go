package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepstack/prepstack-api/internal/utils"
)

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(NewJWTMiddleware().Handle())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"adminId": c.GetInt("admin_id"),
			"email":   c.GetString("admin_email"),
		})
	})
	return r
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	r := protectedRouter()

	token, err := utils.GenerateJWT(7, "admin@prepstack.in")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "admin@prepstack.in")
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	r := protectedRouter()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, 401, w.Code)
		})
	}
}

func TestJWTMiddleware_RateLimitsInvalidAttempts(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	r := protectedRouter()

	var last int
	for i := 0; i < maxInvalidAttempts+1; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		req.RemoteAddr = "10.9.8.7:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		last = w.Code
	}

	assert.Equal(t, 429, last)
}
