package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepstack/prepstack-api/internal/utils"
)

// JWTMiddleware guards the admin surface. Repeated invalid attempts from
// one address are rate limited.
type JWTMiddleware struct {
	rateLimiter *InvalidAuthRateLimiter
}

func NewJWTMiddleware() *JWTMiddleware {
	return &JWTMiddleware{rateLimiter: NewInvalidAuthRateLimiter()}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.reject(c, "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(c, "Invalid authorization header")
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			m.reject(c, "Invalid or expired token")
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_email", claims.Email)
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, message string) {
	if !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.Error(c, 401, message)
	c.Abort()
}
