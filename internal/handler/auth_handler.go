package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	authService *service.AdminAuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /v1/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "email and password are required")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			utils.Error(c, 401, "Invalid email or password")
			return
		}
		if errors.Is(err, utils.ErrAccountInactive) {
			utils.Error(c, 403, "Account is inactive")
			return
		}
		respondError(c, err)
		return
	}

	utils.Success(c, 200, gin.H{"token": token})
}
