package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/auth"
	"vibex-storefront/internal/checkout"
	"vibex-storefront/internal/gateway"
	"vibex-storefront/internal/middleware"
	"vibex-storefront/internal/models"
)

type AuthHandler struct {
	manager  *auth.Manager
	api      *gateway.Auth
	registry *checkout.Registry
	logger   *slog.Logger
}

func NewAuthHandler(manager *auth.Manager, api *gateway.Auth, registry *checkout.Registry, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		manager:  manager,
		api:      api,
		registry: registry,
		logger:   logger,
	}
}

type authResponse struct {
	User *auth.Claims `json:"user"`
	Role string       `json:"role"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.manager.Login(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		if status := apiclient.StatusCode(err); status == http.StatusUnauthorized || status == http.StatusBadRequest {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{User: claims, Role: auth.PrimaryRole(claims.Roles)})
}

// ProviderLogin exchanges a Google or Facebook authorization code.
func (h *AuthHandler) ProviderLogin(c *gin.Context) {
	provider := c.Param("provider")
	if provider != "google" && provider != "facebook" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown login provider"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.manager.LoginWithProvider(c.Request.Context(), middleware.GetSessionID(c), provider, req.Code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: claims, Role: auth.PrimaryRole(claims.Roles)})
}

// Logout drops the session's tokens and any checkout it had open.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	h.manager.Logout(c.Request.Context(), sessionID)
	h.registry.Delete(sessionID)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	c.JSON(http.StatusOK, authResponse{User: claims, Role: auth.PrimaryRole(claims.Roles)})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.api.Register(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful, check your email for the verification code"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.api.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.api.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code verified"})
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.api.UpdatePassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
