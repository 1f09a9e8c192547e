package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot/taskpilot/backend/go-services/internal/config"
	"github.com/taskpilot/taskpilot/backend/go-services/internal/googleauth"
	"github.com/taskpilot/taskpilot/backend/go-services/internal/users"
	"github.com/taskpilot/taskpilot/backend/go-services/pkg/logger"
	"github.com/taskpilot/taskpilot/backend/go-services/pkg/metrics"
	"github.com/taskpilot/taskpilot/backend/go-services/pkg/middleware"
)

// GoogleLoginRequest carries the raw ID token issued by Google Sign-In.
type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// SignupRequest registers a local-credential user.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1"`
}

// LoginRequest verifies a local credential server-side.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
	verifier googleauth.Verifier
}

func NewAuthHandler(cfg *config.Config, u *users.Service, v googleauth.Verifier) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, verifier: v}
}

// Register routes under /api/auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/api/auth")
	a.POST("/google", h.GoogleLogin)
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.GET("/me", middleware.AuthMiddleware(h.verifier), h.Me)
}

// opCtx bounds verifier and directory calls so a slow upstream cannot hang
// the request past the configured timeout.
func (h *AuthHandler) opCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.cfg.Auth.VerifyTimeout
	if timeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// GoogleLogin verifies the posted Google credential and returns the session
// projection of the (found or created) user record.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.verifier == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google login not configured"})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	payload, err := h.verifier.Verify(ctx, req.Credential)
	if err != nil {
		logger.Debugf("google credential rejected: %v", err)
		metrics.LoginAttempts.WithLabelValues("google", "rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google credential"})
		return
	}

	su, err := h.usersSvc.AuthenticateGoogle(ctx, payload)
	if err != nil {
		logger.Errorf("google authentication failed for subject %s: %v", payload.Subject, err)
		metrics.LoginAttempts.WithLabelValues("google", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
		return
	}
	metrics.LoginAttempts.WithLabelValues("google", "ok").Inc()
	c.JSON(http.StatusOK, su)
}

// Signup registers a local user. Registration does not log the user in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	if err := h.usersSvc.RegisterLocal(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, users.ErrConflict) {
			metrics.SignupAttempts.WithLabelValues("conflict").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		logger.Errorf("signup failed for %s: %v", req.Email, err)
		metrics.SignupAttempts.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup unavailable"})
		return
	}
	metrics.SignupAttempts.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "User created"})
}

// Login verifies a local email/password credential and returns the session
// projection. Unknown email and wrong password produce the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	su, err := h.usersSvc.AuthenticateLocal(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("local", "rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		logger.Errorf("local login failed for %s: %v", req.Email, err)
		metrics.LoginAttempts.WithLabelValues("local", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
		return
	}
	metrics.LoginAttempts.WithLabelValues("local", "ok").Inc()
	c.JSON(http.StatusOK, su)
}

// Me resolves the Bearer Google ID token verified by the auth middleware to
// the stored user record, creating it on first sight.
func (h *AuthHandler) Me(c *gin.Context) {
	payload, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no verified identity"})
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()

	su, err := h.usersSvc.AuthenticateGoogle(ctx, payload)
	if err != nil {
		logger.Errorf("me lookup failed for subject %s: %v", payload.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": su})
}
