package server

import (
	"errors"
	"net/http"

	"github.com/athena-ems/athena/internal/auth"
	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/repository"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the session/identity operations over HTTP.
type AuthHandler struct {
	identity *auth.Service
	secure   bool // marks the session cookie Secure outside local env
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(identity *auth.Service, secure bool) *AuthHandler {
	return &AuthHandler{identity: identity, secure: secure}
}

type loginRequest struct {
	Email    string      `json:"email"    binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role"     binding:"required"`
}

// Login authenticates the credentials against the requested role and sets
// the session cookie. A role mismatch is a plain authentication failure.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and role are required"})
		return
	}
	if !models.IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	user, sessionID, err := h.identity.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrRoleMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials for the selected role"})
		case errors.Is(err, auth.ErrProfileNotFound):
			c.JSON(http.StatusConflict, gin.H{"error": "employee profile not found for this account"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	c.SetCookie(sessionCookieName, sessionID, 0, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "redirect": defaultRoute(user.Role)})
}

type registerRequest struct {
	Name       string `json:"name"       binding:"required"`
	Email      string `json:"email"      binding:"required"`
	Password   string `json:"password"   binding:"required,min=8"`
	Department string `json:"department" binding:"required"`
	Position   string `json:"position"   binding:"required"`
}

// Register creates an employee account. It never authenticates the caller:
// a verification step may still stand between registration and login.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password (8+ chars), department and position are required"})
		return
	}
	if !auth.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}

	employee, err := h.identity.Register(
		c.Request.Context(), req.Name, req.Email, req.Password, req.Department, req.Position)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"employee": employee})
}

// Logout invalidates the remote session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err == nil && sessionID != "" {
		if err = h.identity.Logout(c.Request.Context(), sessionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
			return
		}
	}

	c.SetCookie(sessionCookieName, "", -1, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

// Me returns the current principal.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "isAuthenticated": true})
}
