package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hirokisan/task-tracker-api/internal/dto"
	apierrors "github.com/hirokisan/task-tracker-api/internal/errors"
	"github.com/hirokisan/task-tracker-api/internal/middleware"
	"github.com/hirokisan/task-tracker-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignIn exchanges an authorization code for a token and provisions the user
// on first login. This is the only endpoint that does not require a bearer
// token.
func (h *AuthHandler) SignIn(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		apierrors.UnprocessableEntity(c, "code query parameter is required")
		return
	}

	token, err := h.authService.SignIn(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrSignInFailed) {
			apierrors.Unauthorized(c, "Error logging in")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, token)
}

// GetCurrentUser returns the authenticated caller's user record.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	username, exists := middleware.GetUsername(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.CurrentUser(username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout revokes the caller's session at the identity provider.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, exists := middleware.GetToken(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
		apierrors.Unauthorized(c, "Error logging out")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
	})
}
