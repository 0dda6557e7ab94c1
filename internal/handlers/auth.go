package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/constants"
	"github.com/yukikurage/task-hierarchy-api/internal/dto"
	apierrors "github.com/yukikurage/task-hierarchy-api/internal/errors"
	"github.com/yukikurage/task-hierarchy-api/internal/middleware"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
	"github.com/yukikurage/task-hierarchy-api/internal/session"
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

// Register creates a team member account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `json:"username" binding:"required,min=3,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"full_name"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	h.respondLogin(c, http.StatusCreated, result)
}

// Login authenticates a user, issues a bearer token and initializes the
// cookie session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		UsernameOrEmail: req.Username,
		Password:        req.Password,
	})
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	h.respondLogin(c, http.StatusOK, result)
}

func (h *AuthHandler) respondLogin(c *gin.Context, status int, result *services.LoginResult) {
	s := sessions.Default(c)
	s.Set(constants.ContextKeyUserID, result.User.ID)
	if err := s.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(status, dto.LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserDTO(*result.User),
	})
}

// Logout ends the bearer token session, if any, and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, ok := session.BearerToken(c.GetHeader("Authorization")); ok {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil && services.KindOf(err) == services.KindStorage {
			apierrors.RespondServiceError(c, err)
			return
		}
	}

	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Validate reports whether the presented bearer token is still usable.
// It never fails with 401 so clients can poll it.
func (h *AuthHandler) Validate(c *gin.Context) {
	token, ok := session.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	user, err := h.authService.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if services.KindOf(err) == services.KindStorage {
			apierrors.RespondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  dto.ToUserDTO(*user),
	})
}

// IsDirector tells the client whether the caller holds the director role.
func (h *AuthHandler) IsDirector(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_director": actor.Role == models.RoleDirector})
}
