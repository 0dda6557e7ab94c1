package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/dto"
	apierrors "github.com/yukikurage/task-hierarchy-api/internal/errors"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
)

// AdminHandler exposes user management to directors.
type AdminHandler struct {
	userService *services.UserService
}

func NewAdminHandler(userService *services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// CreateUser creates a user with any role.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Username    string      `json:"username" binding:"required"`
		Email       string      `json:"email" binding:"required,email"`
		Password    string      `json:"password" binding:"required"`
		FullName    string      `json:"full_name"`
		Role        models.Role `json:"role" binding:"required"`
		ManagerType string      `json:"manager_type"`
		ManagerID   *uint64     `json:"manager_id"`
		IsActive    *bool       `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), actor, services.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Role:        req.Role,
		ManagerType: req.ManagerType,
		ManagerID:   req.ManagerID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers returns active users; ?include_inactive=true adds the rest.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))
	users, err := h.userService.ListUsers(c.Request.Context(), actor, includeInactive)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

func (h *AdminHandler) ListManagers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	managers, err := h.userService.ListManagers(c.Request.Context(), actor)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(managers))
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), actor, userID)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update. "clear_manager": true detaches the
// user from its manager.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Username     *string      `json:"username"`
		Email        *string      `json:"email"`
		Password     *string      `json:"password"`
		FullName     *string      `json:"full_name"`
		Role         *models.Role `json:"role"`
		ManagerType  *string      `json:"manager_type"`
		ManagerID    *uint64      `json:"manager_id"`
		ClearManager bool         `json:"clear_manager"`
		IsActive     *bool        `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), actor, userID, services.UpdateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Role:         req.Role,
		ManagerType:  req.ManagerType,
		ManagerID:    req.ManagerID,
		ClearManager: req.ClearManager,
		IsActive:     req.IsActive,
	})
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user and the tasks it owns. Directors cannot be deleted.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actor, userID); err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
