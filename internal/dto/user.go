package dto

import (
	"time"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Role        models.Role `json:"role"`
	ManagerID   *uint64     `json:"manager_id"`
	ManagerType string      `json:"manager_type,omitempty"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
}

// UserSummaryDTO is the short form embedded in task responses
type UserSummaryDTO struct {
	ID       uint64      `json:"id"`
	Username string      `json:"username"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

// LoginResponse is returned by login and register
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		ManagerID:   user.ManagerID,
		ManagerType: user.ManagerType,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func toUserSummary(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
	}
}
