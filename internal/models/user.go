package models

import (
	"time"
)

// Role classifies a user within the three-tier hierarchy.
type Role string

const (
	RoleDirector   Role = "DIRECTOR"
	RoleManager    Role = "MANAGER"
	RoleTeamMember Role = "TEAM_MEMBER"
)

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDirector, RoleManager, RoleTeamMember:
		return true
	}
	return false
}

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255)" json:"full_name"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'TEAM_MEMBER';index" json:"role"`
	ManagerType  string    `gorm:"type:varchar(100)" json:"manager_type,omitempty"`
	ManagerID    *uint64   `gorm:"index" json:"manager_id"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Manager *User  `gorm:"foreignKey:ManagerID" json:"-"`
	Tasks   []Task `gorm:"foreignKey:OwnerID" json:"-"`
}

func (u User) IsDirector() bool   { return u.Role == RoleDirector }
func (u User) IsManager() bool    { return u.Role == RoleManager }
func (u User) IsTeamMember() bool { return u.Role == RoleTeamMember }

// HasManagementRole is true for directors and managers.
func (u User) HasManagementRole() bool {
	return u.IsDirector() || u.IsManager()
}
