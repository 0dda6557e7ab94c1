package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	// TaskStatusArchived is reserved; no transition produces it.
	TaskStatusArchived TaskStatus = "ARCHIVED"
)

// Settable reports whether s may be written by a status update.
func (s TaskStatus) Settable() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Deletable reports whether a task in status s may be removed.
func (s TaskStatus) Deletable() bool {
	return s != TaskStatusInProgress && s != TaskStatusCompleted
}

type Task struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	Title              string         `gorm:"not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Priority           string         `gorm:"type:varchar(50)" json:"priority"`
	Status             TaskStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_tasks_owner_status,priority:2" json:"status"`
	OwnerID            uint64         `gorm:"not null;index:idx_tasks_owner_status,priority:1" json:"owner_id"`
	AssignedByID       *uint64        `gorm:"index:idx_tasks_assigned_by" json:"assigned_by_id"`
	ParentTaskID       *uint64        `gorm:"index:idx_tasks_parent_task" json:"parent_task_id"`
	ReportedToDirector bool           `gorm:"not null;default:false;index:idx_tasks_reported" json:"reported_to_director"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner      User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	AssignedBy *User `gorm:"foreignKey:AssignedByID" json:"assigned_by,omitempty"`
	ParentTask *Task `gorm:"foreignKey:ParentTaskID" json:"-"`
}
