// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-hierarchy-api/internal/database"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPassword is the plain text password of users created by CreateUser.
const DefaultPassword = "password123"

// NewTestDB opens a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	// Each new connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.MigrateDatabase(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// CreateUser inserts an active user with DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role, managerID *uint64) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FullName:     username,
		Role:         role,
		ManagerID:    managerID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTask inserts a task directly, bypassing service validation.
func CreateTask(t *testing.T, db *gorm.DB, task *models.Task) *models.Task {
	t.Helper()

	if task.Title == "" {
		task.Title = "task"
	}
	require.NoError(t, db.Omit("Owner", "AssignedBy", "ParentTask").Create(task).Error)
	return task
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
