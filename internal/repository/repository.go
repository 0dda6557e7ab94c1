package repository

import (
	"context"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// ExistsByID reports whether a task with the given ID exists
	ExistsByID(ctx context.Context, id uint64) (bool, error)

	// FindAll lists every task, newest first, optionally paginated
	FindAll(ctx context.Context, params *utils.PaginationParams) ([]models.Task, int64, error)

	// Update persists all task columns
	Update(ctx context.Context, task *models.Task) error

	// MarkReported sets the reported-to-director flag on a single task
	MarkReported(ctx context.Context, id uint64) error

	// DeleteByID soft deletes a task
	DeleteByID(ctx context.Context, id uint64) error

	// FindByOwnerOrderedByPriority lists a user's tasks by priority rank, then insertion order
	FindByOwnerOrderedByPriority(ctx context.Context, ownerID uint64) ([]models.Task, error)

	// FindActiveByOwnerOrderedByPriority is FindByOwnerOrderedByPriority without completed tasks
	FindActiveByOwnerOrderedByPriority(ctx context.Context, ownerID uint64) ([]models.Task, error)

	// FindByOwnerAndStatus lists a user's tasks in one exact status
	FindByOwnerAndStatus(ctx context.Context, ownerID uint64, status models.TaskStatus) ([]models.Task, error)

	// FindByOwnersAndStatus lists tasks of several owners in one exact status
	FindByOwnersAndStatus(ctx context.Context, ownerIDs []uint64, status models.TaskStatus) ([]models.Task, error)

	// FindManagerVisible lists tasks owned by the manager plus delegated child tasks it assigned
	FindManagerVisible(ctx context.Context, managerID uint64) ([]models.Task, error)

	// FindByOwner lists a user's tasks, newest first
	FindByOwner(ctx context.Context, ownerID uint64) ([]models.Task, error)

	// FindAssignedToTeam lists tasks assigned by the manager to team members
	FindAssignedToTeam(ctx context.Context, managerID uint64) ([]models.Task, error)

	// FindDirectorVisible lists top-level tasks owned by managers
	FindDirectorVisible(ctx context.Context, directorID uint64) ([]models.Task, error)

	// FindReported lists tasks reported to the director
	FindReported(ctx context.Context) ([]models.Task, error)

	// CountByOwner counts a user's tasks, optionally restricted by status
	CountByOwner(ctx context.Context, ownerID uint64, filter StatusFilter) (int64, error)
}

// StatusFilter narrows a count to tasks in, or not in, a status
type StatusFilter struct {
	Status  models.TaskStatus
	Exclude bool
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByUsernameOrEmail finds a user whose username or email matches
	FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string, activeOnly bool) (*models.User, error)

	// FindByManagerID lists the active team members reporting to a manager
	FindByManagerID(ctx context.Context, managerID uint64) ([]models.User, error)

	// HasReports reports whether any user, active or not, has the given manager
	HasReports(ctx context.Context, managerID uint64) (bool, error)

	// FindByRole lists users with a role
	FindByRole(ctx context.Context, role models.Role, activeOnly bool) ([]models.User, error)

	// ListActive lists active users
	ListActive(ctx context.Context) ([]models.User, error)

	// ListAll lists every user
	ListAll(ctx context.Context) ([]models.User, error)

	// ExistsByUsername reports whether the username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is taken
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update persists all user columns
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user, their tasks, and unlinks their reports
	Delete(ctx context.Context, id uint64) error
}
