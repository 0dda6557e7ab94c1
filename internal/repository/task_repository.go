package repository

import (
	"context"
	"slices"

	"github.com/yukikurage/task-hierarchy-api/internal/database"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const newestFirst = "tasks.id DESC"

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ExistsByID reports whether a task with the given ID exists
func (r *GormTaskRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists every task, newest first, optionally paginated
func (r *GormTaskRepository) FindAll(ctx context.Context, params *utils.PaginationParams) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Preload("Owner").Order(newestFirst)
	if params != nil {
		listQuery = listQuery.Scopes(database.Paginate(*params))
	}

	var tasks []models.Task
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update persists all task columns without touching related users
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// MarkReported sets the reported-to-director flag on a single task
func (r *GormTaskRepository) MarkReported(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", id).
		Update("reported_to_director", true).Error
}

// DeleteByID soft deletes a task
func (r *GormTaskRepository) DeleteByID(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

// FindByOwnerOrderedByPriority lists a user's tasks by priority rank, then insertion order
func (r *GormTaskRepository) FindByOwnerOrderedByPriority(ctx context.Context, ownerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("tasks.owner_id = ?", ownerID).
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	sortByPriority(tasks)
	return tasks, nil
}

// FindActiveByOwnerOrderedByPriority is FindByOwnerOrderedByPriority without completed tasks
func (r *GormTaskRepository) FindActiveByOwnerOrderedByPriority(ctx context.Context, ownerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("tasks.owner_id = ? AND tasks.status <> ?", ownerID, models.TaskStatusCompleted).
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	sortByPriority(tasks)
	return tasks, nil
}

// FindByOwnerAndStatus lists a user's tasks in one exact status
func (r *GormTaskRepository) FindByOwnerAndStatus(ctx context.Context, ownerID uint64, status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("tasks.owner_id = ? AND tasks.status = ?", ownerID, status).
		Order(newestFirst).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByOwnersAndStatus lists tasks of several owners in one exact status
func (r *GormTaskRepository) FindByOwnersAndStatus(ctx context.Context, ownerIDs []uint64, status models.TaskStatus) ([]models.Task, error) {
	if len(ownerIDs) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("tasks.owner_id IN ? AND tasks.status = ?", ownerIDs, status).
		Order(newestFirst).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindManagerVisible lists tasks owned by the manager plus delegated child tasks it assigned
func (r *GormTaskRepository) FindManagerVisible(ctx context.Context, managerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("tasks.owner_id = ? OR (tasks.parent_task_id IS NOT NULL AND tasks.assigned_by_id = ?)", managerID, managerID).
		Order(newestFirst).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByOwner lists a user's tasks, newest first
func (r *GormTaskRepository) FindByOwner(ctx context.Context, ownerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("tasks.owner_id = ?", ownerID).
		Order(newestFirst).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindAssignedToTeam lists tasks assigned by the manager to team members
func (r *GormTaskRepository) FindAssignedToTeam(ctx context.Context, managerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.withOwnerRole(ctx, models.RoleTeamMember).
		Where("tasks.assigned_by_id = ?", managerID).
		Order(newestFirst).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindDirectorVisible lists top-level tasks owned by managers. The director ID
// is not used as a filter: every director sees every manager-level task.
func (r *GormTaskRepository) FindDirectorVisible(ctx context.Context, _ uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.withOwnerRole(ctx, models.RoleManager).
		Where("tasks.parent_task_id IS NULL").
		Order(newestFirst).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindReported lists tasks reported to the director
func (r *GormTaskRepository) FindReported(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("tasks.reported_to_director = ?", true).
		Order(newestFirst).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountByOwner counts a user's tasks, optionally restricted by status
func (r *GormTaskRepository) CountByOwner(ctx context.Context, ownerID uint64, filter StatusFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.owner_id = ?", ownerID)
	if filter.Status != "" {
		if filter.Exclude {
			query = query.Where("tasks.status <> ?", filter.Status)
		} else {
			query = query.Where("tasks.status = ?", filter.Status)
		}
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// withOwnerRole joins the owning user and keeps tasks whose owner has the role
func (r *GormTaskRepository) withOwnerRole(ctx context.Context, role models.Role) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN users owners ON owners.id = tasks.owner_id").
		Where("owners.role = ?", role)
}

// sortByPriority orders tasks by priority rank; the stable sort keeps the
// incoming id order among equal ranks.
func sortByPriority(tasks []models.Task) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		return models.Rank(a.Priority) - models.Rank(b.Priority)
	})
}
