package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrDeleteOwnedTasks is returned when removing a user's tasks fails inside the delete transaction.
	ErrDeleteOwnedTasks = errors.New("user repository: delete owned tasks failed")
	// ErrUnlinkReports is returned when clearing the manager link of a user's reports fails.
	ErrUnlinkReports = errors.New("user repository: unlink team members failed")
	// ErrDeleteUser is returned when deleting the user row fails.
	ErrDeleteUser = errors.New("user repository: delete user failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	active := user.IsActive
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return err
	}
	// is_active has a column default, so a false value is not written on insert
	if !active {
		user.IsActive = false
		return r.db.WithContext(ctx).Model(user).Update("is_active", false).Error
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail finds a user whose username or email matches
func (r *GormUserRepository) FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string, activeOnly bool) (*models.User, error) {
	query := r.db.WithContext(ctx).Where("(username = ? OR email = ?)", usernameOrEmail, usernameOrEmail)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByManagerID lists the active team members reporting to a manager
func (r *GormUserRepository) FindByManagerID(ctx context.Context, managerID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("manager_id = ? AND role = ? AND is_active = ?", managerID, models.RoleTeamMember, true).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// HasReports reports whether any user, active or not, has the given manager
func (r *GormUserRepository) HasReports(ctx context.Context, managerID uint64) (bool, error) {
	return r.exists(ctx, "manager_id = ?", managerID)
}

// FindByRole lists users with a role
func (r *GormUserRepository) FindByRole(ctx context.Context, role models.Role, activeOnly bool) ([]models.User, error) {
	query := r.db.WithContext(ctx).Where("role = ?", role)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var users []models.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListActive lists active users
func (r *GormUserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListAll lists every user
func (r *GormUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ExistsByUsername reports whether the username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// ExistsByEmail reports whether the email is taken
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

// Update persists all user columns
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// Delete removes a user in a transaction: their tasks go with them and any
// team members they managed are left without a manager.
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("owner_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteOwnedTasks, err)
		}

		if err := tx.Model(&models.User{}).
			Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnlinkReports, err)
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteUser, err)
		}

		return nil
	})
}

func (r *GormUserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
