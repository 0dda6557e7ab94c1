package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"gorm.io/gorm"
)

// UserService provides director-only user administration.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// CreateUserInput represents parameters to create any kind of user.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	Role        models.Role
	ManagerType string
	ManagerID   *uint64
	IsActive    *bool
}

// UpdateUserInput holds the fields to change. Nil fields are left as is.
type UpdateUserInput struct {
	Username     *string
	Email        *string
	Password     *string
	FullName     *string
	Role         *models.Role
	ManagerType  *string
	ManagerID    *uint64
	ClearManager bool
	IsActive     *bool
}

// CreateUser creates a user with any role. A manager link must point at a MANAGER.
func (s *UserService) CreateUser(ctx context.Context, actor Actor, input CreateUserInput) (*models.User, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, err
	}

	username, email, err := normalizeIdentity(input.Username, input.Email)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleTeamMember
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if input.ManagerID != nil {
		if err := s.ensureManager(ctx, *input.ManagerID); err != nil {
			return nil, err
		}
	}

	if err := ensureUnique(ctx, s.userRepo, username, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		ManagerType:  strings.TrimSpace(input.ManagerType),
		ManagerID:    input.ManagerID,
		IsActive:     true,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageError("create user", err)
	}
	return user, nil
}

// ListUsers returns active users, or every user when includeInactive is set.
func (s *UserService) ListUsers(ctx context.Context, actor Actor, includeInactive bool) ([]models.User, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, err
	}

	var (
		users []models.User
		err   error
	)
	if includeInactive {
		users, err = s.userRepo.ListAll(ctx)
	} else {
		users, err = s.userRepo.ListActive(ctx)
	}
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

// ListManagers returns active users with role MANAGER.
func (s *UserService) ListManagers(ctx context.Context, actor Actor) ([]models.User, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, err
	}

	managers, err := s.userRepo.FindByRole(ctx, models.RoleManager, true)
	if err != nil {
		return nil, storageError("list managers", err)
	}
	return managers, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, actor Actor, id uint64) (*models.User, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// UpdateUser applies input to a user.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id uint64, input UpdateUserInput) (*models.User, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil || input.Email != nil {
		username, email := user.Username, user.Email
		if input.Username != nil {
			username = *input.Username
		}
		if input.Email != nil {
			email = *input.Email
		}
		username, email, err = normalizeIdentity(username, email)
		if err != nil {
			return nil, err
		}
		if err := s.ensureAvailable(ctx, user, username, email); err != nil {
			return nil, err
		}
		user.Username, user.Email = username, email
	}

	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if *input.Role != user.Role {
			if err := s.ensureRoleChangeable(ctx, user); err != nil {
				return nil, err
			}
		}
		user.Role = *input.Role
	}
	if input.ManagerType != nil {
		user.ManagerType = strings.TrimSpace(*input.ManagerType)
	}

	switch {
	case input.ClearManager:
		user.ManagerID = nil
	case input.ManagerID != nil:
		if *input.ManagerID == user.ID {
			return nil, ErrInvalidManager
		}
		if err := s.ensureManager(ctx, *input.ManagerID); err != nil {
			return nil, err
		}
		managerID := *input.ManagerID
		user.ManagerID = &managerID
	}

	if input.IsActive != nil {
		if !*input.IsActive && user.IsDirector() {
			return nil, ErrDirectorProtected
		}
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storageError("update user", err)
	}
	return user, nil
}

// DeleteUser removes a user together with their tasks. Director accounts
// cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id uint64) error {
	if err := actor.Require(models.RoleDirector); err != nil {
		return err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if user.IsDirector() {
		return ErrDirectorProtected
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return storageError("delete user", err)
	}
	return nil
}

func (s *UserService) find(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("find user", err)
	}
	return user, nil
}

// ensureRoleChangeable keeps directors in place and refuses to demote a
// manager who still has team members.
func (s *UserService) ensureRoleChangeable(ctx context.Context, user *models.User) error {
	if user.IsDirector() {
		return ErrDirectorProtected
	}
	if !user.IsManager() {
		return nil
	}
	has, err := s.userRepo.HasReports(ctx, user.ID)
	if err != nil {
		return storageError("list team members", err)
	}
	if has {
		return ErrManagerHasTeam
	}
	return nil
}

func (s *UserService) ensureManager(ctx context.Context, managerID uint64) error {
	manager, err := s.userRepo.FindByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidManager
		}
		return storageError("find manager", err)
	}
	if !manager.IsManager() {
		return ErrInvalidManager
	}
	return nil
}

// ensureAvailable checks uniqueness only for values that actually change.
func (s *UserService) ensureAvailable(ctx context.Context, user *models.User, username, email string) error {
	if username != user.Username {
		taken, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return storageError("check username", err)
		}
		if taken {
			return ErrUsernameTaken
		}
	}
	if email != user.Email {
		taken, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return storageError("check email", err)
		}
		if taken {
			return ErrEmailTaken
		}
	}
	return nil
}
