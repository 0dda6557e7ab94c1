// Package seed loads demo users and tasks from a YAML fixture.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed default.yaml
var defaultFixture []byte

type Fixture struct {
	Users []UserSpec `yaml:"users"`
	Tasks []TaskSpec `yaml:"tasks"`
}

type UserSpec struct {
	Username    string      `yaml:"username"`
	Email       string      `yaml:"email"`
	Password    string      `yaml:"password"`
	FullName    string      `yaml:"full_name"`
	Role        models.Role `yaml:"role"`
	ManagerType string      `yaml:"manager_type"`
	// Manager is the username of the user's manager.
	Manager string `yaml:"manager"`
}

type TaskSpec struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Owner       string            `yaml:"owner"`
	AssignedBy  string            `yaml:"assigned_by"`
	Priority    string            `yaml:"priority"`
	Status      models.TaskStatus `yaml:"status"`
}

// Result reports what a seeding run changed.
type Result struct {
	UsersCreated int
	UsersSkipped int
	TasksCreated int
}

// Default returns the embedded demo fixture.
func Default() (*Fixture, error) {
	return Load(bytes.NewReader(defaultFixture))
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a fixture.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fixture Fixture
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

// Validate checks roles, statuses and that every reference names a user in
// the fixture.
func (f *Fixture) Validate() error {
	roles := make(map[string]models.Role, len(f.Users))
	for i, u := range f.Users {
		if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.Email) == "" || u.Password == "" {
			return fmt.Errorf("seed user %d: username, email and password are required", i)
		}
		if !u.Role.Valid() {
			return fmt.Errorf("seed user %q: unknown role %q", u.Username, u.Role)
		}
		if _, dup := roles[u.Username]; dup {
			return fmt.Errorf("seed user %q: duplicate username", u.Username)
		}
		roles[u.Username] = u.Role
	}

	for _, u := range f.Users {
		if u.Manager == "" {
			continue
		}
		if roles[u.Manager] != models.RoleManager {
			return fmt.Errorf("seed user %q: manager %q must be a MANAGER in the fixture", u.Username, u.Manager)
		}
	}

	for i, t := range f.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("seed task %d: title is required", i)
		}
		if _, ok := roles[t.Owner]; !ok {
			return fmt.Errorf("seed task %q: unknown owner %q", t.Title, t.Owner)
		}
		if t.AssignedBy != "" {
			if _, ok := roles[t.AssignedBy]; !ok {
				return fmt.Errorf("seed task %q: unknown assigner %q", t.Title, t.AssignedBy)
			}
		}
		if t.Status != "" && !t.Status.Settable() {
			return fmt.Errorf("seed task %q: invalid status %q", t.Title, t.Status)
		}
	}
	return nil
}

// Seeder writes fixtures through the repositories.
type Seeder struct {
	users repository.UserRepository
	tasks repository.TaskRepository
}

func NewSeeder(users repository.UserRepository, tasks repository.TaskRepository) *Seeder {
	return &Seeder{users: users, tasks: tasks}
}

// Run creates the fixture's users that do not exist yet, then the tasks of
// users created in this run. A director is only created when none exists, so
// running it repeatedly never adds a second director.
func (s *Seeder) Run(ctx context.Context, fixture *Fixture) (*Result, error) {
	result := &Result{}

	hasDirector, err := s.directorExists(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uint64, len(fixture.Users))
	created := make(map[string]bool, len(fixture.Users))

	// Managers first so team members can reference them.
	ordered := make([]UserSpec, 0, len(fixture.Users))
	for _, u := range fixture.Users {
		if u.Role != models.RoleTeamMember {
			ordered = append(ordered, u)
		}
	}
	for _, u := range fixture.Users {
		if u.Role == models.RoleTeamMember {
			ordered = append(ordered, u)
		}
	}

	for _, spec := range ordered {
		existing, err := s.users.FindByUsername(ctx, spec.Username)
		if err == nil {
			ids[spec.Username] = existing.ID
			result.UsersSkipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up seed user %q: %w", spec.Username, err)
		}

		if spec.Role == models.RoleDirector && hasDirector {
			log.Printf("seed: a director already exists, skipping %q", spec.Username)
			result.UsersSkipped++
			continue
		}

		user, err := s.createUser(ctx, spec, ids)
		if err != nil {
			return nil, err
		}
		if user.IsDirector() {
			hasDirector = true
		}
		ids[spec.Username] = user.ID
		created[spec.Username] = true
		result.UsersCreated++
		log.Printf("seed: created %s %q", user.Role, user.Username)
	}

	for _, spec := range fixture.Tasks {
		if !created[spec.Owner] {
			continue
		}
		task := &models.Task{
			Title:       spec.Title,
			Description: spec.Description,
			Priority:    spec.Priority,
			Status:      spec.Status,
			OwnerID:     ids[spec.Owner],
		}
		if id, ok := ids[spec.AssignedBy]; ok {
			task.AssignedByID = &id
		}
		if task.Status == "" {
			task.Status = models.TaskStatusPending
		}
		if err := s.tasks.Create(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to create seed task %q: %w", spec.Title, err)
		}
		result.TasksCreated++
	}

	return result, nil
}

func (s *Seeder) directorExists(ctx context.Context) (bool, error) {
	directors, err := s.users.FindByRole(ctx, models.RoleDirector, false)
	if err != nil {
		return false, fmt.Errorf("failed to look up directors: %w", err)
	}
	return len(directors) > 0, nil
}

func (s *Seeder) createUser(ctx context.Context, spec UserSpec, ids map[string]uint64) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %q: %w", spec.Username, err)
	}

	user := &models.User{
		Username:     spec.Username,
		Email:        spec.Email,
		PasswordHash: string(hash),
		FullName:     spec.FullName,
		Role:         spec.Role,
		ManagerType:  spec.ManagerType,
		IsActive:     true,
	}
	if spec.Manager != "" {
		if id, ok := ids[spec.Manager]; ok {
			user.ManagerID = &id
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create seed user %q: %w", spec.Username, err)
	}
	return user, nil
}
