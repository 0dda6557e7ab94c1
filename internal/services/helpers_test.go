package services

import (
	"context"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"github.com/yukikurage/task-hierarchy-api/internal/testutil"
	"gorm.io/gorm"
)

// hierarchySuite seeds a director, two managers with one team member each,
// and a team member without a manager.
type hierarchySuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository

	director *models.User
	manager  *models.User
	member   *models.User
	manager2 *models.User
	member2  *models.User
	orphan   *models.User
}

func (s *hierarchySuite) SetupTest() {
	t := s.T()
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(t)
	s.taskRepo = repository.NewTaskRepository(s.db)
	s.userRepo = repository.NewUserRepository(s.db)

	s.director = testutil.CreateUser(t, s.db, "director", models.RoleDirector, nil)
	s.manager = testutil.CreateUser(t, s.db, "manager", models.RoleManager, nil)
	s.member = testutil.CreateUser(t, s.db, "member", models.RoleTeamMember, &s.manager.ID)
	s.manager2 = testutil.CreateUser(t, s.db, "manager2", models.RoleManager, nil)
	s.member2 = testutil.CreateUser(t, s.db, "member2", models.RoleTeamMember, &s.manager2.ID)
	s.orphan = testutil.CreateUser(t, s.db, "orphan", models.RoleTeamMember, nil)
}

func (s *hierarchySuite) actor(u *models.User) Actor {
	return ActorFromUser(u)
}

func (s *hierarchySuite) task(ownerID uint64, title string, opts ...func(*models.Task)) *models.Task {
	task := &models.Task{Title: title, OwnerID: ownerID, Status: models.TaskStatusPending}
	for _, opt := range opts {
		opt(task)
	}
	return testutil.CreateTask(s.T(), s.db, task)
}

func (s *hierarchySuite) reload(id uint64) *models.Task {
	var task models.Task
	s.Require().NoError(s.db.First(&task, id).Error)
	return &task
}

func withPriority(p string) func(*models.Task) {
	return func(t *models.Task) { t.Priority = p }
}

func withStatus(st models.TaskStatus) func(*models.Task) {
	return func(t *models.Task) { t.Status = st }
}

func assignedBy(id uint64) func(*models.Task) {
	return func(t *models.Task) { t.AssignedByID = &id }
}

func childOf(id uint64) func(*models.Task) {
	return func(t *models.Task) { t.ParentTaskID = &id }
}

func taskIDs(tasks []models.Task) []uint64 {
	ids := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
