package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/testutil"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	repo    TaskRepository
	manager *models.User
	member  *models.User
}

func (s *TaskRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.repo = NewTaskRepository(s.db)
	s.manager = testutil.CreateUser(s.T(), s.db, "manager", models.RoleManager, nil)
	s.member = testutil.CreateUser(s.T(), s.db, "member", models.RoleTeamMember, &s.manager.ID)
}

func (s *TaskRepositoryTestSuite) TestCreate_DefaultsAndRelationsOmitted() {
	task := &models.Task{
		Title:   "new",
		OwnerID: s.member.ID,
		Owner:   models.User{Username: "should-not-be-created"},
	}
	s.Require().NoError(s.repo.Create(s.ctx, task))

	stored, err := s.repo.FindByID(s.ctx, task.ID, "Owner")
	s.Require().NoError(err)
	s.Equal(models.TaskStatusPending, stored.Status)
	s.False(stored.ReportedToDirector)
	s.Equal("member", stored.Owner.Username)

	var users int64
	s.db.Model(&models.User{}).Count(&users)
	s.Equal(int64(2), users)
}

func (s *TaskRepositoryTestSuite) TestFindByOwnerOrderedByPriority_StableWithinRank() {
	for _, p := range []string{"low", "LOW", "high", "HIGH", "yüksek", "medium"} {
		testutil.CreateTask(s.T(), s.db, &models.Task{OwnerID: s.member.ID, Priority: p})
	}
	tasks, err := s.repo.FindByOwnerOrderedByPriority(s.ctx, s.member.ID)
	s.Require().NoError(err)

	ranks := make([]int, 0, len(tasks))
	for _, t := range tasks {
		ranks = append(ranks, models.Rank(t.Priority))
	}
	s.Equal([]int{1, 1, 1, 2, 3, 3}, ranks)
	s.Equal("high", tasks[0].Priority)
	s.Equal("HIGH", tasks[1].Priority)
	s.Equal("yüksek", tasks[2].Priority)
	s.Equal("low", tasks[4].Priority)
	s.Equal("LOW", tasks[5].Priority)
}

func (s *TaskRepositoryTestSuite) TestMarkReported_TouchesOnlyTheFlag() {
	task := testutil.CreateTask(s.T(), s.db, &models.Task{OwnerID: s.member.ID, Status: models.TaskStatusCompleted})

	s.Require().NoError(s.repo.MarkReported(s.ctx, task.ID))

	stored, err := s.repo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.True(stored.ReportedToDirector)
	s.Equal(models.TaskStatusCompleted, stored.Status)
}

func (s *TaskRepositoryTestSuite) TestDeleteByID_HidesTask() {
	task := testutil.CreateTask(s.T(), s.db, &models.Task{OwnerID: s.member.ID})

	s.Require().NoError(s.repo.DeleteByID(s.ctx, task.ID))

	_, err := s.repo.FindByID(s.ctx, task.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	tasks, err := s.repo.FindByOwner(s.ctx, s.member.ID)
	s.Require().NoError(err)
	s.Empty(tasks)
}

func (s *TaskRepositoryTestSuite) TestCountByOwner() {
	testutil.CreateTask(s.T(), s.db, &models.Task{OwnerID: s.member.ID})
	testutil.CreateTask(s.T(), s.db, &models.Task{OwnerID: s.member.ID, Status: models.TaskStatusCompleted})
	testutil.CreateTask(s.T(), s.db, &models.Task{OwnerID: s.manager.ID})

	total, err := s.repo.CountByOwner(s.ctx, s.member.ID, StatusFilter{})
	s.Require().NoError(err)
	s.Equal(int64(2), total)

	open, err := s.repo.CountByOwner(s.ctx, s.member.ID, StatusFilter{Status: models.TaskStatusCompleted, Exclude: true})
	s.Require().NoError(err)
	s.Equal(int64(1), open)
}

func (s *TaskRepositoryTestSuite) TestFindByOwnersAndStatus_EmptyOwners() {
	tasks, err := s.repo.FindByOwnersAndStatus(s.ctx, nil, models.TaskStatusCompleted)
	s.Require().NoError(err)
	s.NotNil(tasks)
	s.Empty(tasks)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestTaskRepository_PropagatesStorageErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	failure := errors.New("connection reset")

	mock.ExpectQuery("SELECT").WillReturnError(failure)
	_, err := repo.FindByOwnerOrderedByPriority(context.Background(), 1)
	assert.ErrorIs(t, err, failure)

	mock.ExpectQuery("SELECT").WillReturnError(failure)
	_, err = repo.FindDirectorVisible(context.Background(), 1)
	assert.ErrorIs(t, err, failure)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE").WillReturnError(failure)
	mock.ExpectRollback()
	err = repo.MarkReported(context.Background(), 1)
	assert.ErrorIs(t, err, failure)

	assert.NoError(t, mock.ExpectationsWereMet())
}
