package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/testutil"
)

// WorkflowTestSuite walks a task through delegation, completion and reporting.
type WorkflowTestSuite struct {
	hierarchySuite
	visibility *VisibilityService
	assignment *AssignmentService
	lifecycle  *LifecycleService
	reporting  *ReportingService
}

func (s *WorkflowTestSuite) SetupTest() {
	s.hierarchySuite.SetupTest()
	s.visibility = NewVisibilityService(s.taskRepo, s.userRepo)
	s.assignment = NewAssignmentService(s.taskRepo, s.userRepo)
	s.lifecycle = NewLifecycleService(s.taskRepo, s.userRepo)
	s.reporting = NewReportingService(s.taskRepo)
}

func (s *WorkflowTestSuite) TestDelegateCompleteReport() {
	ctx := s.ctx

	task, err := s.assignment.AssignToTeamMember(ctx, s.actor(s.manager), AssignTaskInput{
		Title:    "X",
		OwnerID:  s.member.ID,
		Priority: "yüksek",
	})
	s.Require().NoError(err)
	s.Require().NotNil(task.AssignedByID)
	s.Equal(s.manager.ID, *task.AssignedByID)
	s.Equal(models.TaskStatusPending, task.Status)

	completed, err := s.lifecycle.MarkCompleted(ctx, task.ID, s.member.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusCompleted, completed.Status)

	result, err := s.reporting.ReportToDirector(ctx, s.actor(s.manager), []uint64{task.ID})
	s.Require().NoError(err)
	s.Equal(1, result.Promoted)

	reported, err := s.visibility.ReportedTasks(ctx, s.actor(s.director))
	s.Require().NoError(err)
	s.Contains(taskIDs(reported), task.ID)

	directorView, err := s.visibility.TasksForDirector(ctx, s.actor(s.director))
	s.Require().NoError(err)
	s.NotContains(taskIDs(directorView), task.ID)
}

func (s *WorkflowTestSuite) TestCompletingSomeoneElsesTaskIsUnauthorized() {
	owner := testutil.CreateUser(s.T(), s.db, "owner", models.RoleTeamMember, &s.manager.ID)
	task := s.task(owner.ID, "owned")

	_, err := s.lifecycle.MarkCompleted(s.ctx, task.ID, 99)
	s.ErrorIs(err, ErrUnauthorized)
	s.Equal(KindUnauthorized, KindOf(err))
	s.Equal(models.TaskStatusPending, s.reload(task.ID).Status)
}

func TestWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowTestSuite))
}
