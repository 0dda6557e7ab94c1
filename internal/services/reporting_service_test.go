package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
)

type ReportingServiceTestSuite struct {
	hierarchySuite
	service *ReportingService
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.hierarchySuite.SetupTest()
	s.service = NewReportingService(s.taskRepo)
}

func (s *ReportingServiceTestSuite) TestReportToDirector_PromotesOnlyEligibleTasks() {
	eligible := s.task(s.member.ID, "eligible", withStatus(models.TaskStatusCompleted), assignedBy(s.manager.ID))
	notCompleted := s.task(s.member.ID, "in progress", withStatus(models.TaskStatusInProgress), assignedBy(s.manager.ID))
	otherAssigner := s.task(s.member2.ID, "other assigner", withStatus(models.TaskStatusCompleted), assignedBy(s.manager2.ID))
	noAssigner := s.task(s.member.ID, "self created", withStatus(models.TaskStatusCompleted))
	managerOwned := s.task(s.manager2.ID, "manager owned", withStatus(models.TaskStatusCompleted), assignedBy(s.manager.ID))

	ids := []uint64{eligible.ID, notCompleted.ID, otherAssigner.ID, noAssigner.ID, managerOwned.ID, 9999}
	result, err := s.service.ReportToDirector(s.ctx, s.actor(s.manager), ids)
	s.Require().NoError(err)

	s.Equal(len(ids), result.Submitted)
	s.Equal(1, result.Promoted)
	s.ElementsMatch([]uint64{notCompleted.ID, otherAssigner.ID, noAssigner.ID, managerOwned.ID, 9999}, result.Skipped)

	s.True(s.reload(eligible.ID).ReportedToDirector)
	for _, id := range []uint64{notCompleted.ID, otherAssigner.ID, noAssigner.ID, managerOwned.ID} {
		s.False(s.reload(id).ReportedToDirector, "task %d", id)
	}
}

func (s *ReportingServiceTestSuite) TestReportToDirector_SucceedsWhenNothingQualifies() {
	pending := s.task(s.member.ID, "pending", assignedBy(s.manager.ID))

	result, err := s.service.ReportToDirector(s.ctx, s.actor(s.manager), []uint64{pending.ID})
	s.Require().NoError(err)
	s.Equal(1, result.Submitted)
	s.Zero(result.Promoted)
	s.False(s.reload(pending.ID).ReportedToDirector)
}

func (s *ReportingServiceTestSuite) TestReportToDirector_Idempotent() {
	task := s.task(s.member.ID, "done", withStatus(models.TaskStatusCompleted), assignedBy(s.manager.ID))

	for i := 0; i < 2; i++ {
		result, err := s.service.ReportToDirector(s.ctx, s.actor(s.manager), []uint64{task.ID})
		s.Require().NoError(err)
		s.Equal(1, result.Promoted)
	}
	s.True(s.reload(task.ID).ReportedToDirector)
}

func (s *ReportingServiceTestSuite) TestReportToDirector_Failures() {
	_, err := s.service.ReportToDirector(s.ctx, s.actor(s.member), []uint64{1})
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.service.ReportToDirector(s.ctx, s.actor(s.director), []uint64{1})
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.service.ReportToDirector(s.ctx, s.actor(s.manager), nil)
	s.ErrorIs(err, ErrInvalidInput)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
