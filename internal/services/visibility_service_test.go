package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/utils"
)

type VisibilityServiceTestSuite struct {
	hierarchySuite
	service *VisibilityService
}

func (s *VisibilityServiceTestSuite) SetupTest() {
	s.hierarchySuite.SetupTest()
	s.service = NewVisibilityService(s.taskRepo, s.userRepo)
}

func (s *VisibilityServiceTestSuite) TestTasksForTeamMember_OrdersByPriorityRank() {
	low := s.task(s.member.ID, "low", withPriority("low"))
	unknown := s.task(s.member.ID, "unknown", withPriority("urgent"))
	high := s.task(s.member.ID, "high", withPriority("yüksek"))
	medium := s.task(s.member.ID, "medium", withPriority("orta"))
	high2 := s.task(s.member.ID, "high2", withPriority("high"))
	blank := s.task(s.member.ID, "blank")
	medium2 := s.task(s.member.ID, "medium2", withPriority("medium"))
	s.task(s.member2.ID, "someone else", withPriority("high"))

	tasks, err := s.service.TasksForTeamMember(s.ctx, s.member.ID)
	s.Require().NoError(err)

	s.Equal([]uint64{high.ID, high2.ID, medium.ID, medium2.ID, low.ID, unknown.ID, blank.ID}, taskIDs(tasks))
	for i := 1; i < len(tasks); i++ {
		s.LessOrEqual(models.Rank(tasks[i-1].Priority), models.Rank(tasks[i].Priority))
	}
}

func (s *VisibilityServiceTestSuite) TestTasksForTeamMember_PriorityIsCaseSensitive() {
	mixed := s.task(s.member.ID, "mixed case", withPriority("High"))
	lower := s.task(s.member.ID, "low", withPriority("düşük"))

	tasks, err := s.service.TasksForTeamMember(s.ctx, s.member.ID)
	s.Require().NoError(err)

	s.Equal([]uint64{lower.ID, mixed.ID}, taskIDs(tasks))
}

func (s *VisibilityServiceTestSuite) TestActiveTasksForTeamMember_ExcludesCompleted() {
	done := s.task(s.member.ID, "done", withPriority("high"), withStatus(models.TaskStatusCompleted))
	doing := s.task(s.member.ID, "doing", withPriority("low"), withStatus(models.TaskStatusInProgress))
	todo := s.task(s.member.ID, "todo", withPriority("medium"))

	tasks, err := s.service.ActiveTasksForTeamMember(s.ctx, s.member.ID)
	s.Require().NoError(err)

	s.Equal([]uint64{todo.ID, doing.ID}, taskIDs(tasks))
	s.NotContains(taskIDs(tasks), done.ID)
}

func (s *VisibilityServiceTestSuite) TestTasksForTeamMemberByStatus() {
	s.task(s.member.ID, "todo")
	doing := s.task(s.member.ID, "doing", withStatus(models.TaskStatusInProgress))

	tasks, err := s.service.TasksForTeamMemberByStatus(s.ctx, s.member.ID, models.TaskStatusInProgress)
	s.Require().NoError(err)
	s.Equal([]uint64{doing.ID}, taskIDs(tasks))

	_, err = s.service.TasksForTeamMemberByStatus(s.ctx, s.member.ID, "DONE")
	s.ErrorIs(err, ErrInvalidStatus)
}

func (s *VisibilityServiceTestSuite) TestTasksForManager_OwnPlusDelegatedChildren() {
	parent := s.task(s.manager.ID, "own")
	child := s.task(s.member.ID, "delegated", assignedBy(s.manager.ID), childOf(parent.ID))
	s.task(s.member.ID, "assigned without parent", assignedBy(s.manager.ID))
	s.task(s.member2.ID, "other manager", assignedBy(s.manager2.ID), childOf(parent.ID))

	tasks, err := s.service.TasksForManager(s.ctx, s.actor(s.manager))
	s.Require().NoError(err)

	s.Equal([]uint64{child.ID, parent.ID}, taskIDs(tasks))
}

func (s *VisibilityServiceTestSuite) TestTeamTasks_AssignedToTeamMembersOnly() {
	parent := s.task(s.manager.ID, "own", assignedBy(s.director.ID))
	withParent := s.task(s.member.ID, "child", assignedBy(s.manager.ID), childOf(parent.ID))
	noParent := s.task(s.member.ID, "no parent", assignedBy(s.manager.ID))
	s.task(s.manager2.ID, "to a manager", assignedBy(s.manager.ID))
	s.task(s.member.ID, "self created")

	tasks, err := s.service.TeamTasks(s.ctx, s.actor(s.manager))
	s.Require().NoError(err)

	s.Equal([]uint64{noParent.ID, withParent.ID}, taskIDs(tasks))
	for _, t := range tasks {
		s.Equal(models.RoleTeamMember, t.Owner.Role)
	}
}

func (s *VisibilityServiceTestSuite) TestManagerOwnTasks() {
	own := s.task(s.manager.ID, "own")
	s.task(s.member.ID, "delegated", assignedBy(s.manager.ID), childOf(own.ID))

	tasks, err := s.service.ManagerOwnTasks(s.ctx, s.actor(s.manager))
	s.Require().NoError(err)
	s.Equal([]uint64{own.ID}, taskIDs(tasks))
}

func (s *VisibilityServiceTestSuite) TestManagerViews_RejectOtherRoles() {
	_, err := s.service.TasksForManager(s.ctx, s.actor(s.member))
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.service.TeamTasks(s.ctx, s.actor(s.director))
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.service.TeamMembers(s.ctx, s.actor(s.member))
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *VisibilityServiceTestSuite) TestTeamMembers_ActiveOnly() {
	inactive := createInactiveMember(s)

	members, err := s.service.TeamMembers(s.ctx, s.actor(s.manager))
	s.Require().NoError(err)

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	s.Equal([]uint64{s.member.ID}, ids)
	s.NotContains(ids, inactive.ID)
}

func (s *VisibilityServiceTestSuite) TestCompletedTeamTasks() {
	done := s.task(s.member.ID, "done", withStatus(models.TaskStatusCompleted))
	s.task(s.member.ID, "todo")
	s.task(s.member2.ID, "other team", withStatus(models.TaskStatusCompleted))
	s.task(s.manager.ID, "manager's own", withStatus(models.TaskStatusCompleted))

	tasks, err := s.service.CompletedTeamTasks(s.ctx, s.actor(s.manager))
	s.Require().NoError(err)
	s.Equal([]uint64{done.ID}, taskIDs(tasks))
}

func (s *VisibilityServiceTestSuite) TestTasksForDirector_TopLevelManagerTasksOnly() {
	top := s.task(s.manager.ID, "top level", assignedBy(s.director.ID))
	top2 := s.task(s.manager2.ID, "from nobody")
	s.task(s.manager.ID, "child of manager", childOf(top.ID))
	s.task(s.member.ID, "team member", assignedBy(s.manager.ID))
	s.task(s.director.ID, "director's own")

	tasks, err := s.service.TasksForDirector(s.ctx, s.actor(s.director))
	s.Require().NoError(err)

	s.Equal([]uint64{top2.ID, top.ID}, taskIDs(tasks))
	for _, t := range tasks {
		s.NotEqual(models.RoleTeamMember, t.Owner.Role)
		s.Nil(t.ParentTaskID)
	}
}

func (s *VisibilityServiceTestSuite) TestTasksForDirector_IgnoresDirectorIdentity() {
	other := createUserWithRole(s, "director2", models.RoleDirector)
	s.task(s.manager.ID, "assigned by first director", assignedBy(s.director.ID))

	first, err := s.service.TasksForDirector(s.ctx, s.actor(s.director))
	s.Require().NoError(err)
	second, err := s.service.TasksForDirector(s.ctx, s.actor(other))
	s.Require().NoError(err)

	s.Equal(taskIDs(first), taskIDs(second))
}

func (s *VisibilityServiceTestSuite) TestReportedTasks() {
	reported := s.task(s.member.ID, "reported", withStatus(models.TaskStatusCompleted), func(t *models.Task) { t.ReportedToDirector = true })
	s.task(s.member.ID, "not reported", withStatus(models.TaskStatusCompleted))

	tasks, err := s.service.ReportedTasks(s.ctx, s.actor(s.director))
	s.Require().NoError(err)
	s.Equal([]uint64{reported.ID}, taskIDs(tasks))

	_, err = s.service.ReportedTasks(s.ctx, s.actor(s.manager))
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *VisibilityServiceTestSuite) TestAllTasks_Paginated() {
	for i := 0; i < 5; i++ {
		s.task(s.member.ID, "task")
	}

	tasks, total, err := s.service.AllTasks(s.ctx, s.actor(s.director), &utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Len(tasks, 2)
	s.Greater(tasks[0].ID, tasks[1].ID)

	_, _, err = s.service.AllTasks(s.ctx, s.actor(s.manager), nil)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *VisibilityServiceTestSuite) TestGetTask_Visibility() {
	delegated := s.task(s.member.ID, "delegated", assignedBy(s.manager.ID))
	selfCreated := s.task(s.member.ID, "self created")

	cases := []struct {
		name    string
		actor   Actor
		taskID  uint64
		visible bool
	}{
		{"owner", s.actor(s.member), delegated.ID, true},
		{"assigner", s.actor(s.manager), delegated.ID, true},
		{"team member's manager", s.actor(s.manager), selfCreated.ID, true},
		{"director", s.actor(s.director), selfCreated.ID, true},
		{"other manager", s.actor(s.manager2), delegated.ID, false},
		{"other team member", s.actor(s.member2), delegated.ID, false},
	}

	for _, tc := range cases {
		task, err := s.service.GetTask(s.ctx, tc.actor, tc.taskID)
		if tc.visible {
			s.NoError(err, tc.name)
			s.Equal(tc.taskID, task.ID, tc.name)
		} else {
			s.ErrorIs(err, ErrUnauthorized, tc.name)
		}
	}

	_, err := s.service.GetTask(s.ctx, s.actor(s.director), 9999)
	s.ErrorIs(err, ErrNotFound)
}

func createUserWithRole(s *VisibilityServiceTestSuite, username string, role models.Role) *models.User {
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role, IsActive: true}
	s.Require().NoError(s.userRepo.Create(s.ctx, user))
	return user
}

func createInactiveMember(s *VisibilityServiceTestSuite) *models.User {
	user := &models.User{
		Username:     "inactive",
		Email:        "inactive@example.com",
		PasswordHash: "x",
		Role:         models.RoleTeamMember,
		ManagerID:    &s.manager.ID,
		IsActive:     false,
	}
	s.Require().NoError(s.userRepo.Create(s.ctx, user))
	return user
}

func TestVisibilityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VisibilityServiceTestSuite))
}
