package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-hierarchy-api/internal/dto"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
)

func TestDirectorHandler_Tasks(t *testing.T) {
	env := setupTestEnv(t)
	strategy := env.task(t, models.Task{Title: "strategy", OwnerID: env.manager.ID})
	env.task(t, models.Task{Title: "chore", OwnerID: env.member.ID})
	env.task(t, models.Task{Title: "subplan", OwnerID: env.manager2.ID, ParentTaskID: &strategy.ID})
	env.task(t, models.Task{Title: "board memo", OwnerID: env.director.ID})

	w := env.do(t, http.MethodGet, "/api/director/tasks", env.token(t, "director"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"strategy"}, titles(decode[[]dto.TaskDTO](t, w)))

	w = env.do(t, http.MethodGet, "/api/director/tasks", env.token(t, "manager"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminHandler_UserLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	token := env.token(t, "director")

	w := env.do(t, http.MethodPost, "/api/admin/users", token, map[string]interface{}{
		"username":   "newmember",
		"email":      "newmember@example.com",
		"password":   "secret123",
		"role":       "TEAM_MEMBER",
		"manager_id": env.manager.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.UserDTO](t, w)
	require.NotNil(t, created.ManagerID)
	assert.Equal(t, env.manager.ID, *created.ManagerID)

	w = env.do(t, http.MethodPost, "/api/admin/users", token, map[string]interface{}{
		"username":   "badlink",
		"email":      "badlink@example.com",
		"password":   "secret123",
		"role":       "TEAM_MEMBER",
		"manager_id": env.member.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", created.ID), token, map[string]interface{}{
		"is_active":     false,
		"clear_manager": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.UserDTO](t, w)
	assert.False(t, updated.IsActive)
	assert.Nil(t, updated.ManagerID)

	w = env.do(t, http.MethodGet, "/api/admin/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, usernames(decode[[]dto.UserDTO](t, w)), "newmember")

	w = env.do(t, http.MethodGet, "/api/admin/users?include_inactive=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, usernames(decode[[]dto.UserDTO](t, w)), "newmember")

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_Restrictions(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/admin/users", env.token(t, "manager"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", env.director.ID), env.token(t, "director"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/managers", env.token(t, "director"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"manager", "manager2"}, usernames(decode[[]dto.UserDTO](t, w)))
}

func usernames(users []dto.UserDTO) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Username
	}
	return out
}
