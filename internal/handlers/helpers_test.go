package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-hierarchy-api/internal/constants"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
	"github.com/yukikurage/task-hierarchy-api/internal/session"
	"github.com/yukikurage/task-hierarchy-api/internal/testutil"
	"gorm.io/gorm"
)

type stubCompleter struct {
	content string
}

func (s stubCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	svc      Services
	director *models.User
	manager  *models.User
	member   *models.User
	manager2 *models.User
	member2  *models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokens := session.NewTokenIssuer("test-secret", constants.TokenIssuer, time.Hour)

	svc := Services{
		Auth:       services.NewAuthService(userRepo, session.NewMemoryStore(), tokens),
		Users:      services.NewUserService(userRepo),
		Visibility: services.NewVisibilityService(taskRepo, userRepo),
		Assignment: services.NewAssignmentService(taskRepo, userRepo),
		Lifecycle:  services.NewLifecycleService(taskRepo, userRepo),
		Reporting:  services.NewReportingService(taskRepo),
		Stats:      services.NewStatsService(taskRepo, userRepo),
		AI: services.NewAIServiceWithClient(stubCompleter{
			content: `[{"title": "Collect invoices", "description": "Q3", "priority": "high"}]`,
		}),
	}

	env := &testEnv{db: db, router: newRouter(svc), svc: svc}
	env.director = testutil.CreateUser(t, db, "director", models.RoleDirector, nil)
	env.manager = testutil.CreateUser(t, db, "manager", models.RoleManager, nil)
	env.member = testutil.CreateUser(t, db, "member", models.RoleTeamMember, &env.manager.ID)
	env.manager2 = testutil.CreateUser(t, db, "manager2", models.RoleManager, nil)
	env.member2 = testutil.CreateUser(t, db, "member2", models.RoleTeamMember, &env.manager2.ID)
	return env
}

func newRouter(svc Services) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, svc)
	return r
}

// token logs username in through the service and returns its bearer token.
func (e *testEnv) token(t *testing.T, username string) string {
	t.Helper()
	result, err := e.svc.Auth.Login(context.Background(), services.LoginInput{
		UsernameOrEmail: username,
		Password:        testutil.DefaultPassword,
	})
	require.NoError(t, err)
	return result.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req := newRequest(t, method, path, payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(e.router, req)
}

func newRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()

	body := bytes.NewReader(nil)
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) task(t *testing.T, task models.Task) *models.Task {
	t.Helper()
	return testutil.CreateTask(t, e.db, &task)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
