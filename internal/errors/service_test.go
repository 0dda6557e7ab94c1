package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", services.ErrTaskNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"unauthorized", services.ErrNotTaskOwner, http.StatusForbidden, ErrCodeForbidden},
		{"not assignable", services.ErrNoManager, http.StatusUnprocessableEntity, ErrCodeNotAssignable},
		{"not deletable", services.ErrTaskInFlight, http.StatusConflict, ErrCodeNotDeletable},
		{"invalid status", services.ErrUnknownStatus, http.StatusBadRequest, ErrCodeInvalidStatus},
		{"invalid input", services.ErrTitleRequired, http.StatusBadRequest, ErrCodeInvalidInput},
		{"manager with team", services.ErrManagerHasTeam, http.StatusBadRequest, ErrCodeInvalidInput},
		{"director protected", services.ErrDirectorProtected, http.StatusForbidden, ErrCodeForbidden},
		{"conflict", services.ErrUsernameTaken, http.StatusConflict, ErrCodeAlreadyExists},
		{"unavailable", services.ErrAIServiceNotConfigured, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"unauthenticated", services.ErrInvalidSession, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondServiceError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRespondServiceError_HidesStorageDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondServiceError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))

	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestRespondServiceError_BodyShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondServiceError(c, services.ErrEmailTaken)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{
		"code":    ErrCodeAlreadyExists,
		"message": services.ErrEmailTaken.Error(),
	}, body)
}
