package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appErrors "lms-backend/pkg/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessResponse_MergesPayload(t *testing.T) {
	c, w := newTestContext()

	SuccessResponse(c, http.StatusCreated, "done", gin.H{"user": gin.H{"name": "alice"}})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, map[string]any{"name": "alice"}, body["user"])
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", appErrors.Validation("All fields are required"), http.StatusBadRequest, "All fields are required"},
		{"conflict", appErrors.Conflict("Email already exists"), http.StatusConflict, "Email already exists"},
		{"unauthenticated", appErrors.Unauthenticated(appErrors.ErrSessionExpired), http.StatusUnauthorized, "Token has expired, please login again"},
		{"forbidden", appErrors.Forbidden("nope"), http.StatusForbidden, "nope"},
		{"not found", appErrors.NotFound("No course found"), http.StatusNotFound, "No course found"},
		{"upstream", appErrors.Upstream("Something went wrong, please try again.", errors.New("smtp down")), http.StatusInternalServerError, "Something went wrong, please try again."},
		{"wrapped app error", errorsJoin(appErrors.Conflict("dup")), http.StatusConflict, "dup"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			RespondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func errorsJoin(err error) error {
	return errors.Join(errors.New("context"), err)
}
