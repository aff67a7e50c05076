package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-auth-service/internal/infra/security"
	"github.com/arklim/user-auth-service/internal/usecase"
)

func newMappingContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/users", nil)
	return c, rec
}

func TestRespondWithMappedError(t *testing.T) {
	cases := []ErrorCase{
		{Err: usecase.ErrAlreadyExists, Status: http.StatusBadRequest, Body: MessageResponse{Message: "email already registered"}},
		{Err: usecase.ErrInvalidToken, Status: http.StatusForbidden, Body: ErrorResponse{Error: "Forbidden"}},
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "mapped sentinel",
			err:        usecase.ErrAlreadyExists,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"email already registered"}`,
		},
		{
			name:       "wrapped sentinel",
			err:        fmt.Errorf("add user: %w", usecase.ErrInvalidToken),
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":"Forbidden"}`,
		},
		{
			name:       "unmapped error falls back",
			err:        fmt.Errorf("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"something broke"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newMappingContext(t)

			RespondWithMappedError(c, tt.err, cases, http.StatusInternalServerError, "something broke")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Fatalf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}

func TestRespondWithMappedErrorPasswordValidation(t *testing.T) {
	c, rec := newMappingContext(t)

	err := fmt.Errorf("hash password: %w", &security.PasswordValidationError{
		Code:    "min_length",
		Message: "password must be at least 8 characters",
	})
	RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "something broke")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Message == "" {
		t.Fatalf("expected the validator's message in the response body")
	}
}

func TestRespondWithMappedErrorNilError(t *testing.T) {
	c, rec := newMappingContext(t)

	RespondWithMappedError(c, nil, nil, http.StatusInternalServerError, "something broke")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
