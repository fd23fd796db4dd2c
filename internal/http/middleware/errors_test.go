package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todo_backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func serveWithError(t *testing.T, errs ...error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		for _, err := range errs {
			_ = c.Error(err)
		}
		c.Abort()
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v (body %q)", err, w.Body.String())
	}
	return w, env
}

func TestErrorHandlerAuthentication(t *testing.T) {
	w, env := serveWithError(t, apperr.Authentication("Given token not valid for any token type."))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	if env.Success || env.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad envelope: %+v", env)
	}
}

func TestErrorHandlerValidation(t *testing.T) {
	w, env := serveWithError(t, apperr.FieldError("title", "This field is required."))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	if env.Message != "Validation failed." {
		t.Errorf("message %q", env.Message)
	}
	var data struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Errors["title"]) != 1 || data.Errors["title"][0] != "This field is required." {
		t.Fatalf("unexpected errors: %v", data.Errors)
	}
}

// Not-found conditions leave as a 400-class error, not a 404.
func TestErrorHandlerNotFoundPolicy(t *testing.T) {
	w, env := serveWithError(t, apperr.NotFound("Task not found"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if env.Message != "Task not found" {
		t.Errorf("message %q", env.Message)
	}
}

// Unrecognized errors default to a generic 500; the cause stays server-side.
func TestErrorHandlerUnknownError(t *testing.T) {
	cause := errors.New("pq: connection refused to db host 10.0.0.3")
	w, env := serveWithError(t, cause)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	if env.Message != "An unexpected error occurred." {
		t.Errorf("message %q", env.Message)
	}
	if strings.Contains(w.Body.String(), "10.0.0.3") {
		t.Fatal("internal error detail leaked to client")
	}
}

func TestErrorHandlerMultipleErrors(t *testing.T) {
	w, env := serveWithError(t,
		apperr.NotFound("Task not found"),
		errors.New("secondary failure"),
	)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	if env.Message != "Multiple errors occurred." {
		t.Errorf("message %q", env.Message)
	}
	var data struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", data.Errors)
	}
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("panic response is not an envelope: %v (body %q)", err, w.Body.String())
	}
	if env.Message != "An unexpected error occurred." {
		t.Errorf("message %q", env.Message)
	}
}
