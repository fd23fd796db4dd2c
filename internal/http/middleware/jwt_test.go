package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo_backend/internal/domain"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

func jwtTestRouter(tokens *service.TokenService) *gin.Engine {
	r := gin.New()
	r.GET("/protected", ErrorHandler(), JWT(tokens), func(c *gin.Context) {
		uid, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": uid})
	})
	return r
}

func TestJWTMiddleware(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Minute, time.Hour, service.NewMemoryDenylist(), slog.Default())
	r := jwtTestRouter(tokens)

	pair, err := tokens.IssuePair(&domain.User{ID: 7, Username: "al", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid bearer", "Bearer " + pair.Access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + pair.Access, http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"refresh as bearer", "Bearer " + pair.Refresh, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, w.Code, tc.want)
		}
		if tc.want == http.StatusUnauthorized {
			var env envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Errorf("%s: 401 body is not an envelope: %v", tc.name, err)
			}
		}
	}
}

func TestJWTMiddlewareSetsIdentity(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Minute, time.Hour, service.NewMemoryDenylist(), slog.Default())
	r := jwtTestRouter(tokens)

	pair, err := tokens.IssuePair(&domain.User{ID: 7, Username: "al", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.UserID != 7 {
		t.Fatalf("user_id %d, want 7", body.UserID)
	}
}
