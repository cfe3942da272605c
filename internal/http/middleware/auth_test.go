package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type stubVerifier struct {
	tokens map[string]*ctxutil.RequestData
}

func (s stubVerifier) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	rd, ok := s.tokens[token]
	if !ok {
		return ctx, errors.New("Failed to parse token: token is malformed")
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func newAuthRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := stubVerifier{tokens: map[string]*ctxutil.RequestData{
		"admin-token":   {UserID: uuid.New(), Role: "admin"},
		"student-token": {UserID: uuid.New(), Role: "student"},
	}}
	am := NewAuthMiddleware(logger.Nop(), verifier)

	r := gin.New()
	handlers := []gin.HandlerFunc{am.RequireAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetRequestData(c.Request.Context()).Role)
	})
	r.GET("/p", handlers...)
	return r
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter()

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized},
		{"bearer", "Bearer student-token", "", http.StatusOK},
		{"query", "", "admin-token", http.StatusOK},
	}
	for _, tc := range cases {
		target := "/p"
		if tc.query != "" {
			target += "?token=" + tc.query
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: got %d want %d (%s)", tc.name, rec.Code, tc.status, rec.Body.String())
		}
	}
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter("admin")

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student should be forbidden, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "admin" {
		t.Fatalf("admin should pass, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequireRolesWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type stubLimiter struct {
	allowed int
	calls   int
	err     error
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	s.calls++
	if s.err != nil {
		return true, 0, s.err
	}
	return s.calls <= s.allowed, 1500 * time.Millisecond, nil
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &stubLimiter{allowed: 1}
	r := gin.New()
	r.POST("/auth/login", RateLimit(logger.Nop(), limiter, "login"), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("unexpected Retry-After %q", got)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &stubLimiter{err: errors.New("redis down")}
	r := gin.New()
	r.POST("/auth/login", RateLimit(logger.Nop(), limiter, "login"), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("limiter errors should not block, got %d", rec.Code)
	}
}
