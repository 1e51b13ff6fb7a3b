package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/security"
)

func TestRequireAuthRedirectsWithoutCookie(t *testing.T) {
	m := NewMiddleware(nil, security.NewCSRFGenerator("secret"), security.NewRateLimiter(10, time.Minute))

	called := false
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if called {
		t.Error("expected protected handler to not be called")
	}
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect status, got %d", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/login" {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestCSRFProtect(t *testing.T) {
	csrf := security.NewCSRFGenerator("secret")
	m := NewMiddleware(nil, csrf, security.NewRateLimiter(10, time.Minute))

	sessionID := "session-abc"
	validToken, _ := csrf.GenerateToken(sessionID)

	tests := []struct {
		name       string
		cookie     bool
		token      string
		wantCalled bool
		wantStatus int
	}{
		{
			name:       "valid token",
			cookie:     true,
			token:      validToken,
			wantCalled: true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong token",
			cookie:     true,
			token:      "bogus",
			wantCalled: false,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing token",
			cookie:     true,
			token:      "",
			wantCalled: false,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no session cookie",
			cookie:     false,
			token:      validToken,
			wantCalled: false,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := m.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			form := url.Values{}
			if tt.token != "" {
				form.Set("csrf_token", tt.token)
			}
			req := httptest.NewRequest(http.MethodPost, "/family/members/create", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
			}

			recorder := httptest.NewRecorder()
			handler(recorder, req)

			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	m := NewMiddleware(nil, security.NewCSRFGenerator("secret"), security.NewRateLimiter(2, time.Minute))

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		handler(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after budget exhausted, got %d", recorder.Code)
	}
}

func TestCSRFTokenMatchesSession(t *testing.T) {
	csrf := security.NewCSRFGenerator("secret")
	m := NewMiddleware(nil, csrf, security.NewRateLimiter(10, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-xyz"})

	token := m.CSRFToken(req)
	if token == "" {
		t.Fatal("expected non-empty CSRF token for session cookie")
	}
	if !csrf.ValidateToken("session-xyz", token) {
		t.Error("expected issued token to validate")
	}

	if m.CSRFToken(httptest.NewRequest(http.MethodGet, "/dashboard", nil)) != "" {
		t.Error("expected empty token without a session cookie")
	}
}

func TestGetUserFromContext(t *testing.T) {
	if GetUserFromContext(context.Background()) != nil {
		t.Error("expected nil user for empty context")
	}

	user := &models.User{ID: 7, Name: "Sera"}
	ctx := context.WithValue(context.Background(), UserContextKey, user)
	if got := GetUserFromContext(ctx); got != user {
		t.Errorf("expected stored user, got %+v", got)
	}
}
