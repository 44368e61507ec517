package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"craftacademy/internal/database"
	"craftacademy/internal/security"
	"craftacademy/internal/service"
)

func setupTestAuth(t *testing.T) (*service.AuthService, *Middleware) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tokens := security.NewChildTokenIssuer("test-secret", time.Hour)
	authService := service.NewAuthService(db, time.Hour, tokens)

	csrf := security.NewCSRFGenerator("test-secret")
	limiter := security.NewRateLimiter(5, time.Minute)
	return authService, NewMiddleware(authService, csrf, limiter)
}

func TestRequireParentRedirectsWithoutSession(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	_, middleware := setupTestAuth(t)

	called := false
	handler := middleware.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("GET", "/parent/dashboard", nil))

	if called {
		t.Error("handler should not run without a session")
	}
	if recorder.Code != http.StatusSeeOther {
		t.Errorf("expected redirect, got %d", recorder.Code)
	}
	if loc := recorder.Header().Get("Location"); loc != "/parent/login" {
		t.Errorf("expected redirect to /parent/login, got %q", loc)
	}
}

func TestRequireParentPassesWithValidSession(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	authService, middleware := setupTestAuth(t)

	if _, err := authService.RegisterParent("Alex", "", "password123", false); err != nil {
		t.Fatalf("RegisterParent failed: %v", err)
	}
	session, _, err := authService.LoginParent("Alex", "password123")
	if err != nil {
		t.Fatalf("LoginParent failed: %v", err)
	}

	handler := middleware.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		parent := GetParentFromContext(r.Context())
		if parent == nil || parent.Name != "Alex" {
			t.Error("parent missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/parent/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})

	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	authService, middleware := setupTestAuth(t)

	if _, err := authService.RegisterParent("Alex", "", "password123", false); err != nil {
		t.Fatalf("RegisterParent failed: %v", err)
	}
	session, _, err := authService.LoginParent("Alex", "password123")
	if err != nil {
		t.Fatalf("LoginParent failed: %v", err)
	}

	handler := middleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		t.Error("non-admin should not reach the handler")
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})

	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", recorder.Code)
	}
}

func TestRequireChild(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	authService, middleware := setupTestAuth(t)

	_, token, err := authService.SelectChild("Nova")
	if err != nil {
		t.Fatalf("SelectChild failed: %v", err)
	}

	handler := middleware.RequireChild(func(w http.ResponseWriter, r *http.Request) {
		child := GetChildFromContext(r.Context())
		if child == nil || child.Name != "Nova" {
			t.Error("child missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})

	// No cookie redirects to profile selection
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("GET", "/home", nil))
	if recorder.Code != http.StatusSeeOther {
		t.Errorf("expected redirect without token, got %d", recorder.Code)
	}

	// Valid token passes through
	req := httptest.NewRequest("GET", "/home", nil)
	req.AddCookie(&http.Cookie{Name: ChildTokenCookieName, Value: token})
	recorder = httptest.NewRecorder()
	handler(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", recorder.Code)
	}

	// Garbage token redirects
	req = httptest.NewRequest("GET", "/home", nil)
	req.AddCookie(&http.Cookie{Name: ChildTokenCookieName, Value: "garbage"})
	recorder = httptest.NewRecorder()
	handler(recorder, req)
	if recorder.Code != http.StatusSeeOther {
		t.Errorf("expected redirect with garbage token, got %d", recorder.Code)
	}
}

func TestCSRFProtect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	authService, middleware := setupTestAuth(t)

	if _, err := authService.RegisterParent("Alex", "", "password123", false); err != nil {
		t.Fatalf("RegisterParent failed: %v", err)
	}
	session, _, err := authService.LoginParent("Alex", "password123")
	if err != nil {
		t.Fatalf("LoginParent failed: %v", err)
	}

	handler := middleware.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	postForm := func(token string) *httptest.ResponseRecorder {
		form := url.Values{}
		if token != "" {
			form.Set("csrf_token", token)
		}
		req := httptest.NewRequest("POST", "/parent/score", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
		recorder := httptest.NewRecorder()
		handler(recorder, req)
		return recorder
	}

	// Missing token rejected
	if rec := postForm(""); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without token, got %d", rec.Code)
	}

	// Wrong token rejected
	if rec := postForm("not-the-token"); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 with wrong token, got %d", rec.Code)
	}

	// The token from CSRFToken passes
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
	token := middleware.CSRFToken(req)
	if token == "" {
		t.Fatal("expected a CSRF token for the session")
	}
	if rec := postForm(token); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	_, middleware := setupTestAuth(t)

	handler := middleware.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// The limiter allows 5 per minute in this setup
	for i := 0; i < 5; i++ {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/parent/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		handler(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/parent/login", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	handler(recorder, req)
	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the limit, got %d", recorder.Code)
	}
}
