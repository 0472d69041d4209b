package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_OpenPaths(t *testing.T) {
	handler := AuthMiddleware(okHandler())

	for _, path := range []string{"/login", "/auth/login", "/static/style.css"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Path %s should be open, got status %d", path, rec.Code)
		}
	}
}

func TestAuthMiddleware_RedirectsBrowser(t *testing.T) {
	handler := AuthMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect, got status %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Expected redirect to /login, got %s", loc)
	}
}

func TestAuthMiddleware_APIGets401(t *testing.T) {
	handler := AuthMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/detections", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for API request, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ValidCookie(t *testing.T) {
	handler := AuthMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/detections", nil)
	req.AddCookie(&http.Cookie{Name: "authenticated", Value: "true"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with valid cookie, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongCookieValue(t *testing.T) {
	handler := AuthMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "authenticated", Value: "maybe"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("Expected redirect for wrong cookie value, got %d", rec.Code)
	}
}
