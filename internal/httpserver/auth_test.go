package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"
)

func TestLoginSetsSessionCookieAndRedirectsByRole(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.user = &domain.User{ID: "admin", Role: domain.RoleAdmin}
	env.accounts.session = &domain.Session{ID: "admin-sid", UserID: "admin", Role: domain.RoleAdmin}

	rec := env.do(t, formRequest(http.MethodPost, "/auth/login", url.Values{"email": {"a@example.com"}, "password": {"x"}}), "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard/admin" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != sessionCookie {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/admin/orders", nil)
	req.AddCookie(cookies[0])
	follow := httptest.NewRecorder()
	env.router.ServeHTTP(follow, req)
	if follow.Code != http.StatusOK {
		t.Fatalf("expected issued cookie to authenticate, got %d", follow.Code)
	}
}

func TestLoginInvalidCredentialsRedirectsWithError(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.loginErr = usersvc.ErrInvalidCredentials
	rec := env.do(t, formRequest(http.MethodPost, "/auth/login", url.Values{"email": {"a@example.com"}}), "")
	want := "/auth/login?error=" + url.QueryEscape("Invalid Credentials.")
	if rec.Header().Get("Location") != want {
		t.Fatalf("expected %q, got %q", want, rec.Header().Get("Location"))
	}
}

func TestLoginJSONInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.loginErr = usersvc.ErrInvalidCredentials
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@example.com","password":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(t, req, "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid Credentials.") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogoutEvictsSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/auth/logout", nil), "customer-sid")
	if rec.Header().Get("Location") != "/auth/login?logout=manual" {
		t.Fatalf("unexpected redirect %q", rec.Header().Get("Location"))
	}
	if env.accounts.loggedOut != "customer-sid" {
		t.Fatalf("session was not evicted")
	}
}

func TestLoginPageMessages(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/auth/login?logout=inactive", nil), "")
	if !strings.Contains(rec.Body.String(), "inactivity") {
		t.Fatalf("expected inactivity message, got %s", rec.Body.String())
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/auth/login?error=Please+log+in", nil), "")
	if !strings.Contains(rec.Body.String(), `"error":"Please log in"`) {
		t.Fatalf("expected error passthrough, got %s", rec.Body.String())
	}
}

func TestRegisterRecordsClientIP(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.user = &domain.User{ID: "u1"}
	req := formRequest(http.MethodPost, "/auth/register", url.Values{
		"firstName":             {"Ana"},
		"email":                 {"a@example.com"},
		"password":              {"Secr3t!pass"},
		"confirmPassword":       {"Secr3t!pass"},
		"cf-turnstile-response": {"tok"},
	})
	rec := env.do(t, req, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	got := env.accounts.registered
	if got == nil || got.Token != "tok" || got.RemoteIP == "" || got.ConfirmPassword != "Secr3t!pass" {
		t.Fatalf("unexpected register input %+v", got)
	}
}

func TestResetPageRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.resetErr = usersvc.ErrInvalidResetToken
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/auth/reset/bogus", nil), "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid or expired password reset token.") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestResetPasswordSuccessRedirect(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, formRequest(http.MethodPost, "/auth/reset", url.Values{"token": {"t"}, "password": {"a"}, "confirmPassword": {"a"}}), "")
	if rec.Header().Get("Location") != "/auth/login?reset=success" {
		t.Fatalf("unexpected redirect %q", rec.Header().Get("Location"))
	}
}
