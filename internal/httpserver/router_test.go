package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil), "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestBuildRouterRequiresSessions(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatalf("expected error without session store")
	}
}

func TestRequireAuthRedirectsWithMessage(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		method, path, want string
	}{
		{http.MethodPost, "/cart/add", "Please log in to add items to your cart."},
		{http.MethodGet, "/cart", "Please log in to view your cart."},
		{http.MethodGet, "/dashboard/customer", "Please log in to access your dashboard."},
		{http.MethodGet, "/user/profile", "Please log in to view this page."},
	}
	for _, tc := range cases {
		rec := env.do(t, httptest.NewRequest(tc.method, tc.path, nil), "")
		if rec.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", tc.path, rec.Code)
		}
		want := "/auth/login?error=" + url.QueryEscape(tc.want)
		if got := rec.Header().Get("Location"); got != want {
			t.Fatalf("%s: expected redirect %q, got %q", tc.path, want, got)
		}
	}
}

func TestRequireAuthJSONClientGets401(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Accept", "application/json")
	rec := env.do(t, req, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAdminForbidsCustomers(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/dashboard/admin/products", nil), "customer-sid")
	if rec.Code != http.StatusForbidden || rec.Body.String() != "Access Denied" {
		t.Fatalf("expected 403 Access Denied, got %d %q", rec.Code, rec.Body.String())
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/dashboard/admin/products", nil), "admin-sid")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin to pass, got %d", rec.Code)
	}
}

func TestIdleSessionRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/cart", nil), "idle-sid")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/auth/login?logout=inactive" {
		t.Fatalf("expected inactivity redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), sessionCookie+"=") {
		t.Fatalf("expected cookie to be cleared, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestUnknownSessionIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/products", nil), "gone-sid")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous page, got %d", rec.Code)
	}
}

func TestProductsPageListsCatalogue(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/products?category=all", nil), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"name":"Bear"`) || !strings.Contains(body, `"selectedCategory":"all"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/product/missing", nil), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDashboardRedirectsByRole(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/dashboard", nil), "admin-sid")
	if rec.Header().Get("Location") != "/dashboard/admin" {
		t.Fatalf("expected admin dashboard, got %q", rec.Header().Get("Location"))
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/dashboard", nil), "customer-sid")
	if rec.Header().Get("Location") != "/dashboard/customer" {
		t.Fatalf("expected customer dashboard, got %q", rec.Header().Get("Location"))
	}
}
