package captcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
)

func newTestVerifier(url string) *turnstile {
	return &turnstile{secret: "s3cret", endpoint: url, client: &http.Client{Timeout: time.Second}}
}

func TestVerifySuccessAndFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("secret") != "s3cret" || r.PostForm.Get("remoteip") != "10.0.0.1" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := newTestVerifier(srv.URL)
	if err := v.Verify(context.Background(), "good", "10.0.0.1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := v.Verify(context.Background(), "bad", "10.0.0.1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := v.Verify(context.Background(), "", "10.0.0.1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty token, got %v", err)
	}
}

func TestVerifyUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestVerifier(srv.URL).Verify(context.Background(), "tok", "")
	if !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestEmptySecretDisablesVerification(t *testing.T) {
	if err := NewTurnstile("").Verify(context.Background(), "", ""); err != nil {
		t.Fatalf("expected disabled verifier to accept, got %v", err)
	}
}
