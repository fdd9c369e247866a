package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

func TestRequireAuthenticated_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := ClientSession(domain.PolicyPresence)(RequireAuthenticated()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}))

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuthenticated_Rejects(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ClientSession(domain.PolicyPresence)(RequireAuthenticated()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	}))

	_ = handler(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthenticated_WithoutClientSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireAuthenticated()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type stubVerifier struct {
	seen string
	err  error
}

func (s *stubVerifier) Verify(ctx context.Context, accessToken string) error {
	s.seen = accessToken
	return s.err
}

func runVerifyClient(t *testing.T, verifier *stubVerifier) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer caller-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := ClientSession(domain.PolicyPresence)(RequireAuthenticated()(VerifyClient(verifier)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})))
	err := handler(c)
	return rec, called, err
}

func TestVerifyClient_Accepts(t *testing.T) {
	verifier := &stubVerifier{}
	rec, called, err := runVerifyClient(t, verifier)
	if err != nil || !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got called=%v code=%d err=%v", called, rec.Code, err)
	}
	if verifier.seen != "caller-token" {
		t.Fatalf("verifier saw %q", verifier.seen)
	}
}

func TestVerifyClient_RejectedToken(t *testing.T) {
	verifier := &stubVerifier{err: fmt.Errorf("%w: %w", domain.ErrClientTokenRejected, domain.NewStatusError(401, ""))}
	rec, called, err := runVerifyClient(t, verifier)
	if err != nil || called {
		t.Fatalf("expected rejection, got called=%v err=%v", called, err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestVerifyClient_UpstreamFailurePropagates(t *testing.T) {
	outage := domain.NewNetworkError(errors.New("connection refused"))
	_, called, err := runVerifyClient(t, &stubVerifier{err: outage})
	if called || !errors.Is(err, outage) {
		t.Fatalf("expected upstream error, got called=%v err=%v", called, err)
	}
}
