package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/core/service"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/memory"
)

type stubGinAPI struct{}

func (stubGinAPI) Login(ctx context.Context, creds domain.Credentials) (*ports.LoginResult, error) {
	return &ports.LoginResult{Tokens: domain.TokenPair{AccessToken: "abc", RefreshToken: "xyz"}}, nil
}

func (stubGinAPI) Register(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error) {
	return &domain.UserProfile{ID: 1}, nil
}

func (stubGinAPI) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	return domain.TokenPair{AccessToken: "abc2"}, nil
}

// stubCaller records every forwarded call, with the token for direct sends.
type stubCaller struct {
	mu        sync.Mutex
	body      string
	forwarded []string
}

func (s *stubCaller) Call(ctx context.Context, method, path string, body any) (*ports.Response, error) {
	return s.record("service", method, path)
}

func (s *stubCaller) Send(ctx context.Context, method, path string, body any, token string) (*ports.Response, error) {
	return s.record("bearer:"+token, method, path)
}

func (s *stubCaller) record(as, method, path string) (*ports.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwarded = append(s.forwarded, as+" "+method+" "+path)
	return &ports.Response{StatusCode: http.StatusOK, Body: []byte(s.body)}, nil
}

func (s *stubCaller) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.forwarded...)
}

// stubVerifier accepts only the "abc" token.
type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, accessToken string) error {
	if accessToken != "abc" {
		return fmt.Errorf("%w: %w", domain.ErrClientTokenRejected, domain.NewStatusError(http.StatusUnauthorized, "token invalid"))
	}
	return nil
}

type testRouter struct {
	http.Handler
	tokens *memory.TokenStore
	caller *stubCaller
}

func newTestRouter(t *testing.T, requireClient bool) testRouter {
	t.Helper()
	log := zerolog.Nop()
	tokens := memory.NewTokenStore()
	profiles := memory.NewProfileRepository()
	creds := domain.Credentials{Identifier: "admin@example.com", Password: "secret"}

	caller := &stubCaller{body: `{"results":[{"data":[{"category":"fisik","progress_formatted":"50%"}],"meta":{"year":2024,"month":3,"month_name":"Maret"}}]}`}
	e := NewRouter(Dependencies{
		GinAPI:    stubGinAPI{},
		Caller:    caller,
		Sender:    caller,
		Verifier:  stubVerifier{},
		Auth:      service.NewAuthenticator(stubGinAPI{}, tokens, profiles, creds, 0, log),
		Session:   service.NewSession(tokens, profiles, creds.Identifier, domain.PolicyPresence),
		Dashboard: service.NewDashboardService(caller, nil, 0, log),
		Guard: func(s ports.Session) ports.RouteGuard {
			return service.NewSessionGuard(s, log)
		},
		ExpiryPolicy:  domain.PolicyPresence,
		RequireClient: requireClient,
		Log:           log,
	})
	return testRouter{Handler: e, tokens: tokens, caller: caller}
}

func serve(h http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(`{}`)
	}
	req := httptest.NewRequest(method, target, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, false)
	if rec := serve(h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness without dependencies should be ok, got %d", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t, false)
	serve(h, http.MethodGet, "/health", "")

	rec := serve(h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gateway_requests_total") {
		t.Fatalf("http metrics missing from /metrics")
	}
}

func TestRouter_SessionLoginThenLogout(t *testing.T) {
	h := newTestRouter(t, false)
	tokens := h.tokens

	rec := serve(h, http.MethodPost, "/v1/session/login", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var state domain.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil || !state.IsAuthenticated {
		t.Fatalf("unexpected state %+v (%v)", state, err)
	}
	if pair, _ := tokens.Get(context.Background()); pair.AccessToken != "abc" {
		t.Fatalf("expected stored token abc, got %+v", pair)
	}

	if rec := serve(h, http.MethodPost, "/v1/session/logout", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if pair, _ := tokens.Get(context.Background()); !pair.IsZero() {
		t.Fatalf("expected empty store after logout")
	}
}

func TestRouter_RouteGuard(t *testing.T) {
	h := newTestRouter(t, false)

	rec := serve(h, http.MethodGet, "/v1/session/route?path=/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redirect_to":"/login?redirect=/dashboard"`) {
		t.Fatalf("unexpected decision %s", rec.Body.String())
	}

	rec = serve(h, http.MethodGet, "/v1/session/route?path=/dashboard", "abc")
	if !strings.Contains(rec.Body.String(), `"allow":true`) {
		t.Fatalf("unexpected decision %s", rec.Body.String())
	}
}

func TestRouter_DashboardRequiresClientSession(t *testing.T) {
	h := newTestRouter(t, true)

	rec := serve(h, http.MethodGet, "/v1/dashboard/realisasi-bulan", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = serve(h, http.MethodGet, "/v1/dashboard/realisasi-bulan", "abc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Persentase Capaian Realisasi") {
		t.Fatalf("unexpected cards %s", rec.Body.String())
	}
}

func TestRouter_ValidationErrorEnvelope(t *testing.T) {
	h := newTestRouter(t, false)

	rec := serve(h, http.MethodGet, "/v1/dashboard/stats?bulan=0&tahun=1999", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["kind"] != string(domain.KindValidation) || body["error"] == "" {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestRouter_ProxyRejectsForgedBearer(t *testing.T) {
	h := newTestRouter(t, true)

	rec := serve(h, http.MethodPost, "/v1/proxy/user/assign-role", "not-a-real-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = serve(h, http.MethodGet, "/v1/proxy/articles", "not-a-real-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for read, got %d", rec.Code)
	}
	if calls := h.caller.calls(); len(calls) != 0 {
		t.Fatalf("forged bearer reached the gin api: %v", calls)
	}
}

func TestRouter_ProxyWriteUsesCallerToken(t *testing.T) {
	h := newTestRouter(t, true)

	if rec := serve(h, http.MethodPost, "/v1/proxy/article", "abc"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := serve(h, http.MethodGet, "/v1/proxy/articles", "abc"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	calls := h.caller.calls()
	if len(calls) != 2 || calls[0] != "bearer:abc POST /article" || calls[1] != "service GET /articles" {
		t.Fatalf("unexpected forwarded calls %v", calls)
	}
}

func TestRouter_ProxyWriteWithoutGateNeedsCallerToken(t *testing.T) {
	h := newTestRouter(t, false)

	if rec := serve(h, http.MethodPost, "/v1/proxy/user/assign-role", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if calls := h.caller.calls(); len(calls) != 0 {
		t.Fatalf("anonymous write reached the gin api: %v", calls)
	}
}

func TestRouter_SessionControlIsGated(t *testing.T) {
	h := newTestRouter(t, true)
	ctx := context.Background()
	if err := h.tokens.Set(ctx, domain.TokenPair{AccessToken: "service"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	for _, bearer := range []string{"", "not-a-real-token"} {
		if rec := serve(h, http.MethodPost, "/v1/session/logout", bearer); rec.Code != http.StatusUnauthorized {
			t.Fatalf("logout with %q: expected 401, got %d", bearer, rec.Code)
		}
		if rec := serve(h, http.MethodPost, "/v1/session/login", bearer); rec.Code != http.StatusUnauthorized {
			t.Fatalf("login with %q: expected 401, got %d", bearer, rec.Code)
		}
	}
	if pair, _ := h.tokens.Get(ctx); pair.AccessToken != "service" {
		t.Fatalf("service session changed by an unverified caller: %+v", pair)
	}

	if rec := serve(h, http.MethodPost, "/v1/session/logout", "abc"); rec.Code != http.StatusNoContent {
		t.Fatalf("verified logout: expected 204, got %d", rec.Code)
	}
}

func TestRouter_RequireClientWithoutVerifierPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewRouter(Dependencies{RequireClient: true, Log: zerolog.Nop()})
}
