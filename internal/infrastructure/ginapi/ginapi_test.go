package ginapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/service"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/memory"
)

// fakeGin is a scripted Gin API. Each endpoint answers from its queue; the
// last entry repeats.
type fakeGin struct {
	mu        sync.Mutex
	responses map[string][]fakeResponse
	hits      map[string]*int32
	requests  []*http.Request
	bodies    map[string][]string
	// gates answer 401 on a path unless the request carries the token
	gates    map[string]string
	rejected int32
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeGin(t *testing.T) (*fakeGin, *httptest.Server) {
	t.Helper()
	f := &fakeGin{
		responses: make(map[string][]fakeResponse),
		hits:      make(map[string]*int32),
		bodies:    make(map[string][]string),
		gates:     make(map[string]string),
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeGin) on(path string, responses ...fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = responses
	var n int32
	f.hits[path] = &n
}

func (f *fakeGin) requireToken(path, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[path] = token
}

func (f *fakeGin) count(path string) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.hits[path]; ok {
		return atomic.LoadInt32(n)
	}
	return 0
}

func (f *fakeGin) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeGin) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], string(body))
	if want, gated := f.gates[r.URL.Path]; gated && r.Header.Get("Authorization") != "Bearer "+want {
		f.mu.Unlock()
		atomic.AddInt32(&f.rejected, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message": "token expired"}`)
		return
	}
	queue, ok := f.responses[r.URL.Path]
	var res fakeResponse
	if ok {
		n := atomic.AddInt32(f.hits[r.URL.Path], 1)
		idx := int(n) - 1
		if idx >= len(queue) {
			idx = len(queue) - 1
		}
		res = queue[idx]
	}
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.status)
	_, _ = io.WriteString(w, res.body)
}

type harness struct {
	gin   *fakeGin
	store *memory.TokenStore
	auth  *service.Authenticator
	api   *AuthorizedClient

	redirects int32
}

func newHarness(t *testing.T, initial domain.TokenPair, autoAuth bool) *harness {
	t.Helper()
	gin, srv := newFakeGin(t)
	client := NewClient(srv.URL+"/v1", 2*time.Second, zerolog.Nop())

	store := memory.NewTokenStore()
	if !initial.IsZero() {
		_ = store.Set(context.Background(), initial)
	}
	creds := domain.Credentials{Identifier: "admin@example.com", Password: "secret"}
	auth := service.NewAuthenticator(client, store, memory.NewProfileRepository(), creds, time.Second, zerolog.Nop())

	h := &harness{gin: gin, store: store, auth: auth}
	h.api = NewAuthorizedClient(client, store, auth, autoAuth, zerolog.Nop())
	h.api.OnUnauthorized = func(context.Context) { atomic.AddInt32(&h.redirects, 1) }
	return h
}

func (h *harness) authCalls() int32 {
	return h.gin.count("/v1/user/login") + h.gin.count("/v1/token/refresh") + h.gin.count("/v1/user/register")
}

func TestAuthorizedClient_StoredTokenSuccess(t *testing.T) {
	h := newHarness(t, domain.TokenPair{AccessToken: "abc", RefreshToken: "xyz"}, true)
	h.gin.on("/v1/articles", fakeResponse{http.StatusOK, `{"data": []}`})

	res, err := h.api.Call(context.Background(), http.MethodGet, "/articles", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	if got := h.gin.lastRequest().Header.Get("Authorization"); got != "Bearer abc" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
	if n := h.authCalls(); n != 0 {
		t.Fatalf("authenticator should not be invoked, got %d auth calls", n)
	}
}

func TestAuthorizedClient_RecoversFromOne401(t *testing.T) {
	h := newHarness(t, domain.TokenPair{AccessToken: "old", RefreshToken: "r1"}, true)
	h.gin.on("/v1/realisasi-bulan",
		fakeResponse{http.StatusUnauthorized, `{"message": "token expired"}`},
		fakeResponse{http.StatusOK, `{"data": []}`},
	)
	h.gin.on("/v1/token/refresh", fakeResponse{http.StatusOK, `{"access_token": "new", "refresh_token": "r2"}`})

	res, err := h.api.Call(context.Background(), http.MethodGet, "/realisasi-bulan?idsatker=0", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	if n := h.gin.count("/v1/token/refresh"); n != 1 {
		t.Fatalf("expected exactly one refresh, got %d", n)
	}
	if n := h.gin.count("/v1/user/login"); n != 0 {
		t.Fatalf("login should not be needed, got %d", n)
	}
	if got := h.gin.lastRequest().Header.Get("Authorization"); got != "Bearer new" {
		t.Fatalf("retry should carry the new token, got %q", got)
	}
	if pair, _ := h.store.Get(context.Background()); pair.AccessToken != "new" || pair.RefreshToken != "r2" {
		t.Fatalf("unexpected stored pair %+v", pair)
	}
}

func TestAuthorizedClient_Two401sSurfaceFailure(t *testing.T) {
	h := newHarness(t, domain.TokenPair{AccessToken: "old", RefreshToken: "r1"}, true)
	h.gin.on("/v1/articles", fakeResponse{http.StatusUnauthorized, `{"message": "still no"}`})
	h.gin.on("/v1/token/refresh", fakeResponse{http.StatusOK, `{"access_token": "new", "refresh_token": "r2"}`})

	_, err := h.api.Call(context.Background(), http.MethodGet, "/articles", nil)
	if domain.KindOf(err) != domain.KindAuthentication || domain.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if n := h.gin.count("/v1/articles"); n != 2 {
		t.Fatalf("expected original request plus one retry, got %d", n)
	}
	if n := h.authCalls(); n != 1 {
		t.Fatalf("expected exactly one refresh-or-relogin call, got %d", n)
	}
	if pair, _ := h.store.Get(context.Background()); !pair.IsZero() {
		t.Fatalf("tokens should be purged, got %+v", pair)
	}
	if n := atomic.LoadInt32(&h.redirects); n != 1 {
		t.Fatalf("expected one redirect signal, got %d", n)
	}
}

func TestAuthorizedClient_Concurrent401sShareOneRefresh(t *testing.T) {
	h := newHarness(t, domain.TokenPair{AccessToken: "stale", RefreshToken: "r1"}, true)
	h.gin.requireToken("/v1/realisasi-bulan", "fresh")
	h.gin.on("/v1/realisasi-bulan", fakeResponse{http.StatusOK, `{"data": []}`})
	h.gin.on("/v1/token/refresh", fakeResponse{http.StatusOK, `{"access_token": "fresh", "refresh_token": "r2"}`})

	const callers = 50
	var wg sync.WaitGroup
	var failures int32
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := h.api.Call(context.Background(), http.MethodGet, "/realisasi-bulan", nil); err != nil {
				atomic.AddInt32(&failures, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if failures != 0 {
		t.Fatalf("%d of %d calls failed", failures, callers)
	}
	if n := h.gin.count("/v1/token/refresh"); n != 1 {
		t.Fatalf("expected exactly one refresh, got %d", n)
	}
	if n := h.gin.count("/v1/user/login"); n != 0 {
		t.Fatalf("login should not be needed, got %d", n)
	}
	if n := atomic.LoadInt32(&h.redirects); n != 0 {
		t.Fatalf("no redirect expected, got %d", n)
	}
	if pair, _ := h.store.Get(context.Background()); pair.AccessToken != "fresh" {
		t.Fatalf("unexpected stored pair %+v", pair)
	}
}

func TestClient_Profile(t *testing.T) {
	gin, srv := newFakeGin(t)
	client := NewClient(srv.URL+"/v1", 2*time.Second, zerolog.Nop())
	gin.requireToken("/v1/user/profile", "caller")
	gin.on("/v1/user/profile", fakeResponse{http.StatusOK, `{"id": 4, "email": "operator@example.com", "name": "Operator"}`})

	user, err := client.Profile(context.Background(), "caller")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if user.ID != 4 || user.Name != "Operator" {
		t.Fatalf("unexpected user %+v", user)
	}
	if got := gin.lastRequest().Method; got != http.MethodGet {
		t.Fatalf("unexpected method %s", got)
	}

	_, err = client.Profile(context.Background(), "forged")
	if domain.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthorizedClient_EndToEndRegistration(t *testing.T) {
	h := newHarness(t, domain.TokenPair{}, true)
	h.gin.on("/v1/user/login",
		fakeResponse{http.StatusUnauthorized, `{"message": "user not found"}`},
		fakeResponse{http.StatusOK, `{"token": {"access_token": "abc", "refresh_token": "xyz"}}`},
	)
	h.gin.on("/v1/user/register", fakeResponse{http.StatusOK, `{"user": {"id": 1}}`})
	h.gin.on("/v1/articles", fakeResponse{http.StatusOK, `{"data": []}`})

	if _, err := h.api.Call(context.Background(), http.MethodGet, "/articles", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	pair, _ := h.store.Get(context.Background())
	if pair.AccessToken != "abc" || pair.RefreshToken != "xyz" {
		t.Fatalf("final store state %+v, want abc/xyz", pair)
	}
	if h.gin.count("/v1/user/login") != 2 || h.gin.count("/v1/user/register") != 1 {
		t.Fatalf("unexpected auth traffic: login=%d register=%d",
			h.gin.count("/v1/user/login"), h.gin.count("/v1/user/register"))
	}

	var reg map[string]string
	_ = json.Unmarshal([]byte(h.gin.bodies["/v1/user/register"][0]), &reg)
	if reg["email"] != "admin@example.com" || reg["password"] != "secret" || reg["name"] != "admin" {
		t.Fatalf("unexpected register body %v", reg)
	}
}

func TestAuthorizedClient_NoAutoAuth(t *testing.T) {
	h := newHarness(t, domain.TokenPair{}, false)
	h.gin.on("/v1/articles", fakeResponse{http.StatusOK, `{}`})

	if _, err := h.api.Call(context.Background(), http.MethodGet, "/articles", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := h.gin.lastRequest().Header.Get("Authorization"); got != "" {
		t.Fatalf("expected no Authorization header, got %q", got)
	}
	if n := h.authCalls(); n != 0 {
		t.Fatalf("expected no auth calls, got %d", n)
	}
}

func TestAuthorizedClient_OtherErrorsAreClassified(t *testing.T) {
	cases := []struct {
		status int
		kind   domain.ErrorKind
	}{
		{http.StatusForbidden, domain.KindAuthorization},
		{http.StatusUnprocessableEntity, domain.KindValidation},
		{http.StatusNotFound, domain.KindClient},
		{http.StatusBadGateway, domain.KindServer},
	}
	for _, tc := range cases {
		h := newHarness(t, domain.TokenPair{AccessToken: "abc"}, true)
		h.gin.on("/v1/article", fakeResponse{tc.status, `{"message": "backend says no"}`})

		_, err := h.api.Call(context.Background(), http.MethodPost, "/article", map[string]string{"title": "x"})
		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected *domain.APIError, got %v", tc.status, err)
		}
		if apiErr.Kind != tc.kind || apiErr.Message != "backend says no" {
			t.Fatalf("status %d: got %+v", tc.status, apiErr)
		}
		if h.authCalls() != 0 {
			t.Fatalf("status %d: non-401 errors must not trigger reauthentication", tc.status)
		}
	}
}

func TestAuthorizedClient_RetryResendsSameBody(t *testing.T) {
	h := newHarness(t, domain.TokenPair{AccessToken: "old", RefreshToken: "r1"}, true)
	h.gin.on("/v1/article",
		fakeResponse{http.StatusUnauthorized, `{}`},
		fakeResponse{http.StatusCreated, `{"id": 9}`},
	)
	h.gin.on("/v1/token/refresh", fakeResponse{http.StatusOK, `{"access_token": "new"}`})

	res, err := h.api.Call(context.Background(), http.MethodPost, "/article", map[string]string{"title": "Berita"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	bodies := h.gin.bodies["/v1/article"]
	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[0] != `{"title":"Berita"}` {
		t.Fatalf("retry body differs: %q", bodies)
	}
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond, zerolog.Nop())
	_, err := client.Send(context.Background(), http.MethodGet, "/slow", nil, "abc")
	if domain.KindOf(err) != domain.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestClient_LoginResponseShapes(t *testing.T) {
	cases := map[string]domain.TokenPair{
		`{"user": {"id": 1}, "token": {"access_token": "a", "refresh_token": "r"}}`: {AccessToken: "a", RefreshToken: "r"},
		`{"token": {"access_token": "a"}}`:                                          {AccessToken: "a"},
		`{"token": "bare"}`:                                                         {AccessToken: "bare"},
		`{"access_token": "top", "refresh_token": "level"}`:                         {AccessToken: "top", RefreshToken: "level"},
	}
	for body, want := range cases {
		gin, srv := newFakeGin(t)
		gin.on("/user/login", fakeResponse{http.StatusOK, body})
		client := NewClient(srv.URL, time.Second, zerolog.Nop())

		res, err := client.Login(context.Background(), domain.Credentials{Identifier: "admin", Password: "p"})
		if err != nil {
			t.Fatalf("%s: Login: %v", body, err)
		}
		if res.Tokens != want {
			t.Fatalf("%s: got %+v, want %+v", body, res.Tokens, want)
		}

		var sent map[string]string
		_ = json.Unmarshal([]byte(gin.bodies["/user/login"][0]), &sent)
		if sent["username"] != "admin" || sent["email"] != "" {
			t.Fatalf("non-email identifier should be sent as username, got %v", sent)
		}
	}
}

func TestClient_LoginWithoutTokenFails(t *testing.T) {
	gin, srv := newFakeGin(t)
	gin.on("/user/login", fakeResponse{http.StatusOK, `{"user": {"id": 1}}`})
	client := NewClient(srv.URL, time.Second, zerolog.Nop())

	_, err := client.Login(context.Background(), domain.Credentials{Identifier: "a@b.c", Password: "p"})
	if !errors.Is(err, domain.ErrInvalidTokenPair) {
		t.Fatalf("expected ErrInvalidTokenPair, got %v", err)
	}
}

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest(context.Background(), "http://gin/v1", http.MethodPost, "/article", []byte(`{}`), "tok")
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.URL.String() != "http://gin/v1/article" {
		t.Fatalf("unexpected URL %s", req.URL)
	}
	want := map[string]string{
		"Authorization": "Bearer tok",
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}
	for k, v := range want {
		if got := req.Header.Get(k); got != v {
			t.Fatalf("header %s = %q, want %q", k, got, v)
		}
	}

	anon, _ := buildRequest(context.Background(), "http://gin/v1", http.MethodGet, "/articles", nil, "")
	if anon.Header.Get("Authorization") != "" {
		t.Fatalf("empty token must not produce an Authorization header")
	}
}
