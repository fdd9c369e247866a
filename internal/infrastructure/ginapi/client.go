// Package ginapi talks HTTP to the external Gin API: the unauthenticated
// login/register/refresh contract in Client, and bearer-authorized data calls
// with 401 recovery in AuthorizedClient.
package ginapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/pkg/metrics"
	"github.com/sijagur/dashboard-gateway/pkg/logger"
)

const (
	pathLogin    = "/user/login"
	pathRegister = "/user/register"
	pathRefresh  = "/token/refresh"
	pathProfile  = "/user/profile"

	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 10 << 20
)

// Client implements ports.GinAPI.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
	log     zerolog.Logger
}

// NewClient returns a Client for baseURL (for example http://localhost:9000/v1).
// timeout bounds every single request.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
		log:     logger.Component(log, "ginapi"),
	}
}

type loginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenBody is the token object of login and refresh responses.
type tokenBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// tokenField accepts {"token": {...}} and {"token": "<access>"}.
type tokenField struct {
	tokenBody
}

func (t *tokenField) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t.AccessToken = s
		return nil
	}
	return json.Unmarshal(b, &t.tokenBody)
}

type authResponse struct {
	User  *domain.UserProfile `json:"user"`
	Token *tokenField         `json:"token"`
	tokenBody
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*ports.LoginResult, error) {
	req := loginRequest{Password: creds.Password}
	if creds.IsEmail() {
		req.Email = creds.Identifier
	} else {
		req.Username = creds.Identifier
	}

	res, err := c.Send(ctx, http.MethodPost, pathLogin, req, "")
	if err != nil {
		return nil, err
	}

	var body authResponse
	if err := res.Decode(&body); err != nil {
		return nil, fmt.Errorf("login: decode response: %w", err)
	}
	pair := c.pair(body)
	if err := pair.Validate(); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &ports.LoginResult{Tokens: pair, User: body.User}, nil
}

func (c *Client) Register(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error) {
	req := registerRequest{Email: creds.Identifier, Password: creds.Password, Name: creds.DisplayName()}

	res, err := c.Send(ctx, http.MethodPost, pathRegister, req, "")
	if err != nil {
		return nil, err
	}

	var body authResponse
	if err := res.Decode(&body); err != nil {
		return nil, fmt.Errorf("register: decode response: %w", err)
	}
	return body.User, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	res, err := c.Send(ctx, http.MethodPost, pathRefresh, refreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return domain.TokenPair{}, err
	}

	var body authResponse
	if err := res.Decode(&body); err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh: decode response: %w", err)
	}
	pair := c.pair(body)
	if err := pair.Validate(); err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	return pair, nil
}

// Profile fetches the user behind accessToken. The Gin API rejects unknown or
// expired tokens with 401.
func (c *Client) Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	res, err := c.Send(ctx, http.MethodGet, pathProfile, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var user domain.UserProfile
	if err := res.Decode(&user); err != nil {
		return nil, fmt.Errorf("profile: decode response: %w", err)
	}
	return &user, nil
}

// pair prefers the nested token object and falls back to top-level fields.
func (c *Client) pair(body authResponse) domain.TokenPair {
	tb := body.tokenBody
	if body.Token != nil && body.Token.AccessToken != "" {
		tb = body.Token.tokenBody
	}
	pair := domain.TokenPair{AccessToken: tb.AccessToken, RefreshToken: tb.RefreshToken}
	if tb.ExpiresIn > 0 {
		pair.ExpiresAt = c.now().Add(time.Duration(tb.ExpiresIn) * time.Second)
	}
	return pair
}

// Send performs one request. Non-2xx statuses become *domain.APIError carrying
// the backend message; transport failures become network errors.
func (c *Client) Send(ctx context.Context, method, path string, body any, token string) (*ports.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req, err := buildRequest(ctx, c.baseURL, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, domain.NewNetworkError(err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestsTotal.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewNetworkError(err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("gin api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewStatusError(resp.StatusCode, backendMessage(data))
	}
	return &ports.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// buildRequest is a pure function of its inputs; the bearer token is an
// explicit argument and an empty token sends no Authorization header.
func buildRequest(ctx context.Context, baseURL, method, path string, body []byte, token string) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return data, nil
	}
}

// backendMessage extracts {"message"} or {"error"} from an error body.
func backendMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
