package ports

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

// LoginResult is a successful /user/login response.
type LoginResult struct {
	Tokens domain.TokenPair
	User   *domain.UserProfile // nil when the backend omitted it
}

// GinAPI is the unauthenticated part of the Gin API contract. Failures are
// returned as *domain.APIError.
type GinAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*LoginResult, error)
	Register(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

// Response is a completed Gin API response with a 2xx status.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// APICaller issues authorized calls against the Gin API.
type APICaller interface {
	Call(ctx context.Context, method, path string, body any) (*Response, error)
}

// BearerSender sends one request with an explicit bearer token and no
// reauthentication.
type BearerSender interface {
	Send(ctx context.Context, method, path string, body any, token string) (*Response, error)
}

// TokenVerifier checks a caller's access token against the Gin API.
// Rejected tokens yield domain.ErrClientTokenRejected.
type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) error
}
