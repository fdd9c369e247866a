package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrMissingCredentials   = errors.New("gin api credentials not configured")
	ErrInvalidTokenPair     = errors.New("token pair has no access token")
	ErrNoToken              = errors.New("no access token available")
	ErrProfileNotFound      = errors.New("user profile not found")
	ErrSnapshotMiss         = errors.New("snapshot not cached")
	ErrClientTokenRejected  = errors.New("client token rejected by gin api")
)

// ErrorKind classifies failures of calls to the Gin API.
type ErrorKind string

const (
	KindNetwork        ErrorKind = "network"
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindValidation     ErrorKind = "validation"
	KindServer         ErrorKind = "server"
	KindClient         ErrorKind = "client"
	KindUnknown        ErrorKind = "unknown"
)

// ClassifyStatus maps an HTTP status code to an ErrorKind.
func ClassifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized:
		return KindAuthentication
	case code == http.StatusForbidden:
		return KindAuthorization
	case code == http.StatusUnprocessableEntity:
		return KindValidation
	case code >= 500:
		return KindServer
	case code >= 400:
		return KindClient
	default:
		return KindUnknown
	}
}

// APIError is a classified failure of a single Gin API call.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // 0 when no response was received
	Message    string // backend "message" field, when present
	Err        error  // transport error, when present
}

// NewStatusError builds an APIError from a non-2xx response.
func NewStatusError(code int, message string) *APIError {
	return &APIError{Kind: ClassifyStatus(code), StatusCode: code, Message: message}
}

// NewNetworkError wraps a transport failure (timeout, refused connection,
// cancellation).
func NewNetworkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Err: err}
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("gin api: %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("gin api: %s (%d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("gin api: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("gin api: %s", e.Kind)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage returns a human-readable message suitable for the dashboard.
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		if errors.Is(e.Err, context.Canceled) {
			return "Request was cancelled"
		}
		return "No internet connection. Please check your network and try again."
	case KindAuthentication:
		return "Your session has expired. Please log in again."
	case KindAuthorization:
		return "You don't have permission to perform this action."
	case KindValidation:
		return "Please check your input and try again."
	case KindServer:
		return "Server error. Please try again later."
	}
	if e.StatusCode == http.StatusNotFound {
		return "The requested resource was not found."
	}
	if e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// KindOf extracts the ErrorKind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	if errors.Is(err, ErrAuthenticationFailed) {
		return KindAuthentication
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
