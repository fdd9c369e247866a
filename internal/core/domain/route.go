package domain

import "net/url"

// RouteClass is the protection category of a navigation target.
type RouteClass int

const (
	// RouteProtected requires an authenticated session. It is the default.
	RouteProtected RouteClass = iota
	// RoutePublicOnly is only reachable without a session (login pages).
	RoutePublicOnly
)

func (c RouteClass) String() string {
	if c == RoutePublicOnly {
		return "public_only"
	}
	return "protected"
}

// Route describes one side of a navigation.
type Route struct {
	Name     string
	Path     string
	FullPath string // path plus query, as typed by the user
	Query    url.Values
}

// Target returns FullPath, falling back to Path.
func (r Route) Target() string {
	if r.FullPath != "" {
		return r.FullPath
	}
	return r.Path
}

// RouteDecision is the guard's verdict for a navigation.
type RouteDecision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect_to,omitempty"`
}
