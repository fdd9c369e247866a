package domain

import "strings"

// Credentials identify the service account the gateway uses against the Gin API.
// They are read once from configuration and never mutated afterwards.
type Credentials struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
	Name       string
}

// IsEmail reports whether the identifier looks like an email address.
func (c Credentials) IsEmail() bool {
	return strings.Contains(c.Identifier, "@")
}

// DisplayName returns the registration name, falling back to the local part
// of the identifier.
func (c Credentials) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if i := strings.IndexByte(c.Identifier, '@'); i > 0 {
		return c.Identifier[:i]
	}
	return c.Identifier
}
