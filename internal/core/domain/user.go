package domain

// UserProfile models the user object returned by the Gin API on login and
// register. It is cached locally next to the token pair.
type UserProfile struct {
	ID       int64  `json:"id" bson:"user_id"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	Username string `json:"username,omitempty" bson:"username,omitempty"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Role     string `json:"role,omitempty" bson:"role,omitempty"`
}

// DisplayName mirrors the dashboard header: name, then username, then "User".
func (u *UserProfile) DisplayName() string {
	switch {
	case u == nil:
		return "User"
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return "User"
	}
}
