// Package session carries the authenticated user explicitly into every
// component that needs it.
package session

// RoleAdmin grants elevated delete privilege.
const RoleAdmin = "admin"

// User is the backend's user summary.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Session is the read-only identity of the current user.
type Session struct {
	Token string
	User  User
}

// New returns a session for token and user.
func New(token string, user User) *Session {
	return &Session{Token: token, User: user}
}

// Authenticated reports whether the session can be used for writes.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.User.ID != ""
}

func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == RoleAdmin
}

// CanModerate reports whether the session may delete content owned by ownerID.
func (s *Session) CanModerate(ownerID string) bool {
	if !s.Authenticated() {
		return false
	}
	return s.IsAdmin() || (ownerID != "" && ownerID == s.User.ID)
}
