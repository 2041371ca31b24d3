package session

import "github.com/userconsole/internal/model"

// Session is the client-held record of the authenticated user and their
// bearer token, restored from the durable store on every request.
type Session struct {
	ID    string
	Token string
	User  *model.User
}

// IsAuthenticated reports whether both the token and the user record are
// present. One without the other is never authenticated.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// IsAdmin reports whether the session's user has the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.User != nil && s.User.Role == model.RoleAdmin
}
