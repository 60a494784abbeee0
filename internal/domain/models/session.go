package models

import "time"

// Session is a client's membership handle into exactly one project at a
// time. Rejoining with an existing session id rebinds it to the new
// project rather than creating a second record.
type Session struct {
	ID           string    `json:"sessionId"`
	ProjectID    string    `json:"projectId"`
	UserName     *string   `json:"userName,omitempty"`
	JoinedAt     time.Time `json:"joinedAt"`
	LastActivity time.Time `json:"lastActivity"`
	IsActive     bool      `json:"isActive"`
}

// DisplayName returns the session's user name, or empty when unset.
func (s *Session) DisplayName() string {
	if s.UserName == nil {
		return ""
	}
	return *s.UserName
}
