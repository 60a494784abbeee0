package models

import "time"

// Invitation is a time-limited, single-use token granting session binding
// to a project. The token is independent of the id and never guessable.
//
// Only the pending -> used transition is stored; expiry and
// project-deletion are derived at read time, so validity is always a pure
// function of (is_used, expires_at, project exists).
type Invitation struct {
	ID        string     `json:"invitationId"`
	Token     string     `json:"-"`
	ProjectID string     `json:"projectId"`
	Email     string     `json:"email"`
	InvitedBy *string    `json:"invitedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	IsUsed    bool       `json:"isUsed"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// Expired reports whether the invitation's expiry has passed at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
