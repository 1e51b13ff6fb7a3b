package models

import "time"

// Role names seeded by the initial migration. Levels are gap-spaced so
// new tiers can be inserted without renumbering.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents a member account
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	RoleID        int64
	RoleName      string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin reports whether the user may access the admin area
func (u *User) IsAdmin() bool {
	return u.RoleName == RoleAdmin || u.RoleName == RoleModerator
}

// Role is static reference data mapping a name to a permission level
type Role struct {
	ID    int64
	Name  string
	Level int
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// PasswordResetToken represents a single-use, time-boxed reset token
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
