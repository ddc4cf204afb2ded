// Package models defines the client-side data types of IdeaBoard.
package models

import "time"

// User is an account row. PasswordAlgo selects how PasswordHash is verified.
type User struct {
	ID           string
	Username     string
	PasswordAlgo string
	PasswordSalt string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an authenticated login. It is valid while now < ExpiresAt and
// the token row still exists remotely.
type Session struct {
	Token     string
	UserID    string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionUser is the minimal identity persisted next to the session token.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
