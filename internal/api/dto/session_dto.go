package dto

import "time"

// SessionUser is the decoded identity exposed by GET /api/session.
type SessionUser struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// SessionResponse mirrors the console's current session.
type SessionResponse struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *SessionUser `json:"user"`
	ExpiresAt       *time.Time   `json:"expiresAt,omitempty"`
	DecodeError     string       `json:"decodeError,omitempty"`
}
