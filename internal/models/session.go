package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a planner session token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionToken is returned when a session is issued.
type SessionToken struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionState is the persisted form of a session schedule.
type SessionState struct {
	Serialized string            `json:"serialized"`
	Colors     map[string]string `json:"colors,omitempty"`
	ColorIndex int               `json:"color_index"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
