package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a platform account that completed the OAuth flow. The ID is the
// platform channel ID, not an application-generated value.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential is an access/refresh token pair for the platform API.
// Both tokens are stored encrypted at rest and must never appear in logs
// or InteractionRecord data.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expiring reports whether the access token expires within the given skew,
// i.e. the session should be refreshed before use.
func (c *Credential) Expiring(skew time.Duration) bool {
	return time.Now().Add(skew).After(c.ExpiresAt)
}

// Session maps an opaque token to a user and their platform credential.
// Created on OAuth exchange, mutated on token refresh, deactivated on
// logout or expiry. Exclusively owned by the session gate.
type Session struct {
	ID        uuid.UUID `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"-"`
}

// Expired reports whether the session itself (not the credential) is past
// its lifetime.
func (s *Session) Expired() bool {
	return !s.Active || time.Now().After(s.ExpiresAt)
}

type UserRepository interface {
	Upsert(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// CredentialRepository stores one credential per user. Implementations
// encrypt token material before it reaches storage.
type CredentialRepository interface {
	Put(ctx context.Context, userID string, c *Credential) error
	Get(ctx context.Context, userID string) (*Credential, error)
}
