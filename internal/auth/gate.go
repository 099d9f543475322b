package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

// OAuthExchanger is the provider surface the gate depends on. Satisfied by
// *Provider; swapped for a stub in tests.
type OAuthExchanger interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*domain.User, *domain.Credential, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error)
}

// Gate owns the session lifecycle: OAuth exchange, opaque session issuance,
// token refresh, and logout. All credential reads and writes in the
// application flow through here.
type Gate struct {
	provider    OAuthExchanger
	users       domain.UserRepository
	sessions    domain.SessionRepository
	credentials domain.CredentialRepository

	ttl         time.Duration
	refreshSkew time.Duration

	// refreshGroup collapses concurrent refreshes for the same user into
	// a single provider round trip.
	refreshGroup singleflight.Group
}

func NewGate(provider OAuthExchanger, users domain.UserRepository, sessions domain.SessionRepository, credentials domain.CredentialRepository, ttl, refreshSkew time.Duration) *Gate {
	return &Gate{
		provider:    provider,
		users:       users,
		sessions:    sessions,
		credentials: credentials,
		ttl:         ttl,
		refreshSkew: refreshSkew,
	}
}

// AuthorizationURL returns the provider consent URL for the given state.
func (g *Gate) AuthorizationURL(state string) string {
	return g.provider.AuthorizationURL(state)
}

// HandleCallback completes the OAuth flow: exchanges the code, upserts the
// user, stores the credential, and issues a new session.
func (g *Gate) HandleCallback(ctx context.Context, code string) (*domain.Session, *domain.User, error) {
	user, cred, err := g.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.HandleCallback: %w", err)
	}

	if err := g.users.Upsert(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("auth.HandleCallback: storing user: %w", err)
	}

	if err := g.credentials.Put(ctx, user.ID, cred); err != nil {
		return nil, nil, fmt.Errorf("auth.HandleCallback: storing credential: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
		Active:    true,
	}
	if err := g.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("auth.HandleCallback: creating session: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("session_id", session.ID.String()).
		Msg("auth: session created")

	return session, user, nil
}

// Resolve validates a session token and returns the owning user ID plus a
// usable access token, refreshing the credential first when it is within
// the expiry skew. An unknown, expired, or deactivated session maps to
// domain.ErrUnauthenticated.
func (g *Gate) Resolve(ctx context.Context, sessionID uuid.UUID) (userID, accessToken string, err error) {
	session, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("auth.Resolve: unknown session: %w", domain.ErrUnauthenticated)
		}
		return "", "", fmt.Errorf("auth.Resolve: %w", err)
	}

	if session.Expired() {
		if derr := g.sessions.Deactivate(ctx, sessionID); derr != nil && !errors.Is(derr, domain.ErrNotFound) {
			log.Warn().Err(derr).Str("session_id", sessionID.String()).
				Msg("auth: failed to deactivate expired session")
		}
		return "", "", fmt.Errorf("auth.Resolve: session expired: %w", domain.ErrUnauthenticated)
	}

	cred, err := g.credentials.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("auth.Resolve: no credential: %w", domain.ErrReauthRequired)
		}
		return "", "", fmt.Errorf("auth.Resolve: %w", err)
	}

	if cred.Expiring(g.refreshSkew) {
		cred, err = g.refresh(ctx, session.UserID, cred)
		if err != nil {
			return "", "", err
		}
	}

	return session.UserID, cred.AccessToken, nil
}

// Logout deactivates the session. The stored credential is kept so a later
// login does not force a new consent round trip.
func (g *Gate) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := g.sessions.Deactivate(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("auth.Logout: %w", domain.ErrUnauthenticated)
		}
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// refresh exchanges the refresh token and persists the new credential.
// Concurrent callers for the same user share one provider round trip; the
// losers of the race reuse the winner's result.
func (g *Gate) refresh(ctx context.Context, userID string, cred *domain.Credential) (*domain.Credential, error) {
	fresh, err, _ := g.refreshGroup.Do(userID, func() (any, error) {
		// Re-read inside the flight: a just-finished refresh by another
		// caller already stored a token that is no longer expiring.
		current, err := g.credentials.Get(ctx, userID)
		if err == nil && !current.Expiring(g.refreshSkew) {
			return current, nil
		}
		if err != nil {
			current = cred
		}

		refreshed, err := g.provider.Refresh(ctx, current.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("auth.refresh: %w", err)
		}

		if err := g.credentials.Put(ctx, userID, refreshed); err != nil {
			return nil, fmt.Errorf("auth.refresh: storing credential: %w", err)
		}

		log.Debug().Str("user_id", userID).Time("expires_at", refreshed.ExpiresAt).
			Msg("auth: credential refreshed")

		return refreshed, nil
	})
	if err != nil {
		return nil, err
	}
	return fresh.(*domain.Credential), nil
}
