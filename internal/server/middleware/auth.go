package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

// SessionHeader carries the opaque session token on every authenticated
// request.
const SessionHeader = "x-session-id"

// SessionResolver validates a session token and yields the owning user plus
// a live platform access token. Satisfied by *auth.Gate.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID uuid.UUID) (userID, accessToken string, err error)
}

// SessionAuth authenticates requests by the x-session-id header. On success
// the session ID, user ID, and access token are injected into the request
// context; on failure the request is rejected with a 401 before reaching
// any handler.
func SessionAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(SessionHeader)
			if raw == "" {
				unauthorized(w, "missing session token")
				return
			}

			sessionID, err := uuid.Parse(raw)
			if err != nil {
				unauthorized(w, "malformed session token")
				return
			}

			userID, accessToken, err := resolver.Resolve(r.Context(), sessionID)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrReauthRequired):
					unauthorized(w, "platform authorization revoked, sign in again")
				case errors.Is(err, domain.ErrUnauthenticated):
					unauthorized(w, "session expired or unknown")
				default:
					log.Error().Err(err).Msg("auth middleware: session resolution failed")
					http.Error(w, `{"title":"Internal Server Error","status":500,"detail":"session resolution failed"}`, http.StatusInternalServerError)
				}
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeySessionID, sessionID)
			ctx = context.WithValue(ctx, ContextKeyUserID, userID)
			ctx = context.WithValue(ctx, ContextKeyAccessToken, accessToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401,"detail":"` + detail + `"}`))
}
