package v1

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

const stateCookieName = "oauth_state"

type AuthURLOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		AuthURL string `json:"auth_url" doc:"Provider consent URL to redirect the user to"`
	}
}

type LogoutInput struct {
	SessionID string `header:"x-session-id" minLength:"1" doc:"Opaque session token"`
}

type LogoutOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// RegisterAuthRoutes registers the session endpoints that fit the typed API
// surface. The OAuth callback is a plain redirect handler, see
// CallbackHandler.
func RegisterAuthRoutes(api huma.API, gate SessionGate) {
	huma.Register(api, huma.Operation{
		OperationID: "auth-url",
		Method:      http.MethodGet,
		Path:        "/auth/url",
		Summary:     "Get the OAuth consent URL",
		Tags:        []string{"Auth"},
	}, func(_ context.Context, _ *struct{}) (*AuthURLOutput, error) {
		state := uuid.NewString()

		out := &AuthURLOutput{}
		out.SetCookie = http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		out.Body.AuthURL = gate.AuthorizationURL(state)
		return out, nil
	})

	// Logout takes the raw session header instead of going through the
	// session middleware: deactivating a session must work even when the
	// underlying credential can no longer be refreshed.
	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Deactivate the current session",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LogoutInput) (*LogoutOutput, error) {
		sessionID, err := uuid.Parse(input.SessionID)
		if err != nil {
			return nil, huma.Error401Unauthorized("malformed session token")
		}

		if err := gate.Logout(ctx, sessionID); err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return nil, huma.Error401Unauthorized("session expired or unknown")
			}
			return nil, huma.Error500InternalServerError("logout failed", err)
		}

		out := &LogoutOutput{}
		out.Body.Status = "logged_out"
		return out, nil
	})
}

// CallbackHandler completes the OAuth flow and redirects the browser to the
// frontend success page with the new session token in the query string.
// Registered outside huma because the response is a 302, not a typed body.
func CallbackHandler(gate SessionGate, successURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "authorization denied: "+errCode, http.StatusUnauthorized)
			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(stateCookieName)
		if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		session, user, err := gate.HandleCallback(r.Context(), code)
		if err != nil {
			log.Error().Err(err).Msg("auth: oauth callback failed")
			http.Error(w, "authentication failed", http.StatusBadGateway)
			return
		}

		log.Info().Str("user_id", user.ID).Msg("auth: user signed in")

		// Clear the one-shot state cookie.
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})

		redirect := successURL + "?session_id=" + url.QueryEscape(session.ID.String())
		http.Redirect(w, r, redirect, http.StatusFound)
	}
}
