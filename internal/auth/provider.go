package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

const defaultChannelInfoURL = "https://www.googleapis.com/youtube/v3/channels"

// Provider wraps the Google OAuth2 flow for the YouTube Data API. The
// channel identity of the authenticated account doubles as the user ID.
type Provider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// ChannelInfoURL is overridable for tests.
	ChannelInfoURL string

	oauthConfig *oauth2.Config
}

// NewGoogleProvider returns an OAuth2 configuration for Google with the
// YouTube scopes required to read and post comments.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *Provider {
	p := &Provider{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/youtube.force-ssl",
			"https://www.googleapis.com/auth/youtube.readonly",
		},
		ChannelInfoURL: defaultChannelInfoURL,
	}
	p.oauthConfig = &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       p.Scopes,
		RedirectURL:  p.RedirectURL,
	}
	return p
}

// AuthorizationURL returns the OAuth2 authorization URL with the given
// state parameter. Offline access with forced consent is requested so a
// refresh token is always issued.
func (p *Provider) AuthorizationURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode exchanges an authorization code for tokens and fetches the
// account's channel identity.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*domain.User, *domain.Credential, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.ExchangeCode: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, nil, errors.New("auth.ExchangeCode: no refresh token granted")
	}

	user, err := p.fetchChannel(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	return user, credentialFromToken(token), nil
}

// Refresh exchanges a refresh token for a fresh access token. A rejected
// refresh token (revoked consent, expired grant) maps to
// domain.ErrReauthRequired; transport failures pass through.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error) {
	src := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("auth.Refresh: provider rejected refresh token: %w", domain.ErrReauthRequired)
		}
		return nil, fmt.Errorf("auth.Refresh: %w", err)
	}

	cred := credentialFromToken(token)
	// Google omits the refresh token from refresh responses; keep the one
	// that was used.
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	return cred, nil
}

func credentialFromToken(t *oauth2.Token) *domain.Credential {
	return &domain.Credential{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.Expiry,
	}
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			CustomURL  string `json:"customUrl"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// fetchChannel resolves the authenticated account's own channel, which
// becomes the application user.
func (p *Provider) fetchChannel(ctx context.Context, token *oauth2.Token) (*domain.User, error) {
	client := p.oauthConfig.Client(ctx, token)

	resp, err := client.Get(p.ChannelInfoURL + "?part=snippet&mine=true")
	if err != nil {
		return nil, fmt.Errorf("auth.fetchChannel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth.fetchChannel: channel info returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("auth.fetchChannel: reading response: %w", err)
	}

	var list channelListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("auth.fetchChannel: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, errors.New("auth.fetchChannel: account has no channel")
	}

	item := list.Items[0]
	now := time.Now()
	return &domain.User{
		ID:        item.ID,
		Name:      item.Snippet.Title,
		AvatarURL: item.Snippet.Thumbnails.Default.URL,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
