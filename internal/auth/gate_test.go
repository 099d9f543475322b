package auth_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnuman/youtube-commenter/internal/auth"
	"github.com/smnuman/youtube-commenter/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock provider
// ---------------------------------------------------------------------------

type mockExchanger struct {
	exchangeFunc func(ctx context.Context, code string) (*domain.User, *domain.Credential, error)
	refreshFunc  func(ctx context.Context, refreshToken string) (*domain.Credential, error)
	refreshCalls atomic.Int32
}

func (m *mockExchanger) AuthorizationURL(state string) string {
	return "https://provider.example/consent?state=" + state
}

func (m *mockExchanger) ExchangeCode(ctx context.Context, code string) (*domain.User, *domain.Credential, error) {
	return m.exchangeFunc(ctx, code)
}

func (m *mockExchanger) Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error) {
	m.refreshCalls.Add(1)
	return m.refreshFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Upsert(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (m *memSessionRepo) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memSessionRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Active = false
	return nil
}

type memCredentialRepo struct {
	mu    sync.Mutex
	creds map[string]*domain.Credential
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{creds: make(map[string]*domain.Credential)}
}

func (m *memCredentialRepo) Put(_ context.Context, userID string, c *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	m.creds[userID] = &copied
	return nil
}

func (m *memCredentialRepo) Get(_ context.Context, userID string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const (
	testTTL  = 7 * 24 * time.Hour
	testSkew = 5 * time.Minute
)

func fixtureUser() *domain.User {
	return &domain.User{ID: "ch-1", Name: "My Channel"}
}

func freshCredential() *domain.Credential {
	return &domain.Credential{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func expiringCredential() *domain.Credential {
	return &domain.Credential{
		AccessToken:  "access-stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Minute), // inside the 5-minute skew
	}
}

type gateFixture struct {
	gate     *auth.Gate
	provider *mockExchanger
	users    *memUserRepo
	sessions *memSessionRepo
	creds    *memCredentialRepo
}

func newGateFixture(provider *mockExchanger) *gateFixture {
	f := &gateFixture{
		provider: provider,
		users:    newMemUserRepo(),
		sessions: newMemSessionRepo(),
		creds:    newMemCredentialRepo(),
	}
	f.gate = auth.NewGate(provider, f.users, f.sessions, f.creds, testTTL, testSkew)
	return f
}

// login runs the callback flow and returns the created session.
func (f *gateFixture) login(t *testing.T) *domain.Session {
	t.Helper()

	session, _, err := f.gate.HandleCallback(context.Background(), "code-1")
	require.NoError(t, err)
	return session
}

// ---------------------------------------------------------------------------
// HandleCallback
// ---------------------------------------------------------------------------

func TestHandleCallback_CreatesSession(t *testing.T) {
	t.Parallel()

	provider := &mockExchanger{
		exchangeFunc: func(_ context.Context, code string) (*domain.User, *domain.Credential, error) {
			require.Equal(t, "code-1", code)
			return fixtureUser(), freshCredential(), nil
		},
	}
	f := newGateFixture(provider)

	session, user, err := f.gate.HandleCallback(context.Background(), "code-1")

	require.NoError(t, err)
	assert.Equal(t, "ch-1", user.ID)
	assert.Equal(t, "ch-1", session.UserID)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.True(t, session.Active)
	assert.WithinDuration(t, time.Now().Add(testTTL), session.ExpiresAt, time.Minute)

	stored, err := f.users.GetByID(context.Background(), "ch-1")
	require.NoError(t, err)
	assert.Equal(t, "My Channel", stored.Name)

	cred, err := f.creds.Get(context.Background(), "ch-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.AccessToken)
}

func TestHandleCallback_ExchangeFails(t *testing.T) {
	t.Parallel()

	provider := &mockExchanger{
		exchangeFunc: func(_ context.Context, _ string) (*domain.User, *domain.Credential, error) {
			return nil, nil, fmt.Errorf("auth.ExchangeCode: provider says no")
		},
	}
	f := newGateFixture(provider)

	_, _, err := f.gate.HandleCallback(context.Background(), "bad-code")

	require.Error(t, err)
	assert.Empty(t, f.sessions.sessions, "no session on a failed exchange")
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve_HappyPath_NoRefresh(t *testing.T) {
	t.Parallel()

	provider := &mockExchanger{
		exchangeFunc: func(_ context.Context, _ string) (*domain.User, *domain.Credential, error) {
			return fixtureUser(), freshCredential(), nil
		},
	}
	f := newGateFixture(provider)
	session := f.login(t)

	userID, token, err := f.gate.Resolve(context.Background(), session.ID)

	require.NoError(t, err)
	assert.Equal(t, "ch-1", userID)
	assert.Equal(t, "access-1", token)
	assert.Zero(t, provider.refreshCalls.Load(), "a fresh token must not trigger a refresh")
}

func TestResolve_UnknownSession(t *testing.T) {
	t.Parallel()

	f := newGateFixture(&mockExchanger{})

	_, _, err := f.gate.Resolve(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolve_ExpiredSession_Deactivated(t *testing.T) {
	t.Parallel()

	f := newGateFixture(&mockExchanger{})

	expired := &domain.Session{
		ID:        uuid.New(),
		UserID:    "ch-1",
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
		Active:    true,
	}
	require.NoError(t, f.sessions.Create(context.Background(), expired))

	_, _, err := f.gate.Resolve(context.Background(), expired.ID)

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	stored, getErr := f.sessions.GetByID(context.Background(), expired.ID)
	require.NoError(t, getErr)
	assert.False(t, stored.Active, "an expired session is deactivated on first touch")
}

func TestResolve_ExpiringCredential_Refreshed(t *testing.T) {
	t.Parallel()

	provider := &mockExchanger{
		exchangeFunc: func(_ context.Context, _ string) (*domain.User, *domain.Credential, error) {
			return fixtureUser(), expiringCredential(), nil
		},
		refreshFunc: func(_ context.Context, refreshToken string) (*domain.Credential, error) {
			require.Equal(t, "refresh-1", refreshToken)
			return &domain.Credential{
				AccessToken:  "access-2",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Now().Add(time.Hour),
			}, nil
		},
	}
	f := newGateFixture(provider)
	session := f.login(t)

	_, token, err := f.gate.Resolve(context.Background(), session.ID)

	require.NoError(t, err)
	assert.Equal(t, "access-2", token)
	assert.Equal(t, int32(1), provider.refreshCalls.Load())

	stored, err := f.creds.Get(context.Background(), "ch-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.AccessToken, "the refreshed credential is persisted")
}

func TestResolve_RefreshRejected_ReauthRequired(t *testing.T) {
	t.Parallel()

	provider := &mockExchanger{
		exchangeFunc: func(_ context.Context, _ string) (*domain.User, *domain.Credential, error) {
			return fixtureUser(), expiringCredential(), nil
		},
		refreshFunc: func(_ context.Context, _ string) (*domain.Credential, error) {
			return nil, fmt.Errorf("auth.Refresh: provider rejected refresh token: %w", domain.ErrReauthRequired)
		},
	}
	f := newGateFixture(provider)
	session := f.login(t)

	_, _, err := f.gate.Resolve(context.Background(), session.ID)

	assert.ErrorIs(t, err, domain.ErrReauthRequired)
}

func TestResolve_ConcurrentRefresh_SingleProviderCall(t *testing.T) {
	t.Parallel()

	provider := &mockExchanger{
		exchangeFunc: func(_ context.Context, _ string) (*domain.User, *domain.Credential, error) {
			return fixtureUser(), expiringCredential(), nil
		},
		refreshFunc: func(_ context.Context, _ string) (*domain.Credential, error) {
			// Widen the race window so all goroutines pile into the flight.
			time.Sleep(50 * time.Millisecond)
			return &domain.Credential{
				AccessToken:  "access-2",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Now().Add(time.Hour),
			}, nil
		},
	}
	f := newGateFixture(provider)
	session := f.login(t)

	var wg sync.WaitGroup
	tokens := make([]string, 10)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, token, err := f.gate.Resolve(context.Background(), session.ID)
			assert.NoError(t, err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.refreshCalls.Load(), "concurrent resolves share one refresh")
	for _, token := range tokens {
		assert.Equal(t, "access-2", token)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestLogout_DeactivatesSession(t *testing.T) {
	t.Parallel()

	provider := &mockExchanger{
		exchangeFunc: func(_ context.Context, _ string) (*domain.User, *domain.Credential, error) {
			return fixtureUser(), freshCredential(), nil
		},
	}
	f := newGateFixture(provider)
	session := f.login(t)

	require.NoError(t, f.gate.Logout(context.Background(), session.ID))

	_, _, err := f.gate.Resolve(context.Background(), session.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "a logged-out session no longer resolves")

	_, credErr := f.creds.Get(context.Background(), "ch-1")
	assert.NoError(t, credErr, "logout keeps the stored credential")
}

func TestLogout_UnknownSession(t *testing.T) {
	t.Parallel()

	f := newGateFixture(&mockExchanger{})

	err := f.gate.Logout(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
