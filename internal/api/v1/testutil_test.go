package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject session/user/token into context for GetCtx/PostCtx
// ---------------------------------------------------------------------------

func authedCtx(userID, accessToken string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeySessionID, uuid.New())
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyAccessToken, accessToken)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users        domain.UserRepository
	videos       domain.VideoRepository
	comments     domain.CommentRepository
	interactions domain.InteractionRepository
}

func (m *mockDataStore) Users() domain.UserRepository               { return m.users }
func (m *mockDataStore) Videos() domain.VideoRepository             { return m.videos }
func (m *mockDataStore) Comments() domain.CommentRepository         { return m.comments }
func (m *mockDataStore) Interactions() domain.InteractionRepository { return m.interactions }

// ---------------------------------------------------------------------------
// Mock VideoRepository
// ---------------------------------------------------------------------------

type mockVideoRepo struct {
	upsertFunc  func(ctx context.Context, v *domain.Video) error
	getByIDFunc func(ctx context.Context, id string) (*domain.Video, error)
	listFunc    func(ctx context.Context) ([]*domain.Video, error)
}

func (m *mockVideoRepo) Upsert(ctx context.Context, v *domain.Video) error {
	return m.upsertFunc(ctx, v)
}

func (m *mockVideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockVideoRepo) List(ctx context.Context) ([]*domain.Video, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock InteractionRepository
// ---------------------------------------------------------------------------

type mockInteractionRepo struct {
	appendFunc     func(ctx context.Context, rec *domain.InteractionRecord) error
	listByUserFunc func(ctx context.Context, userID string, limit int) ([]*domain.InteractionRecord, error)
}

func (m *mockInteractionRepo) Append(ctx context.Context, rec *domain.InteractionRecord) error {
	return m.appendFunc(ctx, rec)
}

func (m *mockInteractionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.InteractionRecord, error) {
	return m.listByUserFunc(ctx, userID, limit)
}

// ---------------------------------------------------------------------------
// Mock CommentSyncer
// ---------------------------------------------------------------------------

type mockSyncer struct {
	syncFunc func(ctx context.Context, accessToken, userID, videoID string) error
	getFunc  func(ctx context.Context, videoID string) ([]*domain.Comment, error)
}

func (m *mockSyncer) Sync(ctx context.Context, accessToken, userID, videoID string) error {
	return m.syncFunc(ctx, accessToken, userID, videoID)
}

func (m *mockSyncer) Get(ctx context.Context, videoID string) ([]*domain.Comment, error) {
	return m.getFunc(ctx, videoID)
}

// ---------------------------------------------------------------------------
// Mock ReplyOrchestrator
// ---------------------------------------------------------------------------

type mockOrchestrator struct {
	generateFunc func(ctx context.Context, userID, commentID, tone string) (string, string, error)
	postFunc     func(ctx context.Context, accessToken, userID, commentID, text string, aiGenerated bool, aiModel string) (*domain.Reply, error)
}

func (m *mockOrchestrator) Generate(ctx context.Context, userID, commentID, tone string) (string, string, error) {
	return m.generateFunc(ctx, userID, commentID, tone)
}

func (m *mockOrchestrator) Post(ctx context.Context, accessToken, userID, commentID, text string, aiGenerated bool, aiModel string) (*domain.Reply, error) {
	return m.postFunc(ctx, accessToken, userID, commentID, text, aiGenerated, aiModel)
}

// ---------------------------------------------------------------------------
// Mock SessionGate
// ---------------------------------------------------------------------------

type mockGate struct {
	authorizationURLFunc func(state string) string
	handleCallbackFunc   func(ctx context.Context, code string) (*domain.Session, *domain.User, error)
	logoutFunc           func(ctx context.Context, sessionID uuid.UUID) error
}

func (m *mockGate) AuthorizationURL(state string) string {
	return m.authorizationURLFunc(state)
}

func (m *mockGate) HandleCallback(ctx context.Context, code string) (*domain.Session, *domain.User, error) {
	return m.handleCallbackFunc(ctx, code)
}

func (m *mockGate) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return m.logoutFunc(ctx, sessionID)
}

// ---------------------------------------------------------------------------
// Mock VideoLister
// ---------------------------------------------------------------------------

type mockVideoLister struct {
	listFunc func(ctx context.Context, accessToken, pageToken string) ([]*domain.Video, string, error)
}

func (m *mockVideoLister) ListChannelVideos(ctx context.Context, accessToken, pageToken string) ([]*domain.Video, string, error) {
	return m.listFunc(ctx, accessToken, pageToken)
}
