package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Videos() domain.VideoRepository
	Comments() domain.CommentRepository
	Interactions() domain.InteractionRepository
}

// SessionGate abstracts the session lifecycle for handler testing.
// *auth.Gate satisfies this interface.
type SessionGate interface {
	AuthorizationURL(state string) string
	HandleCallback(ctx context.Context, code string) (*domain.Session, *domain.User, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// CommentSyncer abstracts comment synchronization for handler testing.
// *comments.Service satisfies this interface.
type CommentSyncer interface {
	Sync(ctx context.Context, accessToken, userID, videoID string) error
	Get(ctx context.Context, videoID string) ([]*domain.Comment, error)
}

// ReplyOrchestrator abstracts reply generation and posting for handler
// testing. *reply.Orchestrator satisfies this interface.
type ReplyOrchestrator interface {
	Generate(ctx context.Context, userID, commentID, tone string) (text, model string, err error)
	Post(ctx context.Context, accessToken, userID, commentID, text string, aiGenerated bool, aiModel string) (*domain.Reply, error)
}

// VideoLister abstracts the platform video listing for handler testing.
// *platform.Client satisfies this interface.
type VideoLister interface {
	ListChannelVideos(ctx context.Context, accessToken, pageToken string) ([]*domain.Video, string, error)
}
