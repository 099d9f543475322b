package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InteractionType string

const (
	InteractionFetch    InteractionType = "fetch"
	InteractionGenerate InteractionType = "generate"
	InteractionPost     InteractionType = "post"
)

// InteractionRecord is an append-only audit entry for a user-visible action.
// Records are never mutated or deleted, and Data must never contain
// platform credentials.
type InteractionRecord struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"user_id"`
	VideoID   string            `json:"video_id"`
	CommentID string            `json:"comment_id"`
	ReplyID   string            `json:"reply_id,omitempty"`
	Type      InteractionType   `json:"interaction_type"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

type InteractionRepository interface {
	Append(ctx context.Context, rec *InteractionRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*InteractionRecord, error)
}
