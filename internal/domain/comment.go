package domain

import (
	"context"
	"time"
)

// Video is a platform-assigned video record. Immutable once fetched;
// re-fetched on demand and overwritten wholesale.
type Video struct {
	ID           string    `json:"video_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PublishedAt  time.Time `json:"published_at"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// Comment is a top-level comment on a video. like_count and text are
// refreshed on re-fetch; RepliedTo flips true only after the platform has
// confirmed at least one reply (fetched or posted), never speculatively.
type Comment struct {
	VideoID         string            `json:"video_id"`
	ID              string            `json:"comment_id"`
	Author          string            `json:"author"`
	AuthorChannelID string            `json:"author_channel_id"`
	Text            string            `json:"text"`
	LikeCount       int               `json:"like_count"`
	PublishedAt     time.Time         `json:"published_at"`
	RepliedTo       bool              `json:"replied_to"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Replies         []*Reply          `json:"replies"`
}

// Reply belongs to exactly one parent comment. Position is the
// platform-assigned display order, stable across re-fetches.
type Reply struct {
	ID              string    `json:"reply_id"`
	ParentCommentID string    `json:"parent_comment_id"`
	Author          string    `json:"author"`
	Text            string    `json:"text"`
	LikeCount       int       `json:"like_count"`
	PublishedAt     time.Time `json:"published_at"`
	AIGenerated     bool      `json:"ai_generated"`
	AIModel         string    `json:"ai_model,omitempty"`
	Position        int       `json:"-"`
}

type VideoRepository interface {
	Upsert(ctx context.Context, v *Video) error
	GetByID(ctx context.Context, id string) (*Video, error)
	List(ctx context.Context) ([]*Video, error)
}

// CommentRepository persists comments and replies keyed by their platform
// IDs. Upserts are idempotent merges; serialization of concurrent writers
// per video is the caller's responsibility (see comments.Service).
type CommentRepository interface {
	UpsertComments(ctx context.Context, videoID string, comments []*Comment) error
	// UpsertReplies merges a page of platform replies in display order and
	// marks the parent replied_to once at least one stored reply exists.
	UpsertReplies(ctx context.Context, commentID string, replies []*Reply) error
	// AppendReply stores a freshly posted, platform-confirmed reply after
	// the current maximum position and marks the parent replied_to.
	AppendReply(ctx context.Context, r *Reply) error
	GetByID(ctx context.Context, commentID string) (*Comment, error)
	// ListByVideo returns comments newest-first by published_at, each with
	// its replies in platform order.
	ListByVideo(ctx context.Context, videoID string) ([]*Comment, error)
	ListReplies(ctx context.Context, commentID string) ([]*Reply, error)
}
