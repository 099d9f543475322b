package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/platform"
	redisstore "github.com/smnuman/youtube-commenter/internal/store/redis"
)

// PlatformLister is the slice of the platform client the sync path needs.
type PlatformLister interface {
	ListComments(ctx context.Context, accessToken, videoID, pageToken string) ([]*domain.Comment, string, error)
	ListReplies(ctx context.Context, accessToken, commentID, pageToken string) ([]*domain.Reply, string, error)
}

// Publisher fans out change events after a successful upsert.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ChangeEvent is the payload published on a video's comments channel.
type ChangeEvent struct {
	VideoID      string    `json:"video_id"`
	CommentCount int       `json:"comment_count"`
	SyncedAt     time.Time `json:"synced_at"`
}

// Service owns comment merge semantics. Writers are serialized per video:
// concurrent syncs of the same video queue up, while different videos
// proceed independently. Readers are never blocked.
type Service struct {
	platform     PlatformLister
	comments     domain.CommentRepository
	interactions domain.InteractionRepository
	pubsub       Publisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(pl PlatformLister, comments domain.CommentRepository, interactions domain.InteractionRepository, pubsub Publisher) *Service {
	return &Service{
		platform:     pl,
		comments:     comments,
		interactions: interactions,
		pubsub:       pubsub,
		locks:        make(map[string]*sync.Mutex),
	}
}

// videoLock returns the exclusive write lock for one video ID.
func (s *Service) videoLock(videoID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[videoID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[videoID] = l
	}
	return l
}

// Sync pulls all comment pages for a video from the platform and merges
// them into the store, reply threads included. Page merges are idempotent;
// a context deadline aborts between pages leaving previously merged pages
// intact and the in-flight page unwritten.
//
// The whole sync holds the video's write lock so interleaved partial-page
// merges cannot reorder replies.
func (s *Service) Sync(ctx context.Context, accessToken, userID, videoID string) error {
	lock := s.videoLock(videoID)
	lock.Lock()
	defer lock.Unlock()

	total := 0
	pageToken := ""
	for {
		page, next, err := s.platform.ListComments(ctx, accessToken, videoID, pageToken)
		if err != nil {
			return fmt.Errorf("comments.Sync: list comments: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("comments.Sync: %w", err)
		}

		if err := s.comments.UpsertComments(ctx, videoID, page); err != nil {
			return fmt.Errorf("comments.Sync: upsert comments: %w", err)
		}
		total += len(page)

		for _, c := range page {
			if replyCount(c) == 0 {
				continue
			}
			if err := s.syncReplies(ctx, accessToken, c.ID); err != nil {
				return fmt.Errorf("comments.Sync: %w", err)
			}
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	s.recordInteraction(ctx, &domain.InteractionRecord{
		ID:        uuid.New(),
		UserID:    userID,
		VideoID:   videoID,
		Type:      domain.InteractionFetch,
		Timestamp: time.Now(),
		Data:      map[string]string{"comment_count": strconv.Itoa(total)},
	})

	s.publishChange(ctx, videoID, total)

	return nil
}

// syncReplies pulls every reply page for one comment and merges them in
// platform order. Positions restart at zero each sync so the stored order
// always mirrors the platform's.
func (s *Service) syncReplies(ctx context.Context, accessToken, commentID string) error {
	position := 0
	pageToken := ""
	for {
		page, next, err := s.platform.ListReplies(ctx, accessToken, commentID, pageToken)
		if err != nil {
			return fmt.Errorf("sync replies: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		for _, rep := range page {
			rep.Position = position
			position++
		}

		if err := s.comments.UpsertReplies(ctx, commentID, page); err != nil {
			return fmt.Errorf("upsert replies: %w", err)
		}

		if next == "" {
			return nil
		}
		pageToken = next
	}
}

// Get returns the stored comments for a video, newest-first, replies
// nested in platform order.
func (s *Service) Get(ctx context.Context, videoID string) ([]*domain.Comment, error) {
	list, err := s.comments.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("comments.Get: %w", err)
	}
	return list, nil
}

// recordInteraction appends an audit record. A store failure here is
// reported but never rolls back the comment mutation that triggered it.
func (s *Service) recordInteraction(ctx context.Context, rec *domain.InteractionRecord) {
	if err := s.interactions.Append(ctx, rec); err != nil {
		log.Warn().Err(err).Str("video_id", rec.VideoID).Str("type", string(rec.Type)).
			Msg("comments: failed to record interaction")
	}
}

func (s *Service) publishChange(ctx context.Context, videoID string, count int) {
	if s.pubsub == nil {
		return
	}

	payload, err := json.Marshal(ChangeEvent{VideoID: videoID, CommentCount: count, SyncedAt: time.Now()})
	if err != nil {
		log.Warn().Err(err).Msg("comments: marshal change event")
		return
	}

	if err := s.pubsub.Publish(ctx, redisstore.CommentsChannel(videoID), payload); err != nil {
		log.Warn().Err(err).Str("video_id", videoID).Msg("comments: publish change event")
	}
}

func replyCount(c *domain.Comment) int {
	if c.Metadata == nil {
		return 0
	}
	n, err := strconv.Atoi(c.Metadata[platform.MetaTotalReplyCount])
	if err != nil {
		return 0
	}
	return n
}
