package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

// UpsertComments merges a page of comments by comment ID. Text, like count,
// author, and metadata are refreshed; replied_to is left untouched so
// platform-confirmed reply state survives re-fetches.
func (r *CommentRepo) UpsertComments(ctx context.Context, videoID string, comments []*domain.Comment) error {
	batch := &pgx.Batch{}
	for _, c := range comments {
		metadata, err := json.Marshal(orEmpty(c.Metadata))
		if err != nil {
			return fmt.Errorf("commentRepo.UpsertComments: marshal metadata: %w", err)
		}

		batch.Queue(
			`INSERT INTO comments (id, video_id, author, author_channel_id, text, like_count, published_at, replied_to, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
			 ON CONFLICT (id) DO UPDATE
			 SET author = EXCLUDED.author,
			     author_channel_id = EXCLUDED.author_channel_id,
			     text = EXCLUDED.text,
			     like_count = EXCLUDED.like_count,
			     metadata = EXCLUDED.metadata`,
			c.ID, videoID, c.Author, c.AuthorChannelID, c.Text, c.LikeCount, c.PublishedAt, metadata,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range comments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("commentRepo.UpsertComments: %w", err)
		}
	}

	return nil
}

// UpsertReplies merges a page of platform replies by reply ID in the
// positions the caller assigned, then marks the parent replied_to since the
// platform has confirmed at least one reply exists.
func (r *CommentRepo) UpsertReplies(ctx context.Context, commentID string, replies []*domain.Reply) error {
	if len(replies) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rep := range replies {
		batch.Queue(
			`INSERT INTO replies (id, parent_comment_id, author, text, like_count, published_at, ai_generated, ai_model, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO UPDATE
			 SET author = EXCLUDED.author,
			     text = EXCLUDED.text,
			     like_count = EXCLUDED.like_count,
			     position = EXCLUDED.position`,
			rep.ID, commentID, rep.Author, rep.Text, rep.LikeCount, rep.PublishedAt,
			rep.AIGenerated, nilIfEmpty(rep.AIModel), rep.Position,
		)
	}
	batch.Queue(`UPDATE comments SET replied_to = TRUE WHERE id = $1`, commentID)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i <= len(replies); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("commentRepo.UpsertReplies: %w", err)
		}
	}

	return nil
}

// AppendReply stores a posted, platform-confirmed reply after the current
// maximum position and flips the parent's replied_to.
func (r *CommentRepo) AppendReply(ctx context.Context, rep *domain.Reply) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("commentRepo.AppendReply: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`INSERT INTO replies (id, parent_comment_id, author, text, like_count, published_at, ai_generated, ai_model, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		         COALESCE((SELECT MAX(position) + 1 FROM replies WHERE parent_comment_id = $2), 0))`,
		rep.ID, rep.ParentCommentID, rep.Author, rep.Text, rep.LikeCount, rep.PublishedAt,
		rep.AIGenerated, nilIfEmpty(rep.AIModel),
	)
	if err != nil {
		return fmt.Errorf("commentRepo.AppendReply: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE comments SET replied_to = TRUE WHERE id = $1`, rep.ParentCommentID)
	if err != nil {
		return fmt.Errorf("commentRepo.AppendReply: mark replied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("commentRepo.AppendReply: parent comment: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commentRepo.AppendReply: commit: %w", err)
	}

	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, commentID string) (*domain.Comment, error) {
	var c domain.Comment
	var metadata []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, video_id, author, author_channel_id, text, like_count, published_at, replied_to, metadata
		 FROM comments WHERE id = $1`,
		commentID,
	).Scan(&c.ID, &c.VideoID, &c.Author, &c.AuthorChannelID, &c.Text, &c.LikeCount, &c.PublishedAt, &c.RepliedTo, &metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("commentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("commentRepo.GetByID: %w", err)
	}

	if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
		return nil, fmt.Errorf("commentRepo.GetByID: unmarshal metadata: %w", err)
	}

	return &c, nil
}

// ListByVideo returns comments newest-first with their replies nested in
// platform order.
func (r *CommentRepo) ListByVideo(ctx context.Context, videoID string) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, video_id, author, author_channel_id, text, like_count, published_at, replied_to, metadata
		 FROM comments WHERE video_id = $1
		 ORDER BY published_at DESC, id`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("commentRepo.ListByVideo: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	byID := make(map[string]*domain.Comment)
	for rows.Next() {
		var c domain.Comment
		var metadata []byte

		if err := rows.Scan(&c.ID, &c.VideoID, &c.Author, &c.AuthorChannelID, &c.Text,
			&c.LikeCount, &c.PublishedAt, &c.RepliedTo, &metadata); err != nil {
			return nil, fmt.Errorf("commentRepo.ListByVideo: scan: %w", err)
		}
		if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("commentRepo.ListByVideo: unmarshal metadata: %w", err)
		}

		c.Replies = []*domain.Reply{}
		comments = append(comments, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("commentRepo.ListByVideo: rows: %w", err)
	}

	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	replyRows, err := r.pool.Query(ctx,
		`SELECT id, parent_comment_id, author, text, like_count, published_at, ai_generated, ai_model, position
		 FROM replies WHERE parent_comment_id = ANY($1)
		 ORDER BY parent_comment_id, position`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("commentRepo.ListByVideo: replies: %w", err)
	}
	defer replyRows.Close()

	for replyRows.Next() {
		rep, err := scanReply(replyRows)
		if err != nil {
			return nil, fmt.Errorf("commentRepo.ListByVideo: %w", err)
		}
		if parent, ok := byID[rep.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, rep)
		}
	}
	if err := replyRows.Err(); err != nil {
		return nil, fmt.Errorf("commentRepo.ListByVideo: reply rows: %w", err)
	}

	return comments, nil
}

func (r *CommentRepo) ListReplies(ctx context.Context, commentID string) ([]*domain.Reply, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, parent_comment_id, author, text, like_count, published_at, ai_generated, ai_model, position
		 FROM replies WHERE parent_comment_id = $1
		 ORDER BY position`,
		commentID,
	)
	if err != nil {
		return nil, fmt.Errorf("commentRepo.ListReplies: %w", err)
	}
	defer rows.Close()

	var replies []*domain.Reply
	for rows.Next() {
		rep, err := scanReply(rows)
		if err != nil {
			return nil, fmt.Errorf("commentRepo.ListReplies: %w", err)
		}
		replies = append(replies, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("commentRepo.ListReplies: rows: %w", err)
	}

	return replies, nil
}

func scanReply(rows pgx.Rows) (*domain.Reply, error) {
	var rep domain.Reply
	var aiModel *string

	if err := rows.Scan(&rep.ID, &rep.ParentCommentID, &rep.Author, &rep.Text,
		&rep.LikeCount, &rep.PublishedAt, &rep.AIGenerated, &aiModel, &rep.Position); err != nil {
		return nil, fmt.Errorf("scan reply: %w", err)
	}
	rep.AIModel = derefStr(aiModel)

	return &rep, nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
