package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

type InteractionRepo struct {
	pool *pgxpool.Pool
}

func NewInteractionRepo(pool *pgxpool.Pool) *InteractionRepo {
	return &InteractionRepo{pool: pool}
}

// Append writes one audit record. The interactions table is append-only;
// there is no update or delete path.
func (r *InteractionRepo) Append(ctx context.Context, rec *domain.InteractionRecord) error {
	data, err := json.Marshal(orEmpty(rec.Data))
	if err != nil {
		return fmt.Errorf("interactionRepo.Append: marshal data: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO interactions (id, user_id, video_id, comment_id, reply_id, interaction_type, created_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.UserID, rec.VideoID, rec.CommentID, nilIfEmpty(rec.ReplyID),
		string(rec.Type), rec.Timestamp, data,
	)
	if err != nil {
		return fmt.Errorf("interactionRepo.Append: %w", err)
	}

	return nil
}

func (r *InteractionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.InteractionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, video_id, comment_id, reply_id, interaction_type, created_at, data
		 FROM interactions WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("interactionRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var records []*domain.InteractionRecord
	for rows.Next() {
		var rec domain.InteractionRecord
		var replyID *string
		var recType string
		var data []byte

		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.VideoID, &rec.CommentID,
			&replyID, &recType, &rec.Timestamp, &data); err != nil {
			return nil, fmt.Errorf("interactionRepo.ListByUser: scan: %w", err)
		}
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, fmt.Errorf("interactionRepo.ListByUser: unmarshal data: %w", err)
		}
		rec.ReplyID = derefStr(replyID)
		rec.Type = domain.InteractionType(recType)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interactionRepo.ListByUser: rows: %w", err)
	}

	return records, nil
}
