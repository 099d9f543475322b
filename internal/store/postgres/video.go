package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

func (r *VideoRepo) Upsert(ctx context.Context, v *domain.Video) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO videos (id, title, description, published_at, thumbnail_url, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET title = EXCLUDED.title,
		     description = EXCLUDED.description,
		     thumbnail_url = EXCLUDED.thumbnail_url,
		     fetched_at = EXCLUDED.fetched_at`,
		v.ID, v.Title, v.Description, v.PublishedAt, v.ThumbnailURL, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("videoRepo.Upsert: %w", err)
	}

	return nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	var v domain.Video

	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, published_at, thumbnail_url
		 FROM videos WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Title, &v.Description, &v.PublishedAt, &v.ThumbnailURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("videoRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("videoRepo.GetByID: %w", err)
	}

	return &v, nil
}

func (r *VideoRepo) List(ctx context.Context) ([]*domain.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, published_at, thumbnail_url
		 FROM videos ORDER BY published_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("videoRepo.List: %w", err)
	}
	defer rows.Close()

	var videos []*domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.PublishedAt, &v.ThumbnailURL); err != nil {
			return nil, fmt.Errorf("videoRepo.List: scan: %w", err)
		}
		videos = append(videos, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("videoRepo.List: rows: %w", err)
	}

	return videos, nil
}
