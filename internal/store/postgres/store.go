package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/secrets"
)

// Store aggregates the per-entity repositories over a shared connection pool.
type Store struct {
	pool         *pgxpool.Pool
	users        *UserRepo
	sessions     *SessionRepo
	credentials  *CredentialRepo
	videos       *VideoRepo
	comments     *CommentRepo
	interactions *InteractionRepo
}

func New(ctx context.Context, dsn string, maxConns int32, vault *secrets.Vault) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:         pool,
		users:        NewUserRepo(pool),
		sessions:     NewSessionRepo(pool),
		credentials:  NewCredentialRepo(pool, vault),
		videos:       NewVideoRepo(pool),
		comments:     NewCommentRepo(pool),
		interactions: NewInteractionRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository               { return s.users }
func (s *Store) Sessions() domain.SessionRepository         { return s.sessions }
func (s *Store) Credentials() domain.CredentialRepository   { return s.credentials }
func (s *Store) Videos() domain.VideoRepository             { return s.videos }
func (s *Store) Comments() domain.CommentRepository         { return s.comments }
func (s *Store) Interactions() domain.InteractionRepository { return s.interactions }
