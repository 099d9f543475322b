package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/secrets"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Upsert(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name,
		     email = EXCLUDED.email,
		     avatar_url = EXCLUDED.avatar_url,
		     updated_at = EXCLUDED.updated_at`,
		u.ID, u.Name, nilIfEmpty(u.Email), nilIfEmpty(u.AvatarURL), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("userRepo.Upsert: %w", err)
	}

	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	var email, avatarURL *string

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, avatar_url, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &email, &avatarURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("userRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}

	u.Email = derefStr(email)
	u.AvatarURL = derefStr(avatarURL)

	return &u, nil
}

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at, active)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt, s.Active,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var s domain.Session

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, expires_at, active
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}

	return &s, nil
}

func (r *SessionRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET active = FALSE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sessionRepo.Deactivate: %w", domain.ErrNotFound)
	}

	return nil
}

// CredentialRepo stores one platform credential per user. Token material
// passes through the vault on the way in and out; plaintext never reaches
// the database.
type CredentialRepo struct {
	pool  *pgxpool.Pool
	vault *secrets.Vault
}

func NewCredentialRepo(pool *pgxpool.Pool, vault *secrets.Vault) *CredentialRepo {
	return &CredentialRepo{pool: pool, vault: vault}
}

func (r *CredentialRepo) Put(ctx context.Context, userID string, c *domain.Credential) error {
	access, err := r.vault.Encrypt(c.AccessToken)
	if err != nil {
		return fmt.Errorf("credentialRepo.Put: %w", err)
	}

	refresh, err := r.vault.Encrypt(c.RefreshToken)
	if err != nil {
		return fmt.Errorf("credentialRepo.Put: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO credentials (user_id, access_token, refresh_token, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET access_token = EXCLUDED.access_token,
		     refresh_token = EXCLUDED.refresh_token,
		     expires_at = EXCLUDED.expires_at,
		     updated_at = EXCLUDED.updated_at`,
		userID, access, refresh, c.ExpiresAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("credentialRepo.Put: %w", err)
	}

	return nil
}

func (r *CredentialRepo) Get(ctx context.Context, userID string) (*domain.Credential, error) {
	var access, refresh string
	var expiresAt time.Time

	err := r.pool.QueryRow(ctx,
		`SELECT access_token, refresh_token, expires_at
		 FROM credentials WHERE user_id = $1`,
		userID,
	).Scan(&access, &refresh, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("credentialRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("credentialRepo.Get: %w", err)
	}

	accessToken, err := r.vault.Decrypt(access)
	if err != nil {
		return nil, fmt.Errorf("credentialRepo.Get: %w", err)
	}

	refreshToken, err := r.vault.Decrypt(refresh)
	if err != nil {
		return nil, fmt.Errorf("credentialRepo.Get: %w", err)
	}

	return &domain.Credential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
