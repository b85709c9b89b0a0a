// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/kurakampus-api/internal/core"
)

// Repository is the refresh token ledger. Rows are only ever inserted or
// flipped to revoked; nothing here deletes them.
type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	Revoke(ctx context.Context, id string) (bool, error)
	RevokeFamily(ctx context.Context, family string) (int64, error)
	LinkReplacement(ctx context.Context, oldID, newID string) error
	ListByFamily(ctx context.Context, family string) ([]RefreshToken, error)
	ListActiveForUser(ctx context.Context, userID string) ([]RefreshToken, error)
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}

type repository struct {
	db   core.DBTX
	pool *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, pool: db}
}

const refreshTokenColumns = `
	id, user_id, token_hash, family, revoked, revoked_at, replaced_by,
	replaces_id, expires_at, user_agent, ip_address, created_at`

// WithTx runs fn against a ledger bound to a single transaction. Nested
// calls reuse the outer transaction.
func (r *repository) WithTx(
	ctx context.Context,
	fn func(repo Repository) error,
) error {
	if r.pool == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.pool, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (
			id, user_id, token_hash, family, expires_at,
			replaces_id, user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &token.CreatedAt, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.Family,
		token.ExpiresAt,
		token.ReplacesID,
		token.UserAgent,
		token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *repository) FindByToken(
	ctx context.Context,
	token string,
) (*RefreshToken, error) {
	query := `SELECT` + refreshTokenColumns + `
		FROM refresh_tokens
		WHERE token_hash = $1`

	var stored RefreshToken
	err := r.db.GetContext(ctx, &stored, query, core.HashToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	return &stored, nil
}

// Revoke marks one token revoked. It reports whether this call performed
// the transition; false means the token was already revoked (or absent),
// which rotation treats as a lost race.
func (r *repository) Revoke(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = true, revoked_at = NOW()
		WHERE id = $1 AND revoked = false`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) RevokeFamily(
	ctx context.Context,
	family string,
) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = true, revoked_at = NOW()
		WHERE family = $1 AND revoked = false`

	result, err := r.db.ExecContext(ctx, query, family)
	if err != nil {
		return 0, fmt.Errorf("revoke token family: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke token family: %w", err)
	}

	return rows, nil
}

func (r *repository) LinkReplacement(
	ctx context.Context,
	oldID, newID string,
) error {
	query := `
		UPDATE refresh_tokens
		SET replaced_by = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, oldID, newID)
	if err != nil {
		return fmt.Errorf("link refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("link refresh token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("link refresh token: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByFamily(
	ctx context.Context,
	family string,
) ([]RefreshToken, error) {
	query := `SELECT` + refreshTokenColumns + `
		FROM refresh_tokens
		WHERE family = $1
		ORDER BY created_at ASC`

	var tokens []RefreshToken
	if err := r.db.SelectContext(ctx, &tokens, query, family); err != nil {
		return nil, fmt.Errorf("list token family: %w", err)
	}

	return tokens, nil
}

func (r *repository) ListActiveForUser(
	ctx context.Context,
	userID string,
) ([]RefreshToken, error) {
	query := `SELECT` + refreshTokenColumns + `
		FROM refresh_tokens
		WHERE user_id = $1
			AND revoked = false
			AND expires_at > NOW()
		ORDER BY created_at DESC`

	var tokens []RefreshToken
	if err := r.db.SelectContext(ctx, &tokens, query, userID); err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	return tokens, nil
}
