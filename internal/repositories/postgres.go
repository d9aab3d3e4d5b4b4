package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptide/backend/internal/db"
	"github.com/cliptide/backend/internal/models"
)

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, account.ID, account.Username, account.Email, account.FullName, account.PasswordHash,
		account.AvatarURL, account.CoverImageURL, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// FindByID fetches an account by its identifier.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at
        FROM accounts
        WHERE id = $1
    `, id)

	return scanAccount(row)
}

// FindByLogin fetches an account matching the provided username or email.
// Empty arguments never match, so callers may supply either identifier alone.
func (r *PostgresAccountRepository) FindByLogin(ctx context.Context, username, email string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at
        FROM accounts
        WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
    `, username, email)

	return scanAccount(row)
}

// SetRefreshToken overwrites the account's stored refresh token. Only the
// refresh_token column is touched so the write never trips validation of
// unrelated account fields.
func (r *PostgresAccountRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET refresh_token = $2
        WHERE id = $1
    `, id, token)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearRefreshToken sets the stored refresh token to NULL. NULL rather than an
// empty string keeps "never logged in" and "logged out" distinguishable from
// "logged in with token X" when inspecting the table.
func (r *PostgresAccountRepository) ClearRefreshToken(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts
        SET refresh_token = NULL
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetRefreshToken returns the account's stored refresh token, or
// ErrNoRefreshToken when the column is NULL.
func (r *PostgresAccountRepository) GetRefreshToken(ctx context.Context, id string) (string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT refresh_token
        FROM accounts
        WHERE id = $1
    `, id)

	var token sql.NullString
	if err := row.Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select refresh token: %w", err)
	}

	if !token.Valid {
		return "", ErrNoRefreshToken
	}

	return token.String, nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var (
		account      models.Account
		refreshToken sql.NullString
	)

	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.FullName,
		&account.PasswordHash, &account.AvatarURL, &account.CoverImageURL, &refreshToken,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("scan account: %w", err)
	}

	if refreshToken.Valid {
		account.RefreshToken = refreshToken.String
	}

	return account, nil
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)
