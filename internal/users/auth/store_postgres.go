// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/authpanel/internal/platform/dberr"
)

// userColumns is the projection shared by every query returning a [User].
const userColumns = `id, name, email, password_hash, reset_token, reset_expires, created_at, updated_at`

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users table.

Description: Timestamps are initialised when not provided. The unique index on
email is the sole authority on duplicates.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: dberr.ErrDuplicate or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "postgres_user_repo_create")
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanPostgresUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_id")
	}
	return user, nil
}

// FindByEmail retrieves a user record by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanPostgresUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_email")
	}
	return user, nil
}

// FindByResetToken retrieves the holder of an unexpired reset token.
func (repository *PostgresUserRepository) FindByResetToken(context context.Context, tokenHash string, now time.Time) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_token = $1 AND reset_expires > $2`

	user, err := scanPostgresUser(repository.pool.QueryRow(context, query, tokenHash, now))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_reset_token")
	}
	return user, nil
}

// SetResetToken writes the token hash and expiry in one statement.
func (repository *PostgresUserRepository) SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token = $2, reset_expires = $3, updated_at = now()
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, tokenHash, expiresAt)
	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_set_reset_token")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "postgres_user_repo_set_reset_token")
	}
	return nil
}

/*
ConsumeResetToken swaps the password and burns the token atomically.

Description: The WHERE clause re-checks token and expiry, so a second caller
racing on the same token matches zero rows.

Parameters:
  - context: context.Context
  - tokenHash: string
  - newPasswordHash: string
  - now: time.Time

Returns:
  - *User: The updated account
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresUserRepository) ConsumeResetToken(context context.Context, tokenHash, newPasswordHash string, now time.Time) (*User, error) {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, reset_expires = NULL, updated_at = $3
		WHERE reset_token = $1 AND reset_expires > $3
		RETURNING ` + userColumns

	user, err := scanPostgresUser(repository.pool.QueryRow(context, query, tokenHash, newPasswordHash, now))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_consume_reset_token")
	}
	return user, nil
}

func scanPostgresUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ResetTokenHash,
		&user.ResetExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
