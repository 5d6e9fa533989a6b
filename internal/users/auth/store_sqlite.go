// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/taibuivan/authpanel/internal/platform/dberr"
	"github.com/taibuivan/authpanel/pkg/pointer"
)

// SQLiteUserRepository implements [UserRepository] on an embedded SQLite database.
//
// Timestamps are stored as Unix milliseconds.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a SQLite implementation of the UserRepository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new user. A duplicate email yields dberr.ErrDuplicate.
func (repository *SQLiteUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.CreatedAt = user.CreatedAt.Truncate(time.Millisecond)
	user.UpdatedAt = user.CreatedAt

	_, err := repository.db.ExecContext(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.UnixMilli(),
		user.UpdatedAt.UnixMilli(),
	)

	return dberr.Wrap(err, "sqlite_user_repo_create")
}

// FindByID retrieves a user record by primary key.
func (repository *SQLiteUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanSQLiteUser(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_user_repo_find_by_id")
	}
	return user, nil
}

// FindByEmail retrieves a user record by its unique email address.
func (repository *SQLiteUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanSQLiteUser(repository.db.QueryRowContext(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_user_repo_find_by_email")
	}
	return user, nil
}

// FindByResetToken retrieves the holder of an unexpired reset token.
func (repository *SQLiteUserRepository) FindByResetToken(context context.Context, tokenHash string, now time.Time) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE reset_token = ? AND reset_expires > ?`

	user, err := scanSQLiteUser(repository.db.QueryRowContext(context, query, tokenHash, now.UnixMilli()))
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_user_repo_find_by_reset_token")
	}
	return user, nil
}

// SetResetToken writes the token hash and expiry in one statement.
func (repository *SQLiteUserRepository) SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token = ?, reset_expires = ?, updated_at = ?
		WHERE id = ?`

	result, err := repository.db.ExecContext(context, query,
		tokenHash, expiresAt.UnixMilli(), time.Now().UTC().UnixMilli(), userID)
	if err != nil {
		return dberr.Wrap(err, "sqlite_user_repo_set_reset_token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "sqlite_user_repo_set_reset_token")
	}
	if affected == 0 {
		return dberr.Wrap(sql.ErrNoRows, "sqlite_user_repo_set_reset_token")
	}
	return nil
}

// ConsumeResetToken swaps the password and burns the token in one conditional UPDATE.
func (repository *SQLiteUserRepository) ConsumeResetToken(context context.Context, tokenHash, newPasswordHash string, now time.Time) (*User, error) {
	const query = `
		UPDATE users
		SET password_hash = ?, reset_token = NULL, reset_expires = NULL, updated_at = ?
		WHERE reset_token = ? AND reset_expires > ?
		RETURNING ` + userColumns

	nowMillis := now.UnixMilli()
	user, err := scanSQLiteUser(repository.db.QueryRowContext(context, query,
		newPasswordHash, nowMillis, tokenHash, nowMillis))
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_user_repo_consume_reset_token")
	}
	return user, nil
}

func scanSQLiteUser(row *sql.Row) (*User, error) {
	var (
		user         User
		resetToken   sql.NullString
		resetExpires sql.NullInt64
		createdAt    int64
		updatedAt    int64
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&resetToken,
		&resetExpires,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resetToken.Valid {
		user.ResetTokenHash = pointer.To(resetToken.String)
	}
	if resetExpires.Valid {
		user.ResetExpiresAt = pointer.To(time.UnixMilli(resetExpires.Int64).UTC())
	}
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	user.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return &user, nil
}
