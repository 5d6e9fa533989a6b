// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Lookups that match nothing return an error satisfying
// errors.Is(err, dberr.ErrNotFound); a duplicate email on Create satisfies
// errors.Is(err, dberr.ErrDuplicate).
type UserRepository interface {

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: dberr.ErrDuplicate on an email clash, or persistence failures
	*/
	Create(context context.Context, user *User) error

	// FindByID returns the account with the given ID.
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given normalised email.
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByResetToken returns the account holding the given reset token hash,
		provided the token expires strictly after now.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - now: time.Time

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound when unknown or expired
	*/
	FindByResetToken(context context.Context, tokenHash string, now time.Time) (*User, error)

	// SetResetToken stores a token hash and its expiry together, replacing any previous token.
	SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error

	/*
		ConsumeResetToken replaces the password and clears the reset token in a
		single conditional update.

		Of several concurrent calls with the same token at most one succeeds.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - newPasswordHash: string
		  - now: time.Time

		Returns:
		  - *User: The updated account
		  - error: dberr.ErrNotFound when the token is unknown, expired or already used
	*/
	ConsumeResetToken(context context.Context, tokenHash, newPasswordHash string, now time.Time) (*User, error)
}

// # Volatile Data Access

// ResetCooldown throttles how often reset emails go to one address.
type ResetCooldown interface {

	// Acquire reports true when no cooldown was active for email, starting one for ttl.
	Acquire(context context.Context, email string, ttl time.Duration) (bool, error)

	// Release ends the cooldown for email early, after a reset that never went out.
	Release(context context.Context, email string) error
}
