// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration, login and password recovery.

It defines the User entity, the storage contracts it depends on, the service
holding the business rules, and the HTTP handler exposing them.

# Architecture

  - Service: Orchestrates business logic (Register, Login, Reset).
  - Repository: Abstracted interfaces with PostgreSQL and SQLite implementations.
  - Cooldown: Optional Redis throttle on reset emails.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered account.
//
// ResetTokenHash and ResetExpiresAt are either both set or both nil. Only the
// SHA-256 hash of a reset token is ever stored.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	ResetTokenHash *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasResetToken reports whether a reset token is outstanding.
func (user *User) HasResetToken() bool {
	return user.ResetTokenHash != nil && user.ResetExpiresAt != nil
}

// # Field Identifiers

// Field names for request payloads and validation details.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldNewPassword = "newPassword"
	FieldToken       = "token"
	FieldUserID      = "userId"
	FieldMessage     = "message"
)
