// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a session token remains valid.
	// There is no revocation list, so expiry is the only way a session ends.
	AccessTokenTTL = 1 * time.Hour

	// ResetTokenTTL is the duration a password reset token remains valid.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// ResetCooldownTTL is the minimum gap between two reset emails for one address.
	ResetCooldownTTL = 1 * time.Minute

	// ResetPasswordPath is the client route that renders the reset form.
	ResetPasswordPath = "/reset-password"
)

// # Input Bounds

const (
	// PasswordMinLength is counted in characters.
	PasswordMinLength = 6

	// PasswordMaxBytes is the bcrypt input limit.
	PasswordMaxBytes = 72

	// NameMaxLength is counted in characters.
	NameMaxLength = 100

	// EmailMaxLength matches the users.email column width (RFC 5321 path limit).
	EmailMaxLength = 320
)

// # Client Messages

const (
	MessageRegistered        = "Registered!"
	MessageLoginSuccessful   = "Login successful!"
	MessageResetLinkSent     = "If that email is registered, a reset link has been sent."
	MessageTokenValid        = "Token is valid."
	MessagePasswordReset     = "Password has been reset."
	MessageDuplicateEmail    = "This email is already registered."
	MessageInvalidCredential = "Invalid email or password."
	MessageInvalidResetToken = "Password reset token is invalid or has expired."
)
