// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/authpanel/internal/platform/apperr"
	"github.com/taibuivan/authpanel/internal/platform/dberr"
	"github.com/taibuivan/authpanel/internal/platform/mail"
	"github.com/taibuivan/authpanel/internal/platform/sec"
	"github.com/taibuivan/authpanel/internal/platform/validate"
	"github.com/taibuivan/authpanel/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing session tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed token for the given user.
	GenerateAccessToken(userID, name string, timeToLive time.Duration) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// login or reset logic must be reviewed with the enumeration and timing rules
// in mind.
type Service struct {
	userRepository UserRepository
	resetCooldown  ResetCooldown
	tokenProvider  TokenProvider
	mailer         mail.Mailer
	publicBaseURL  string
	logger         *slog.Logger
	now            func() time.Time
}

// NewService constructs a new [Service].
//
// cooldown may be nil, which disables reset-email throttling.
func NewService(
	userRepo UserRepository,
	cooldown ResetCooldown,
	tokenProv TokenProvider,
	mailer mail.Mailer,
	publicBaseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		resetCooldown:  cooldown,
		tokenProvider:  tokenProv,
		mailer:         mailer,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		logger:         logger,
		now:            time.Now,
	}
}

// dummyPasswordHash is compared against when no account matches, so a failed
// login costs one bcrypt comparison either way.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := sec.HashPassword("authpanel-timing-equaliser")
	if err != nil {
		panic(fmt.Sprintf("auth: cannot build dummy hash: %v", err))
	}
	return hash
})

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register hashes the password and persists a brand new user account.

Description: No existence pre-check is made; the store's unique index decides
duplicates, which also covers two registrations racing on one email.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (email on file) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	id, err := uuidv7.New()
	if err != nil {
		return nil, fmt.Errorf("auth_service_id_failed: %w", err)
	}

	user := &User{
		ID:           id,
		Name:         validate.NormalizeName(input.Name),
		Email:        validate.NormalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		CreatedAt:    service.now().UTC(),
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.Conflict(MessageDuplicateEmail)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a successfully issued session.
type LoginResult struct {
	Token string
	User  *User
}

/*
Login validates credentials and issues a session token.

Description: An unknown email and a wrong password return the same error after
the same amount of bcrypt work.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Token and account
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	user, err := service.userRepository.FindByEmail(context, validate.NormalizeEmail(input.Email))
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if user == nil {
		sec.CheckPasswordHash(input.Password, dummyPasswordHash())
		return nil, apperr.Unauthorized(MessageInvalidCredential)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized(MessageInvalidCredential)
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Name, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// # Password Recovery

/*
RequestPasswordReset starts the forgot-password flow.

Description: The caller learns nothing about whether email is registered. The
token and email are produced only on a match and outside an active cooldown.
Once an account matched, every later failure is logged rather than returned,
and a reset that never reached the mailer releases the cooldown.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Account lookup failures only
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	email = validate.NormalizeEmail(email)

	user, err := service.userRepository.FindByEmail(context, email)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	if !service.acquireCooldown(context, email) {
		return nil
	}

	message, err := service.issueResetToken(context, user)
	if err != nil {
		service.logger.ErrorContext(context, "auth_reset_token_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		service.releaseCooldown(context, email)
		return nil
	}

	if err := service.mailer.Send(context, message); err != nil {
		service.logger.ErrorContext(context, "auth_reset_mail_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return nil
}

// issueResetToken stores a fresh token for user and renders the email carrying it.
func (service *Service) issueResetToken(context context.Context, user *User) (mail.Message, error) {
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return mail.Message{}, fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	expiresAt := service.now().Add(ResetTokenTTL)
	if err := service.userRepository.SetResetToken(context, user.ID, sec.HashToken(token), expiresAt); err != nil {
		return mail.Message{}, fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	message, err := mail.PasswordResetMessage(user.Email, user.Name, service.resetLink(token))
	if err != nil {
		return mail.Message{}, fmt.Errorf("auth_service_render_reset_mail_failed: %w", err)
	}

	return message, nil
}

// acquireCooldown reports whether a reset email may be sent now. Cooldown
// store failures let the request through.
func (service *Service) acquireCooldown(context context.Context, email string) bool {
	if service.resetCooldown == nil {
		return true
	}

	acquired, err := service.resetCooldown.Acquire(context, email, ResetCooldownTTL)
	if err != nil {
		service.logger.WarnContext(context, "auth_reset_cooldown_unavailable", slog.Any("error", err))
		return true
	}

	return acquired
}

func (service *Service) releaseCooldown(context context.Context, email string) {
	if service.resetCooldown == nil {
		return
	}

	if err := service.resetCooldown.Release(context, email); err != nil {
		service.logger.WarnContext(context, "auth_reset_cooldown_release_failed", slog.Any("error", err))
	}
}

func (service *Service) resetLink(token string) string {
	return service.publicBaseURL + ResetPasswordPath + "?" + url.Values{FieldToken: {token}}.Encode()
}

/*
VerifyResetToken checks a reset token without consuming it.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *User: Token holder
  - err: InvalidToken when unknown or expired
*/
func (service *Service) VerifyResetToken(context context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperr.InvalidToken(MessageInvalidResetToken)
	}

	user, err := service.userRepository.FindByResetToken(context, sec.HashToken(token), service.now())
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.InvalidToken(MessageInvalidResetToken)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_verify_reset_token_failed: %w", err)
	}

	return user, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: The token is checked again here regardless of any earlier
verification; the new hash and token removal are one store operation.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: InvalidToken or storage failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	if token == "" {
		return apperr.InvalidToken(MessageInvalidResetToken)
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	_, err = service.userRepository.ConsumeResetToken(context, sec.HashToken(token), hashedPassword, service.now())
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.InvalidToken(MessageInvalidResetToken)
	}
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	return nil
}
