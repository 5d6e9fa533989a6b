// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/taibuivan/authpanel/internal/platform/dberr"
	"github.com/taibuivan/authpanel/internal/platform/mail"
	"github.com/taibuivan/authpanel/pkg/pointer"
)

// memoryUserRepository is an in-process [UserRepository] with the same
// conditional semantics as the SQL stores.
type memoryUserRepository struct {
	mu      sync.Mutex
	byID    map[string]*User
	failAll error

	// failSetReset fails only SetResetToken, after the account lookup succeeded.
	failSetReset error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{byID: make(map[string]*User)}
}

func (repository *memoryUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failAll != nil {
		return repository.failAll
	}

	for _, existing := range repository.byID {
		if existing.Email == user.Email {
			return fmt.Errorf("memory_create: %w", dberr.ErrDuplicate)
		}
	}
	clone := *user
	repository.byID[user.ID] = &clone
	return nil
}

func (repository *memoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if user, ok := repository.byID[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, fmt.Errorf("memory_find_by_id: %w", dberr.ErrNotFound)
}

func (repository *memoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failAll != nil {
		return nil, repository.failAll
	}

	for _, user := range repository.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("memory_find_by_email: %w", dberr.ErrNotFound)
}

func (repository *memoryUserRepository) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if user := repository.holderLocked(tokenHash, now); user != nil {
		clone := *user
		return &clone, nil
	}
	return nil, fmt.Errorf("memory_find_by_reset_token: %w", dberr.ErrNotFound)
}

func (repository *memoryUserRepository) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failSetReset != nil {
		return repository.failSetReset
	}

	user, ok := repository.byID[userID]
	if !ok {
		return fmt.Errorf("memory_set_reset_token: %w", dberr.ErrNotFound)
	}
	user.ResetTokenHash, user.ResetExpiresAt = pointer.To(tokenHash), pointer.To(expiresAt)
	return nil
}

func (repository *memoryUserRepository) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user := repository.holderLocked(tokenHash, now)
	if user == nil {
		return nil, fmt.Errorf("memory_consume_reset_token: %w", dberr.ErrNotFound)
	}
	user.PasswordHash = newPasswordHash
	user.ResetTokenHash, user.ResetExpiresAt = nil, nil
	clone := *user
	return &clone, nil
}

func (repository *memoryUserRepository) holderLocked(tokenHash string, now time.Time) *User {
	for _, user := range repository.byID {
		if user.HasResetToken() && *user.ResetTokenHash == tokenHash && user.ResetExpiresAt.After(now) {
			return user
		}
	}
	return nil
}

func (repository *memoryUserRepository) get(email string) *User {
	user, _ := repository.FindByEmail(context.Background(), email)
	return user
}

// recordingMailer captures outgoing messages.
type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (mailer *recordingMailer) Send(_ context.Context, message mail.Message) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	mailer.messages = append(mailer.messages, message)
	return mailer.err
}

func (mailer *recordingMailer) sent() []mail.Message {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	return append([]mail.Message(nil), mailer.messages...)
}

// stubCooldown hands out a fixed answer and records releases.
type stubCooldown struct {
	acquired bool
	err      error
	calls    int
	released []string
}

func (cooldown *stubCooldown) Acquire(context.Context, string, time.Duration) (bool, error) {
	cooldown.calls++
	return cooldown.acquired, cooldown.err
}

func (cooldown *stubCooldown) Release(_ context.Context, email string) error {
	cooldown.released = append(cooldown.released, email)
	return nil
}

// stubTokenProvider returns predictable tokens.
type stubTokenProvider struct {
	err error
}

func (provider stubTokenProvider) GenerateAccessToken(userID, name string, _ time.Duration) (string, error) {
	if provider.err != nil {
		return "", provider.err
	}
	return "token-for-" + userID + "-" + name, nil
}

var errStoreDown = errors.New("store down")
