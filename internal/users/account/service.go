// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/authpanel/internal/platform/apperr"
	"github.com/taibuivan/authpanel/internal/platform/dberr"
	"github.com/taibuivan/authpanel/internal/users/auth"
)

// UserReader is the slice of the user store this package needs.
type UserReader interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
}

// Profile is the private view of the signed-in account.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service implements read-only use cases for a signed-in user.
type Service struct {
	users UserReader
}

// NewService constructs a new account [Service].
func NewService(users UserReader) *Service {
	return &Service{users: users}
}

// Greeting returns the dashboard welcome line for name.
func Greeting(name string) string {
	return fmt.Sprintf("Welcome back, %s!", name)
}

// GetProfile loads the account behind a session.
//
// A valid token whose account no longer exists is treated as unauthenticated.
func (service *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := service.users.FindByID(ctx, userID)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.Unauthorized("Account no longer exists.")
	}
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}

	return &Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}
