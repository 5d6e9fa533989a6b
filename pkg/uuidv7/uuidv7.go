// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// User primary keys and request IDs both come from here. Time ordering keeps
// the users table index append-mostly and makes request IDs sortable in logs.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// NewOrRandom generates a UUIDv7 and falls back to a random UUIDv4 when the
// clock-sequence source fails. Suitable for correlation IDs, not for keys.
func NewOrRandom() string {
	if id, err := New(); err == nil {
		return id
	}

	return uuid.NewString()
}
