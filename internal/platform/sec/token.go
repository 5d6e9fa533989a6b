// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns size cryptographically random bytes, hex encoded.
func GenerateSecureToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("sec: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate random token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 fingerprint of a token, hex encoded.
//
// Single-use tokens are stored only in this form; the raw value lives in the
// email that carries it.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
