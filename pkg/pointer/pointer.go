// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer holds a generic helper for optional columns that the user
// model carries as pointers (reset token hash and expiry).
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
