// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the request-scoped context keys shared by the
// middleware chain and the handlers behind it.
package ctxkey

type key uint8

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = iota + 1

	// KeySession carries the verified session claims of a guarded request.
	KeySession

	// KeyLogger carries the request logger.
	KeyLogger

	// KeyClientIP carries the caller address resolved against trusted proxies.
	KeyClientIP
)
