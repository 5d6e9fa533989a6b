// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package redis connects the optional Redis instance behind the
// forgot-password cooldown. Without REDIS_URL the cooldown is disabled and
// this package is never called.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// clientName tags our connections in CLIENT LIST.
const clientName = "authpanel"

// Each forgot-password request issues at most one SETNX and one DEL, so a
// small pool with tight deadlines is enough. A slow Redis must not hold the
// request: the cooldown fails open.
const (
	poolSize         = 4
	operationTimeout = 500 * time.Millisecond
	dialTimeout      = 2 * time.Second
	pingTimeout      = 2 * time.Second
)

// NewClient parses redisURL, applies the cooldown pool settings and pings once.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid REDIS_URL: %w", err)
	}

	options.ClientName = clientName
	options.PoolSize = poolSize
	options.MinIdleConns = 1
	options.DialTimeout = dialTimeout
	options.ReadTimeout = operationTimeout
	options.WriteTimeout = operationTimeout
	options.MaxRetries = 1

	client := redis.NewClient(options)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)
	return client, nil
}

// Ping is the readiness probe for the cooldown store.
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
