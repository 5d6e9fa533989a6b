// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/authpanel/internal/platform/constants"
	"github.com/taibuivan/authpanel/internal/platform/sec"
)

// RedisResetCooldown implements [ResetCooldown] using Redis key expiry.
type RedisResetCooldown struct {
	client *redis.Client
}

// NewRedisResetCooldown creates a new Redis-backed ResetCooldown.
func NewRedisResetCooldown(client *redis.Client) *RedisResetCooldown {
	return &RedisResetCooldown{client: client}
}

/*
Acquire starts a cooldown for email unless one is already running.

Parameters:
  - context: context.Context
  - email: string
  - ttl: time.Duration

Returns:
  - bool: true if this call started the cooldown
  - error: Connectivity failures
*/
func (cooldown *RedisResetCooldown) Acquire(context context.Context, email string, ttl time.Duration) (bool, error) {
	acquired, err := cooldown.client.SetNX(context, cooldownKey(email), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_reset_cooldown_acquire_failed: %w", err)
	}

	return acquired, nil
}

// Release deletes the cooldown key for email. A missing key is not an error.
func (cooldown *RedisResetCooldown) Release(context context.Context, email string) error {
	if err := cooldown.client.Del(context, cooldownKey(email)).Err(); err != nil {
		return fmt.Errorf("redis_reset_cooldown_release_failed: %w", err)
	}
	return nil
}

// cooldownKey hashes the address so no plain email is written to Redis.
func cooldownKey(email string) string {
	return constants.RedisPrefixResetCooldown + sec.HashToken(email)
}
