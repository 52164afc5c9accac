package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CheckAndSetRateLimit allows one action per user per window. Returns true
// when the action may proceed. A nil Redis client disables limiting.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// CheckLoginRateLimit allows up to burst attempts per email per window.
// Login is pre-auth so the key is the submitted email, not a user ID.
func CheckLoginRateLimit(ctx context.Context, rdb *redis.Client, email string, window time.Duration, burst int) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:login:%s", email)

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login rate limit in redis: %w", err)
	}
	if count == 1 {
		rdb.Expire(ctx, key, window)
	}

	return count <= int64(burst), nil
}
