package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadDigestLastSentKey = "digest:unread:last_sent_at"

// DigestStateRepo keeps the time of the last unread digest in redis so that
// restarts and multiple replicas share one schedule.
type DigestStateRepo struct {
	redis *redis.Client
}

func NewDigestStateRepo(redisClient *redis.Client) *DigestStateRepo {
	return &DigestStateRepo{redis: redisClient}
}

// LastSent returns the RFC3339 timestamp of the last digest, or "" if none
// was ever sent.
func (r *DigestStateRepo) LastSent(ctx context.Context) (string, error) {
	v, err := r.redis.Get(ctx, unreadDigestLastSentKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read digest state: %w", err)
	}
	return v, nil
}

func (r *DigestStateRepo) MarkSent(ctx context.Context, at time.Time) error {
	if err := r.redis.Set(ctx, unreadDigestLastSentKey, at.UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("failed to write digest state: %w", err)
	}
	return nil
}
