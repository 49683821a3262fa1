// Package ratelimit throttles repeated failed access-code checks per share
// token, backed by Redis so the counter survives restarts and is shared
// across instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	client      *redis.Client
	prefix      string
	maxFailures int
	basePenalty time.Duration
	maxPenalty  time.Duration
}

// NewLimiter connects to Redis and verifies the connection.
func NewLimiter(redisAddr string) (*Limiter, error) {
	client := redis.NewClient(&redis.Options{Addr: redisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewLimiterWithClient(client), nil
}

// NewLimiterWithClient builds a limiter on an existing Redis client.
func NewLimiterWithClient(client *redis.Client) *Limiter {
	return &Limiter{
		client:      client,
		prefix:      "codefail:",
		maxFailures: 5,
		basePenalty: 30 * time.Second,
		maxPenalty:  30 * time.Minute,
	}
}

func (l *Limiter) key(token string) string {
	return l.prefix + token
}

// Allow reports whether another verification attempt may proceed for the
// given token.
func (l *Limiter) Allow(ctx context.Context, token string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(token)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read failure counter: %w", err)
	}
	return n < l.maxFailures, nil
}

// Fail records a failed attempt. Once the threshold is reached the block
// window doubles with every further failure, up to maxPenalty.
func (l *Limiter) Fail(ctx context.Context, token string) error {
	key := l.key(token)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("increment failure counter: %w", err)
	}

	penalty := l.basePenalty
	if over := n - int64(l.maxFailures); over > 0 {
		for i := int64(0); i < over && penalty < l.maxPenalty; i++ {
			penalty *= 2
		}
		if penalty > l.maxPenalty {
			penalty = l.maxPenalty
		}
	}

	if err := l.client.Expire(ctx, key, penalty).Err(); err != nil {
		return fmt.Errorf("set failure counter expiry: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful verification.
func (l *Limiter) Reset(ctx context.Context, token string) error {
	if err := l.client.Del(ctx, l.key(token)).Err(); err != nil {
		return fmt.Errorf("clear failure counter: %w", err)
	}
	return nil
}
