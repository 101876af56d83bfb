// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxSignInAttempts = int64(5)
	signInWindow      = 15 * time.Minute
	maxResetAttempts  = int64(3)
	resetWindow       = 1 * time.Hour
)

type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckSignInAttempt checks if a sign-in attempt is allowed and returns
// the remaining attempts in the current window.
func (r *RateLimiter) CheckSignInAttempt(ctx context.Context, ip, email string) (bool, int64, error) {
	key := fmt.Sprintf("ratelimit:signin:%s:%s", ip, email)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment sign-in attempt: %w", err)
	}

	// Window starts with the first attempt
	if count == 1 {
		r.client.Expire(ctx, key, signInWindow)
	}

	remaining := maxSignInAttempts - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= maxSignInAttempts, remaining, nil
}

// ResetSignInAttempts clears the counter after a successful sign-in.
func (r *RateLimiter) ResetSignInAttempts(ctx context.Context, ip, email string) error {
	return r.client.Del(ctx, fmt.Sprintf("ratelimit:signin:%s:%s", ip, email)).Err()
}

// CheckPasswordResetAttempt limits reset emails per address.
func (r *RateLimiter) CheckPasswordResetAttempt(ctx context.Context, email string) (bool, error) {
	key := fmt.Sprintf("ratelimit:password_reset:%s", email)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment password reset attempt: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, resetWindow)
	}

	return count <= maxResetAttempts, nil
}
