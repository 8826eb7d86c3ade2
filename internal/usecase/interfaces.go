package usecase

import "time"

// RateLimiter is the per-admin action limiter the chat and search use cases consult.
type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}
