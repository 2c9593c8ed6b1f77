// Package limiter throttles login attempts per client address and per account.
package limiter

import (
	"context"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login attempt may proceed and, if not, when to retry.
	Allow(ctx context.Context, email, ip string) (bool, time.Duration, error)
	// Failure records a failed attempt; it may lock the account.
	Failure(ctx context.Context, email, ip string) (bool, time.Duration, error)
	// Success clears the account's failure history.
	Success(ctx context.Context, email, ip string) error
}
