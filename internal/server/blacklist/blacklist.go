// Package blacklist tracks revoked access tokens by their jti claim.
// A Redis-backed implementation is used when a Redis address is configured;
// otherwise blacklisting silently degrades to a no-op and logout only
// revokes refresh tokens.
package blacklist

import (
	"context"
	"time"
)

// Blacklist records revoked token ids until their natural expiry.
type Blacklist interface {
	// Add marks jti as revoked for the given ttl.
	Add(ctx context.Context, jti string, ttl time.Duration) error

	// Contains reports whether jti has been revoked.
	Contains(ctx context.Context, jti string) (bool, error)
}

// Noop is the fallback used when no Redis address is configured.
// It never blocks a token.
type Noop struct{}

func (Noop) Add(ctx context.Context, jti string, ttl time.Duration) error { return nil }

func (Noop) Contains(ctx context.Context, jti string) (bool, error) { return false, nil }
