// Package limiter throttles repeated unknown share-token lookups from one address.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter tracks failed share link lookups per caller and places temporary lockouts.
type Limiter interface {
	// Allow reports whether lookups are currently allowed and an optional retry-after.
	Allow(ctx context.Context, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a lookup that resolved a client.
	Success(ctx context.Context, ipHash []byte) error
	// Failure records an unknown token; may place a temporary block.
	Failure(ctx context.Context, ipHash []byte) (bool, time.Duration, error)
}

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}
