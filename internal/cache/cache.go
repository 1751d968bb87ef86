package cache

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"ipsqr-service/internal/ipsqr"
)

const keyPrefix = "ipsqr:decode:"

// Cache stores decode results by payload key.
// Get returns status.ErrCacheMiss when key is absent.
type Cache interface {
	Get(ctx context.Context, key string) (*ipsqr.Result, error)
	Set(ctx context.Context, key string, res *ipsqr.Result) error
}

// Key derives the cache key of a raw payload.
func Key(payload string) string {
	sum := blake2b.Sum256([]byte(payload))
	return keyPrefix + hex.EncodeToString(sum[:])
}
