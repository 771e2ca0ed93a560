// Package oracle resolves the purchase price for oracle-derived drops.
package oracle

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ErrPriceUnavailable is returned when no quote can be resolved. A purchase
// against an oracle-priced drop fails rather than settling at a bogus zero.
var ErrPriceUnavailable = errors.New("oracle: price unavailable")

// RedisPriceFeed reads the current lamport price from a Redis key that an
// external price process keeps updated. If the key is missing or malformed
// the configured fallback price is returned, so a stalled oracle degrades
// to fixed pricing instead of blocking the drop. With no fallback set the
// feed reports ErrPriceUnavailable instead.
type RedisPriceFeed struct {
	Rdb      *redis.Client
	Key      string
	Fallback uint64
}

func (f *RedisPriceFeed) PriceLamports(ctx context.Context) (uint64, error) {
	if f.Rdb != nil {
		if s, err := f.Rdb.Get(ctx, f.Key).Result(); err == nil {
			if n, err := strconv.ParseUint(s, 10, 64); err == nil && n > 0 {
				return n, nil
			}
		}
	}
	if f.Fallback > 0 {
		return f.Fallback, nil
	}
	return 0, ErrPriceUnavailable
}
