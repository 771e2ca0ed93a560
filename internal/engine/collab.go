package engine

import (
	"context"
	"time"
)

// The engine treats everything that touches the outside world as a
// collaborator behind a small interface: time, balances, transfers, minting
// and pricing. The hosting layer supplies transaction-backed
// implementations; tests supply in-memory ones.

// Clock supplies the current time as Unix seconds. The engine's operations
// take an explicit `now` so callers read the clock once per call and the
// same instant gates the windows and seeds the allocator.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().UTC().Unix() }

// FundsBook provides balances and an atomic transfer between two
// identities. Transfer either moves the full amount or fails with no
// effect; the engine relies on that to keep settlement all-or-nothing.
type FundsBook interface {
	Balance(ctx context.Context, id Identity) (uint64, error)
	Transfer(ctx context.Context, from, to Identity, amount uint64) error
}

// Minter creates exactly one unit owned by the given identity and records
// its descriptive metadata, returning the new unit's identity. A mint
// failure is fatal to the whole purchase: the engine unwinds settlement and
// commits nothing.
type Minter interface {
	Mint(ctx context.Context, owner Identity) (Identity, error)
}

// PriceFeed supplies the current ticket price for drops configured with an
// oracle-derived price source.
type PriceFeed interface {
	PriceLamports(ctx context.Context) (uint64, error)
}
