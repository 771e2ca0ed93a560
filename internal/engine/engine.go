package engine

import (
	"context"
	"fmt"
	"sync"
)

// PriceSource selects where the purchase amount comes from.
type PriceSource int

const (
	// PriceFixed uses the price recorded on the ledger at initialization.
	PriceFixed PriceSource = iota

	// PriceOracleDerived asks the configured PriceFeed on every purchase.
	PriceOracleDerived
)

// ParsePriceSource maps a config string to a price source.
func ParsePriceSource(s string) (PriceSource, error) {
	switch s {
	case "fixed":
		return PriceFixed, nil
	case "oracle":
		return PriceOracleDerived, nil
	}
	return 0, fmt.Errorf("unknown price source %q", s)
}

// Config fixes the engine's policies at construction. The same purchase and
// reveal state machines serve every observed drop variant; only these knobs
// differ between them.
type Config struct {
	Allocation AllocationPolicy
	Settlement SettlementMode
	Price      PriceSource
}

// Engine runs purchases and reveals against explicitly passed ledger, pool
// and ticket state. It owns no state of its own beyond the policy config,
// the collaborators and a mutex that serializes operations touching the
// same shared state: one call fully commits or fully fails before the next
// observes anything.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	funds  FundsBook
	minter Minter
	prices PriceFeed
}

// New constructs an engine. funds and minter must be non-nil; prices may be
// nil unless the price source is oracle-derived.
func New(cfg Config, funds FundsBook, minter Minter, prices PriceFeed) *Engine {
	if funds == nil || minter == nil {
		panic("nil collaborator passed to engine.New")
	}
	if cfg.Price == PriceOracleDerived && prices == nil {
		panic("oracle price source requires a price feed")
	}
	return &Engine{cfg: cfg, funds: funds, minter: minter, prices: prices}
}

// price resolves the purchase amount for a ledger under the configured
// source.
func (e *Engine) price(ctx context.Context, l *SaleLedger) (uint64, error) {
	if e.cfg.Price == PriceOracleDerived {
		return e.prices.PriceLamports(ctx)
	}
	return l.PriceLamports, nil
}

// Purchase runs the full purchase sequence against the ledger: window and
// cap gates, recipient and balance validation, settlement, mint, then the
// ticket commit and counter bumps. The sequence is all-or-nothing: any
// failure unwinds executed transfers and leaves the ledger exactly as it
// was. On success the returned ticket is new and unrevealed.
func (e *Engine) Purchase(ctx context.Context, l *SaleLedger, payer Identity, claimed Recipients, now int64) (*Ticket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := l.CheckPurchaseAllowed(now); err != nil {
		return nil, err
	}
	amount, err := e.price(ctx, l)
	if err != nil {
		return nil, err
	}
	legs, err := e.settle(ctx, l, payer, claimed, amount)
	if err != nil {
		return nil, err
	}
	itemID, err := e.minter.Mint(ctx, payer)
	if err != nil {
		e.unwind(ctx, legs)
		return nil, err
	}

	// Terminal commit: nothing past this point can fail.
	l.TotalSold++
	l.TotalRaised += amount
	return &Ticket{Owner: payer, ItemID: itemID}, nil
}

// Reveal assigns the ticket its unique number. The reveal window must be
// open, the supplied item identity must match the ticket's, and the ticket
// must not have been revealed before. The allocated number enters the
// pool's used set and the ticket in the same critical section, so no two
// reveals can ever share a number and a ticket can never be revealed
// twice. `now` both gates the window and seeds the hashed allocator.
func (e *Engine) Reveal(l *SaleLedger, pool *Pool, t *Ticket, claimedItemID Identity, now int64) (uint16, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := l.CheckRevealAllowed(now); err != nil {
		return 0, err
	}
	if t.ItemID != claimedItemID {
		return 0, ErrNftNotFound
	}
	if t.Revealed() {
		return 0, ErrNftAlreadyRevealed
	}
	n, err := pool.AllocateNext(now)
	if err != nil {
		return 0, err
	}
	t.RevealedNumber = n
	l.TotalRevealed++
	return n, nil
}
