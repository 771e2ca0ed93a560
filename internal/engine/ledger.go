package engine

// Identity is an opaque account identifier: a wallet address in the on-chain
// deployment, a user's funding-account address in the hosted service. The
// engine never inspects it beyond equality.
type Identity string

// Window is a closed time interval in Unix seconds during which an
// operation is permitted.
type Window struct {
	Start int64
	End   int64
}

// Contains reports whether now falls inside the window, boundaries included.
func (w Window) Contains(now int64) bool {
	return now >= w.Start && now <= w.End
}

// validPeriods checks the window ordering invariant: both windows are
// ordered and the purchase window closes before the reveal window opens.
func validPeriods(purchase, reveal Window) bool {
	return purchase.Start < purchase.End && reveal.Start < reveal.End && purchase.End <= reveal.Start
}

// SaleLedger is the per-drop global state: the cap, the running counters,
// the sale windows and the authorized recipients. Exactly one ledger exists
// per deployment; purchase and reveal mutate it under the caller's
// serialization discipline (one writer at a time).
//
// Invariants: TotalSold <= Cap; TotalRevealed <= TotalSold; both counters
// only ever grow. Recipients are fixed at creation; only the admin may
// adjust the windows afterwards.
type SaleLedger struct {
	Cap           uint64 // maximum number of tickets that may ever be sold
	PriceLamports uint64 // fixed price per ticket in lamports

	TotalSold     uint64 // tickets sold so far
	TotalRevealed int64  // tickets that have received a reveal number
	TotalRaised   uint64 // sum of all successful purchase payments

	PurchaseWindow Window
	RevealWindow   Window

	Admin              Identity // may adjust windows
	RecipientPrimary   Identity // receives the 75% share
	RecipientSecondary Identity // receives the remainder
}

// NewSaleLedger validates the windows and returns a ledger with zeroed
// counters. A ledger is created exactly once; re-initializing an existing
// drop is rejected by the hosting layer, never by silently resetting
// counters here.
func NewSaleLedger(cap, price uint64, purchase, reveal Window, admin, primary, secondary Identity) (*SaleLedger, error) {
	if !validPeriods(purchase, reveal) {
		return nil, ErrInvalidTimePeriods
	}
	return &SaleLedger{
		Cap:                cap,
		PriceLamports:      price,
		PurchaseWindow:     purchase,
		RevealWindow:       reveal,
		Admin:              admin,
		RecipientPrimary:   primary,
		RecipientSecondary: secondary,
	}, nil
}

// SetPeriods replaces both sale windows. Only the admin may call it;
// counters and recipients are untouched. The same ordering invariant as at
// creation applies.
func (l *SaleLedger) SetPeriods(caller Identity, purchase, reveal Window) error {
	if caller != l.Admin {
		return ErrNotAdmin
	}
	if !validPeriods(purchase, reveal) {
		return ErrInvalidTimePeriods
	}
	l.PurchaseWindow = purchase
	l.RevealWindow = reveal
	return nil
}

// CheckPurchaseAllowed gates a purchase at the given time: the purchase
// window must be open and the cap must not be exhausted.
func (l *SaleLedger) CheckPurchaseAllowed(now int64) error {
	if !l.PurchaseWindow.Contains(now) {
		return ErrNotInPurchasePeriod
	}
	if l.TotalSold >= l.Cap {
		return ErrNftLimitReached
	}
	return nil
}

// CheckRevealAllowed gates a reveal at the given time.
func (l *SaleLedger) CheckRevealAllowed(now int64) error {
	if !l.RevealWindow.Contains(now) {
		return ErrNotInRevealPeriod
	}
	return nil
}
