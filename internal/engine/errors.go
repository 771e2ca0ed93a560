// Package engine implements the allocation and settlement core of the NFT
// drop ledger: a capped sale gated by time windows, a split payment to two
// fixed recipients, and the assignment of unique reveal numbers from a
// bounded pool. All state is carried in explicitly passed objects; the
// package keeps no process-wide mutable state.
package engine

import "errors"

// Sentinel errors returned by the engine. Handlers branch on these with
// errors.Is to pick HTTP status codes, and tests assert on them directly.
// Every validation failure leaves ledger, pool and ticket state untouched.
var (
	// ErrInvalidTimePeriods is returned when purchase/reveal windows are
	// malformed: each window must be ordered and the purchase window must
	// close no later than the reveal window opens.
	ErrInvalidTimePeriods = errors.New("invalid time periods")

	// ErrNotAdmin is returned when a caller other than the ledger admin
	// attempts to adjust the sale windows.
	ErrNotAdmin = errors.New("caller is not the ledger admin")

	// ErrNotInPurchasePeriod is returned when a purchase arrives outside
	// the purchase window.
	ErrNotInPurchasePeriod = errors.New("not in purchase period")

	// ErrNotInRevealPeriod is returned when a reveal arrives outside the
	// reveal window.
	ErrNotInRevealPeriod = errors.New("not in reveal period")

	// ErrNftLimitReached is returned when the sale cap is exhausted.
	ErrNftLimitReached = errors.New("nft limit reached")

	// ErrInvalidAdminSolAccount is returned when the caller-supplied
	// primary recipient does not match the one recorded at initialization.
	ErrInvalidAdminSolAccount = errors.New("invalid admin sol account")

	// ErrInvalidTreasuryAccount is returned when the caller-supplied
	// treasury recipient does not match the recorded one.
	ErrInvalidTreasuryAccount = errors.New("invalid treasury account")

	// ErrInsufficientFunds is returned when the payer's balance does not
	// cover the purchase price.
	ErrInsufficientFunds = errors.New("insufficient funds for purchase")

	// ErrNftNotFound is returned when the item identity supplied to reveal
	// does not match the ticket's recorded item.
	ErrNftNotFound = errors.New("nft not found")

	// ErrNftAlreadyRevealed is returned when a ticket's reveal number has
	// already been assigned.
	ErrNftAlreadyRevealed = errors.New("nft already revealed")

	// ErrNoAvailableNumbers is returned when the number pool is exhausted.
	ErrNoAvailableNumbers = errors.New("no available numbers to assign")
)
