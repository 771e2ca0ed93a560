package engine

import (
	"context"
	"fmt"
)

// SettlementMode selects how a purchase payment is routed.
type SettlementMode int

const (
	// SettleSplit pays 75% to the primary recipient and the remainder to
	// the secondary one.
	SettleSplit SettlementMode = iota

	// SettleSingle pays the full amount to the primary recipient.
	SettleSingle
)

// ParseSettlementMode maps a config string to a mode.
func ParseSettlementMode(s string) (SettlementMode, error) {
	switch s {
	case "split":
		return SettleSplit, nil
	case "single":
		return SettleSingle, nil
	}
	return 0, fmt.Errorf("unknown settlement mode %q", s)
}

// Recipients carries the caller-supplied recipient identities for a
// purchase. They must match the ledger's recorded recipients exactly;
// anything else is treated as an attempt to redirect funds.
type Recipients struct {
	Primary   Identity
	Secondary Identity
}

// SplitShares computes the two shares of a split settlement. The primary
// share is floor(amount*75/100) and the secondary share is the remainder,
// so the shares always sum exactly to amount and no dust is lost to
// rounding.
func SplitShares(amount uint64) (primary, secondary uint64) {
	primary = amount * 75 / 100
	secondary = amount - primary
	return primary, secondary
}

// settledLegs records the transfers executed by settle so a later failure
// (mint) can unwind them.
type settledLegs struct {
	payer     Identity
	primary   Identity
	secondary Identity
	toPrimary uint64
	toSecond  uint64
}

// settle validates the recipients and the payer's balance, then executes
// the transfer legs for the configured mode. If the second leg of a split
// fails, the first is refunded before the error is returned: either both
// legs land or neither does.
func (e *Engine) settle(ctx context.Context, l *SaleLedger, payer Identity, claimed Recipients, amount uint64) (settledLegs, error) {
	var legs settledLegs
	if claimed.Primary != l.RecipientPrimary {
		return legs, ErrInvalidAdminSolAccount
	}
	if e.cfg.Settlement == SettleSplit && claimed.Secondary != l.RecipientSecondary {
		return legs, ErrInvalidTreasuryAccount
	}

	balance, err := e.funds.Balance(ctx, payer)
	if err != nil {
		return legs, err
	}
	if balance < amount {
		return legs, ErrInsufficientFunds
	}

	legs.payer = payer
	legs.primary = l.RecipientPrimary
	legs.secondary = l.RecipientSecondary

	if e.cfg.Settlement == SettleSingle {
		if err := e.funds.Transfer(ctx, payer, l.RecipientPrimary, amount); err != nil {
			return settledLegs{}, err
		}
		legs.toPrimary = amount
		return legs, nil
	}

	toPrimary, toSecondary := SplitShares(amount)
	if err := e.funds.Transfer(ctx, payer, l.RecipientPrimary, toPrimary); err != nil {
		return settledLegs{}, err
	}
	if err := e.funds.Transfer(ctx, payer, l.RecipientSecondary, toSecondary); err != nil {
		// Refund the first leg so no partial payment survives the failure.
		_ = e.funds.Transfer(ctx, l.RecipientPrimary, payer, toPrimary)
		return settledLegs{}, err
	}
	legs.toPrimary = toPrimary
	legs.toSecond = toSecondary
	return legs, nil
}

// unwind refunds previously executed settlement legs. Used when a step
// after settlement (the mint) fails and the purchase must leave no trace.
func (e *Engine) unwind(ctx context.Context, legs settledLegs) {
	if legs.toPrimary > 0 {
		_ = e.funds.Transfer(ctx, legs.primary, legs.payer, legs.toPrimary)
	}
	if legs.toSecond > 0 {
		_ = e.funds.Transfer(ctx, legs.secondary, legs.payer, legs.toSecond)
	}
}
