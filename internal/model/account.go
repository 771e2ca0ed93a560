package model

import "time"

// Account is a lamport funding account. Purchases debit the payer's row and
// credit the recipients' rows inside the same transaction as the ticket
// insert, so a failed purchase can never leave money half-moved.
//
// Fields:
//  Address   – account address (primary key).
//  Balance   – available lamports.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last balance change.
type Account struct {
	Address   string    // accounts.address
	Balance   uint64    // accounts.balance_lamports
	CreatedAt time.Time // accounts.created_at
	UpdatedAt time.Time // accounts.updated_at
}
