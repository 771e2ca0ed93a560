package model

import "time"

// Ticket records one successful purchase. A ticket is created together
// with its minted item inside the purchase transaction and is mutated
// exactly once afterwards, when the reveal assigns its number.
//
// Fields:
//  ID             – primary key identifier.
//  LedgerID       – drop the ticket was bought from.
//  OwnerAddress   – buyer's funding-account address.
//  ItemID         – identity of the minted unit (UUID issued at mint time).
//  RevealedNumber – assigned reveal number; 0 means not yet revealed.
//  CreatedAt      – purchase timestamp.
//  RevealedAt     – reveal timestamp (nullable until revealed).
type Ticket struct {
	ID             uint64     // tickets.id
	LedgerID       uint64     // tickets.ledger_id
	OwnerAddress   string     // tickets.owner_address
	ItemID         string     // tickets.item_id
	RevealedNumber uint16     // tickets.revealed_number
	CreatedAt      time.Time  // tickets.created_at
	RevealedAt     *time.Time // tickets.revealed_at (nullable)
}

// MintedItem is the provenance record written when a purchase mints its
// unit: who it was minted to and the descriptive metadata attached to it.
//
// Fields:
//  ItemID       – UUID identity of the minted unit (primary key).
//  OwnerAddress – account the unit was minted to.
//  Name         – display name recorded for the unit.
//  Symbol       – short collection symbol.
//  URI          – metadata document location.
//  CreatedAt    – mint timestamp.
type MintedItem struct {
	ItemID       string    // minted_items.item_id
	OwnerAddress string    // minted_items.owner_address
	Name         string    // minted_items.name
	Symbol       string    // minted_items.symbol
	URI          string    // minted_items.uri
	CreatedAt    time.Time // minted_items.created_at
}
