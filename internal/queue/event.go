// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketPurchasedEvent is published after a purchase transaction commits.
// It carries enough for downstream consumers to log, notify or feed
// analytics without querying the primary database.
type TicketPurchasedEvent struct {
	TicketID       uint64 `json:"ticket_id"`
	LedgerID       uint64 `json:"ledger_id"`
	Buyer          string `json:"buyer"`
	ItemID         string `json:"item_id"`
	AmountLamports uint64 `json:"amount_lamports"`
	TotalSold      uint64 `json:"total_sold"`
	PurchasedAt    string `json:"purchased_at"`
}

// TicketRevealedEvent is published after a reveal transaction commits and
// the ticket holds its permanent number.
type TicketRevealedEvent struct {
	TicketID       uint64 `json:"ticket_id"`
	LedgerID       uint64 `json:"ledger_id"`
	Owner          string `json:"owner"`
	ItemID         string `json:"item_id"`
	RevealedNumber uint16 `json:"revealed_number"`
	RevealedAt     string `json:"revealed_at"`
}
