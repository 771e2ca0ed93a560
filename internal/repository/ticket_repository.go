package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kavehz/nft-drop-ledger/internal/model"
)

// TicketRepo provides data access to the tickets table. Tickets are
// created inside the purchase transaction and mutated exactly once by the
// reveal transaction; nothing ever deletes them.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateTx inserts a new unrevealed ticket within the caller's transaction
// and populates the generated ID on the record.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (ledger_id, owner_address, item_id, revealed_number)
		VALUES (?, ?, ?, 0)`
	res, err := tx.ExecContext(ctx, q, t.LedgerID, t.OwnerAddress, t.ItemID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

const ticketColumns = `id, ledger_id, owner_address, item_id, revealed_number, created_at, revealed_at`

func scanTicket(row *sql.Row) (*model.Ticket, error) {
	var t model.Ticket
	var revealedAt sql.NullTime
	err := row.Scan(&t.ID, &t.LedgerID, &t.OwnerAddress, &t.ItemID, &t.RevealedNumber, &t.CreatedAt, &revealedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if revealedAt.Valid {
		at := revealedAt.Time
		t.RevealedAt = &at
	}
	return &t, nil
}

// GetForUpdateTx loads a ticket row locked within the given transaction.
// Reveal locks the ticket alongside the ledger so a replayed reveal
// observes the committed revealed_number, never a stale zero.
func (r *TicketRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, ticketID, ledgerID uint64) (*model.Ticket, error) {
	return scanTicket(tx.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = ? AND ledger_id = ? FOR UPDATE`,
		ticketID, ledgerID))
}

// SetRevealedTx writes the assigned number onto the ticket. The WHERE
// clause re-checks revealed_number = 0 as a final guard on the
// one-shot transition; a zero row count means the ticket was already
// revealed by a competing transaction.
func (r *TicketRepo) SetRevealedTx(ctx context.Context, tx *sql.Tx, ticketID uint64, number uint16, at time.Time) error {
	const q = `UPDATE tickets SET revealed_number = ?, revealed_at = ?
		WHERE id = ? AND revealed_number = 0`
	res, err := tx.ExecContext(ctx, q, number, at.UTC().Format("2006-01-02 15:04:05"), ticketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNumberTaken
	}
	return nil
}

// ListByOwner returns all tickets bought by the given address, newest
// first. When no tickets exist an empty slice is returned.
func (r *TicketRepo) ListByOwner(ctx context.Context, owner string) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE owner_address = ? ORDER BY created_at DESC`,
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		var revealedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.LedgerID, &t.OwnerAddress, &t.ItemID, &t.RevealedNumber, &t.CreatedAt, &revealedAt); err != nil {
			return nil, err
		}
		if revealedAt.Valid {
			at := revealedAt.Time
			t.RevealedAt = &at
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
