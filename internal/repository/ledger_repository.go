package repository

import (
	"context"
	"database/sql"

	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/model"
)

// LedgerRepo provides data access to the ledgers table. A ledger row is the
// single-writer shared state of a drop: purchase and reveal both lock it
// with SELECT ... FOR UPDATE for the duration of their transaction, which
// is what serializes concurrent calls against the same drop.
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo returns a new LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *LedgerRepo) DB() *sql.DB { return r.db }

// Create inserts a new drop ledger with zeroed counters and returns its ID.
// There is exactly one initialization per drop; the caller decides drop
// uniqueness (the handler creates one ledger per POST and hands out its ID).
func (r *LedgerRepo) Create(ctx context.Context, led *engine.SaleLedger) (uint64, error) {
	const q = `INSERT INTO ledgers
		(cap, price_lamports, total_sold, total_revealed, total_raised,
		 purchase_start, purchase_end, reveal_start, reveal_end,
		 admin_address, primary_address, treasury_address)
		VALUES (?, ?, 0, 0, 0, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		led.Cap, led.PriceLamports,
		led.PurchaseWindow.Start, led.PurchaseWindow.End,
		led.RevealWindow.Start, led.RevealWindow.End,
		string(led.Admin), string(led.RecipientPrimary), string(led.RecipientSecondary),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// scanLedger maps one ledgers row onto the model struct.
func scanLedger(row *sql.Row) (*model.DropLedger, error) {
	var m model.DropLedger
	err := row.Scan(
		&m.ID, &m.Cap, &m.PriceLamports, &m.TotalSold, &m.TotalRevealed, &m.TotalRaised,
		&m.PurchaseStart, &m.PurchaseEnd, &m.RevealStart, &m.RevealEnd,
		&m.AdminAddress, &m.PrimaryAddress, &m.TreasuryAddress,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrLedgerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const ledgerColumns = `id, cap, price_lamports, total_sold, total_revealed, total_raised,
	purchase_start, purchase_end, reveal_start, reveal_end,
	admin_address, primary_address, treasury_address, created_at, updated_at`

// GetByID returns a ledger without locking it. Used by read-only status
// endpoints.
func (r *LedgerRepo) GetByID(ctx context.Context, id uint64) (*model.DropLedger, error) {
	return scanLedger(r.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE id = ?`, id))
}

// GetForUpdateTx returns a ledger row locked within the given transaction.
// Every mutating operation goes through this so that two purchases (or a
// purchase and a reveal) against the same drop cannot interleave.
func (r *LedgerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.DropLedger, error) {
	return scanLedger(tx.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE id = ? FOR UPDATE`, id))
}

// SaveStateTx writes back the mutable ledger state (counters and windows)
// inside the caller's transaction. Recipients and cap are immutable after
// creation and are deliberately not part of the update.
func (r *LedgerRepo) SaveStateTx(ctx context.Context, tx *sql.Tx, id uint64, led *engine.SaleLedger) error {
	const q = `UPDATE ledgers
		SET total_sold = ?, total_revealed = ?, total_raised = ?,
		    purchase_start = ?, purchase_end = ?, reveal_start = ?, reveal_end = ?
		WHERE id = ?`
	_, err := tx.ExecContext(ctx, q,
		led.TotalSold, led.TotalRevealed, led.TotalRaised,
		led.PurchaseWindow.Start, led.PurchaseWindow.End,
		led.RevealWindow.Start, led.RevealWindow.End,
		id,
	)
	return err
}

// ToEngine converts a stored ledger row into the engine's state object.
func ToEngine(m *model.DropLedger) *engine.SaleLedger {
	return &engine.SaleLedger{
		Cap:                m.Cap,
		PriceLamports:      m.PriceLamports,
		TotalSold:          m.TotalSold,
		TotalRevealed:      m.TotalRevealed,
		TotalRaised:        m.TotalRaised,
		PurchaseWindow:     engine.Window{Start: m.PurchaseStart, End: m.PurchaseEnd},
		RevealWindow:       engine.Window{Start: m.RevealStart, End: m.RevealEnd},
		Admin:              engine.Identity(m.AdminAddress),
		RecipientPrimary:   engine.Identity(m.PrimaryAddress),
		RecipientSecondary: engine.Identity(m.TreasuryAddress),
	}
}
