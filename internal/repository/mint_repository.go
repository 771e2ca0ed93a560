package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/model"
)

// ItemMetadata is the descriptive metadata attached to every minted unit.
// The values are fixed per deployment and come from configuration.
type ItemMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// MintRepo persists minted items. It stands in for the external minting
// capability: one row per unit, carrying owner and metadata provenance.
type MintRepo struct {
	db   *sql.DB
	meta ItemMetadata
}

// NewMintRepo returns a new MintRepo bound to the given database and
// deployment metadata.
func NewMintRepo(db *sql.DB, meta ItemMetadata) *MintRepo { return &MintRepo{db: db, meta: meta} }

// CreateTx mints exactly one unit to the owner within the caller's
// transaction and returns the unit's identity.
func (r *MintRepo) CreateTx(ctx context.Context, tx *sql.Tx, owner string) (string, error) {
	itemID := uuid.NewString()
	const q = `INSERT INTO minted_items (item_id, owner_address, name, symbol, uri)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, itemID, owner, r.meta.Name, r.meta.Symbol, r.meta.URI); err != nil {
		return "", err
	}
	return itemID, nil
}

// Get returns a minted item by identity.
func (r *MintRepo) Get(ctx context.Context, itemID string) (*model.MintedItem, error) {
	var m model.MintedItem
	err := r.db.QueryRowContext(ctx,
		`SELECT item_id, owner_address, name, symbol, uri, created_at FROM minted_items WHERE item_id = ?`,
		itemID).Scan(&m.ItemID, &m.OwnerAddress, &m.Name, &m.Symbol, &m.URI, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// TxMinter adapts a MintRepo bound to one transaction into the engine's
// Minter collaborator. A failed insert aborts the purchase; the shared
// transaction guarantees no unit survives a failed purchase.
type TxMinter struct {
	Repo *MintRepo
	Tx   *sql.Tx
}

// Mint implements engine.Minter.
func (m TxMinter) Mint(ctx context.Context, owner engine.Identity) (engine.Identity, error) {
	itemID, err := m.Repo.CreateTx(ctx, m.Tx, string(owner))
	if err != nil {
		return "", err
	}
	return engine.Identity(itemID), nil
}
