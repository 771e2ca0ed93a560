package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/model"
)

// PoolRepo persists a drop's reveal-number pool: the shard layout with its
// scan cursors in pool_shards, and every assigned number in reveal_numbers.
// The unique key on (ledger_id, number) is the storage-level backstop for
// the pool's distinctness invariant.
type PoolRepo struct {
	db *sql.DB
}

// NewPoolRepo returns a new PoolRepo bound to the given database.
func NewPoolRepo(db *sql.DB) *PoolRepo { return &PoolRepo{db: db} }

// CreateShards records the shard layout of a freshly built pool in a
// single insert. Called once, right after the ledger row is created.
func (r *PoolRepo) CreateShards(ctx context.Context, ledgerID uint64, states []engine.ShardState) error {
	if len(states) == 0 {
		return nil
	}
	query := `INSERT INTO pool_shards (ledger_id, shard_id, start, width, cursor) VALUES `
	args := make([]interface{}, 0, len(states)*5)
	for i, s := range states {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, ledgerID, s.ID, s.Start, s.Width, s.Cursor)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// LoadTx rebuilds the in-memory pool for a ledger inside the caller's
// transaction, locking the shard rows. The reveal transaction goes through
// here so two reveals against the same drop serialize on the pool as well
// as the ledger.
func (r *PoolRepo) LoadTx(ctx context.Context, tx *sql.Tx, ledgerID uint64, policy engine.AllocationPolicy) (*engine.Pool, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT shard_id, start, width, cursor FROM pool_shards
		 WHERE ledger_id = ? ORDER BY shard_id FOR UPDATE`, ledgerID)
	if err != nil {
		return nil, err
	}
	shards := make([]model.PoolShard, 0)
	for rows.Next() {
		var s model.PoolShard
		if err := rows.Scan(&s.ShardID, &s.Start, &s.Width, &s.Cursor); err != nil {
			rows.Close()
			return nil, err
		}
		shards = append(shards, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, ErrLedgerNotFound
	}

	low := shards[0].Start
	last := shards[len(shards)-1]
	high := last.Start + last.Width - 1
	pool := engine.NewPool(low, high, shards[0].Width, policy)
	for _, s := range shards {
		pool.RestoreCursor(s.ShardID, s.Cursor)
	}

	nrows, err := tx.QueryContext(ctx,
		`SELECT number FROM reveal_numbers WHERE ledger_id = ?`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer nrows.Close()
	for nrows.Next() {
		var n uint16
		if err := nrows.Scan(&n); err != nil {
			return nil, err
		}
		pool.MarkUsed(n)
	}
	if err := nrows.Err(); err != nil {
		return nil, err
	}
	return pool, nil
}

// SaveAllocationTx records a freshly assigned number and writes back the
// shard cursors, all inside the caller's transaction. A duplicate-key
// violation on the number maps to ErrNumberTaken.
func (r *PoolRepo) SaveAllocationTx(ctx context.Context, tx *sql.Tx, ledgerID uint64, number uint16, states []engine.ShardState) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reveal_numbers (ledger_id, number) VALUES (?, ?)`,
		ledgerID, number); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrNumberTaken
		}
		return err
	}
	for _, s := range states {
		if _, err := tx.ExecContext(ctx,
			`UPDATE pool_shards SET cursor = ? WHERE ledger_id = ? AND shard_id = ? AND cursor < ?`,
			s.Cursor, ledgerID, s.ID, s.Cursor); err != nil {
			return err
		}
	}
	return nil
}
