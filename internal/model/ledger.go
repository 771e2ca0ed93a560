package model

import "time"

// DropLedger is the per-drop global state row. One row exists per drop and
// every purchase and reveal mutates it, so writers lock the row for the
// duration of their transaction.
//
// Fields:
//  ID                 – primary key identifier.
//  Cap                – maximum number of tickets that may be sold.
//  PriceLamports      – fixed ticket price in lamports.
//  TotalSold          – tickets sold so far; never exceeds Cap.
//  TotalRevealed      – tickets holding a reveal number; never exceeds TotalSold.
//  TotalRaised        – sum of all successful purchase payments.
//  PurchaseStart/End  – Unix seconds bounding the purchase window.
//  RevealStart/End    – Unix seconds bounding the reveal window.
//  AdminAddress       – account allowed to adjust windows.
//  PrimaryAddress     – recipient of the 75% settlement share.
//  TreasuryAddress    – recipient of the remainder.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type DropLedger struct {
	ID              uint64    // ledgers.id
	Cap             uint64    // ledgers.cap
	PriceLamports   uint64    // ledgers.price_lamports
	TotalSold       uint64    // ledgers.total_sold
	TotalRevealed   int64     // ledgers.total_revealed
	TotalRaised     uint64    // ledgers.total_raised
	PurchaseStart   int64     // ledgers.purchase_start
	PurchaseEnd     int64     // ledgers.purchase_end
	RevealStart     int64     // ledgers.reveal_start
	RevealEnd       int64     // ledgers.reveal_end
	AdminAddress    string    // ledgers.admin_address
	PrimaryAddress  string    // ledgers.primary_address
	TreasuryAddress string    // ledgers.treasury_address
	CreatedAt       time.Time // ledgers.created_at
	UpdatedAt       time.Time // ledgers.updated_at
}

// PoolShard is one fixed-width slice of a drop's reveal-number pool. Each
// shard keeps its own scan cursor so a reveal only ever locks and scans one
// shard's worth of numbers.
//
// Fields:
//  ID        – primary key identifier.
//  LedgerID  – drop the shard belongs to.
//  ShardID   – zero-based index of the shard within the pool.
//  Start     – first assignable number in the shard.
//  Width     – number of slots in the shard.
//  Cursor    – next fallback-scan candidate; monotonically non-decreasing.
type PoolShard struct {
	ID       uint64 // pool_shards.id
	LedgerID uint64 // pool_shards.ledger_id
	ShardID  int    // pool_shards.shard_id
	Start    uint16 // pool_shards.start
	Width    uint16 // pool_shards.width
	Cursor   uint16 // pool_shards.cursor
}
