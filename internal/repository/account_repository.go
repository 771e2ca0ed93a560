package repository

import (
	"context"
	"database/sql"

	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/model"
)

// AccountRepo provides data access to the accounts table, which plays the
// role of the lamport funds book. All balance movement happens through
// TransferTx inside the purchase transaction, so the two settlement legs
// and the ticket insert commit or roll back as one unit.
type AccountRepo struct {
	db *sql.DB
}

// NewAccountRepo returns a new AccountRepo bound to the given database.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// Get returns an account by address.
func (r *AccountRepo) Get(ctx context.Context, address string) (*model.Account, error) {
	var a model.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT address, balance_lamports, created_at, updated_at FROM accounts WHERE address = ?`,
		address).Scan(&a.Address, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateIfAbsent inserts an account with a zero balance unless it already
// exists. Registration calls this for each new user's wallet.
func (r *AccountRepo) CreateIfAbsent(ctx context.Context, address string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO accounts (address, balance_lamports) VALUES (?, 0)`, address)
	return err
}

// Credit adds lamports to an account. Used by the admin faucet endpoint to
// fund buyer accounts; the drop core itself never mints money.
func (r *AccountRepo) Credit(ctx context.Context, address string, amount uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance_lamports = balance_lamports + ? WHERE address = ?`,
		amount, address)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// BalanceTx reads an account balance with the row locked, so the balance
// the engine validates is the balance the transfers move.
func (r *AccountRepo) BalanceTx(ctx context.Context, tx *sql.Tx, address string) (uint64, error) {
	var balance uint64
	err := tx.QueryRowContext(ctx,
		`SELECT balance_lamports FROM accounts WHERE address = ? FOR UPDATE`,
		address).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// TransferTx atomically moves amount from one account to another within
// the caller's transaction. The debit guards against overdraft at the SQL
// level; a zero row count means the payer's balance no longer covers the
// amount and the transfer fails with engine.ErrInsufficientFunds.
func (r *AccountRepo) TransferTx(ctx context.Context, tx *sql.Tx, from, to string, amount uint64) error {
	if amount == 0 {
		// A zero-lamport move would not change any row, and the driver
		// reports rows changed, not rows matched.
		return nil
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_lamports = balance_lamports - ?
		 WHERE address = ? AND balance_lamports >= ?`,
		amount, from, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrInsufficientFunds
	}
	res, err = tx.ExecContext(ctx,
		`UPDATE accounts SET balance_lamports = balance_lamports + ? WHERE address = ?`,
		amount, to)
	if err != nil {
		return err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// TxFundsBook adapts an AccountRepo bound to one transaction into the
// engine's FundsBook collaborator. Because every movement runs on the same
// transaction as the ledger and ticket writes, the engine's compensation
// logic is a safety net on top of a rollback that already undoes
// everything.
type TxFundsBook struct {
	Repo *AccountRepo
	Tx   *sql.Tx
}

// Balance implements engine.FundsBook.
func (b TxFundsBook) Balance(ctx context.Context, id engine.Identity) (uint64, error) {
	return b.Repo.BalanceTx(ctx, b.Tx, string(id))
}

// Transfer implements engine.FundsBook.
func (b TxFundsBook) Transfer(ctx context.Context, from, to engine.Identity, amount uint64) error {
	return b.Repo.TransferTx(ctx, b.Tx, string(from), string(to), amount)
}
