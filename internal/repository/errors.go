// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without string
// matching. For example, ErrLedgerExists signals that a drop has already
// been initialized and must not be silently re-created, while
// ErrNumberTaken surfaces the database-level uniqueness backstop on
// reveal numbers.
package repository

import "errors"

// ErrLedgerNotFound is returned when the requested drop ledger does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrLedgerNotFound = errors.New("ledger not found")

// ErrLedgerExists is returned when initialization is attempted for a drop
// that already has a ledger row. Re-initializing must never reset counters,
// so the insert is rejected outright.
var ErrLedgerExists = errors.New("ledger already exists")

// ErrTicketNotFound is returned when the requested ticket does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrAccountNotFound is returned when a funding account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrNumberTaken is returned when inserting a reveal number violates the
// (ledger_id, number) unique key. Under the row-locking discipline this
// should be unreachable; seeing it means two reveals raced outside a
// transaction.
var ErrNumberTaken = errors.New("reveal number already taken")
