package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kavehz/nft-drop-ledger/internal/config"
	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/middleware"
	"github.com/kavehz/nft-drop-ledger/internal/queue"
	"github.com/kavehz/nft-drop-ledger/internal/repository"
	queue_publisher "github.com/kavehz/nft-drop-ledger/internal/service"
)

// RevealHandler assigns a ticket its permanent number. The transaction
// locks the ledger row, the shard rows and the ticket row before the
// allocator runs, so two reveals against the same drop cannot interleave.
// The unique (ledger_id, number) key on reveal_numbers is the storage-level
// backstop should that ever be violated.
type RevealHandler struct {
	DB       *sql.DB
	Ledgers  *repository.LedgerRepo
	Tickets  *repository.TicketRepo
	Accounts *repository.AccountRepo
	Mints    *repository.MintRepo
	Pools    *repository.PoolRepo
	Rdb      *redis.Client
	CacheCfg config.CacheConfig

	EngineCfg engine.Config
	Prices    engine.PriceFeed
	Clock     engine.Clock
}

type revealReq struct {
	ItemID string `json:"item_id"`
}

type revealResp struct {
	TicketID       uint64 `json:"ticket_id"`
	RevealedNumber uint16 `json:"revealed_number"`
}

// Reveal performs the one-shot number assignment for a ticket the caller
// owns. The request must name the item identity of the ticket; a mismatch
// is rejected the same way an unknown ticket is.
func (h *RevealHandler) Reveal(c echo.Context) error {
	ledgerID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ledger id"})
	}
	ticketID, err := pathID(c, "ticketID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req revealReq
	if err := c.Bind(&req); err != nil || req.ItemID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id required"})
	}
	wallet := currentWallet(c)
	if wallet == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row, err := h.Ledgers.GetForUpdateTx(ctx, tx, ledgerID)
	if err != nil {
		return dropError(c, err)
	}
	led := repository.ToEngine(row)

	pool, err := h.Pools.LoadTx(ctx, tx, ledgerID, h.EngineCfg.Allocation)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load pool failed"})
	}
	tk, err := h.Tickets.GetForUpdateTx(ctx, tx, ticketID, ledgerID)
	if err != nil {
		return dropError(c, err)
	}
	if tk.OwnerAddress != wallet {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not ticket owner"})
	}

	eng := engine.New(h.EngineCfg,
		repository.TxFundsBook{Repo: h.Accounts, Tx: tx},
		repository.TxMinter{Repo: h.Mints, Tx: tx},
		h.Prices,
	)
	engTicket := &engine.Ticket{
		Owner:          engine.Identity(tk.OwnerAddress),
		ItemID:         engine.Identity(tk.ItemID),
		RevealedNumber: tk.RevealedNumber,
	}
	now := h.Clock.Now()
	num, err := eng.Reveal(led, pool, engTicket, engine.Identity(req.ItemID), now)
	if err != nil {
		return dropError(c, err)
	}

	revealedAt := time.Unix(now, 0).UTC()
	if err := h.Pools.SaveAllocationTx(ctx, tx, ledgerID, num, pool.ShardStates()); err != nil {
		return dropError(c, err)
	}
	if err := h.Tickets.SetRevealedTx(ctx, tx, tk.ID, num, revealedAt); err != nil {
		return dropError(c, err)
	}
	if err := h.Ledgers.SaveStateTx(ctx, tx, ledgerID, led); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save ledger failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	middleware.InvalidateStatus(ctx, h.Rdb, h.CacheCfg.Prefix, c.Param("id"))
	go func() {
		pubCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = queue_publisher.PublishTicketRevealed(pubCtx, queue.TicketRevealedEvent{
			TicketID:       tk.ID,
			LedgerID:       ledgerID,
			Owner:          wallet,
			ItemID:         tk.ItemID,
			RevealedNumber: num,
			RevealedAt:     revealedAt.Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, revealResp{TicketID: tk.ID, RevealedNumber: num})
}
