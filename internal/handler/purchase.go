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
	"github.com/kavehz/nft-drop-ledger/internal/model"
	"github.com/kavehz/nft-drop-ledger/internal/queue"
	"github.com/kavehz/nft-drop-ledger/internal/repository"
	queue_publisher "github.com/kavehz/nft-drop-ledger/internal/service"
)

// PurchaseHandler runs the purchase sequence for a drop. Each request opens
// one transaction, locks the ledger row, and binds the engine's funds and
// mint collaborators to that transaction, so the settlement legs, the mint
// and the counter bumps commit or roll back as a unit. Concurrent buyers
// across replicas serialize on the ledger row lock.
type PurchaseHandler struct {
	DB       *sql.DB
	Ledgers  *repository.LedgerRepo
	Tickets  *repository.TicketRepo
	Accounts *repository.AccountRepo
	Mints    *repository.MintRepo
	Rdb      *redis.Client
	CacheCfg config.CacheConfig

	EngineCfg engine.Config
	Prices    engine.PriceFeed
	Clock     engine.Clock
}

type purchaseReq struct {
	Primary  string `json:"primary"`
	Treasury string `json:"treasury"`
}

type purchaseResp struct {
	TicketID       uint64 `json:"ticket_id"`
	ItemID         string `json:"item_id"`
	AmountLamports uint64 `json:"amount_lamports"`
	TotalSold      uint64 `json:"total_sold"`
}

// Purchase buys one ticket from the drop. The caller re-states the
// recipient addresses; a mismatch with the ledger's recorded recipients
// rejects the purchase before any money moves.
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ledger id"})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
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

	row, err := h.Ledgers.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return dropError(c, err)
	}
	led := repository.ToEngine(row)

	eng := engine.New(h.EngineCfg,
		repository.TxFundsBook{Repo: h.Accounts, Tx: tx},
		repository.TxMinter{Repo: h.Mints, Tx: tx},
		h.Prices,
	)
	now := h.Clock.Now()
	tk, err := eng.Purchase(ctx, led, engine.Identity(wallet), engine.Recipients{
		Primary:   engine.Identity(req.Primary),
		Secondary: engine.Identity(req.Treasury),
	}, now)
	if err != nil {
		return dropError(c, err)
	}

	ticket := &model.Ticket{
		LedgerID:     id,
		OwnerAddress: string(tk.Owner),
		ItemID:       string(tk.ItemID),
	}
	if err := h.Tickets.CreateTx(ctx, tx, ticket); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save ticket failed"})
	}
	if err := h.Ledgers.SaveStateTx(ctx, tx, id, led); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save ledger failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	amount := led.TotalRaised - row.TotalRaised
	middleware.InvalidateStatus(ctx, h.Rdb, h.CacheCfg.Prefix, c.Param("id"))
	go func() {
		pubCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = queue_publisher.PublishTicketPurchased(pubCtx, queue.TicketPurchasedEvent{
			TicketID:       ticket.ID,
			LedgerID:       id,
			Buyer:          wallet,
			ItemID:         ticket.ItemID,
			AmountLamports: amount,
			TotalSold:      led.TotalSold,
			PurchasedAt:    time.Unix(now, 0).UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, purchaseResp{
		TicketID:       ticket.ID,
		ItemID:         ticket.ItemID,
		AmountLamports: amount,
		TotalSold:      led.TotalSold,
	})
}
