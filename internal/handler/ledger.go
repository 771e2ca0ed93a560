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
	"github.com/kavehz/nft-drop-ledger/internal/repository"
)

// LedgerHandler serves drop creation, window adjustment and status reads.
type LedgerHandler struct {
	DB       *sql.DB
	Ledgers  *repository.LedgerRepo
	Pools    *repository.PoolRepo
	Rdb      *redis.Client
	CacheCfg config.CacheConfig

	// Pool geometry and allocation policy fixed at startup; every drop
	// created by this instance shares them.
	PoolLow    uint16
	PoolHigh   uint16
	ShardWidth uint16
	Allocation engine.AllocationPolicy
}

// ----- DTOs -----

type createLedgerReq struct {
	Cap           uint64 `json:"cap"`
	PriceLamports uint64 `json:"price_lamports"`
	PurchaseStart int64  `json:"purchase_start"`
	PurchaseEnd   int64  `json:"purchase_end"`
	RevealStart   int64  `json:"reveal_start"`
	RevealEnd     int64  `json:"reveal_end"`
	Primary       string `json:"primary"`
	Treasury      string `json:"treasury"`
}

type setPeriodsReq struct {
	PurchaseStart int64 `json:"purchase_start"`
	PurchaseEnd   int64 `json:"purchase_end"`
	RevealStart   int64 `json:"reveal_start"`
	RevealEnd     int64 `json:"reveal_end"`
}

type ledgerStatusResp struct {
	ID            uint64 `json:"id"`
	Cap           uint64 `json:"cap"`
	PriceLamports uint64 `json:"price_lamports"`
	TotalSold     uint64 `json:"total_sold"`
	TotalRevealed int64  `json:"total_revealed"`
	TotalRaised   uint64 `json:"total_raised"`
	Remaining     uint64 `json:"remaining"`
	PurchaseStart int64  `json:"purchase_start"`
	PurchaseEnd   int64  `json:"purchase_end"`
	RevealStart   int64  `json:"reveal_start"`
	RevealEnd     int64  `json:"reveal_end"`
}

// Create initializes a drop: the ledger row plus the full set of pool
// shards. The caller's wallet becomes the drop admin.
func (h *LedgerHandler) Create(c echo.Context) error {
	var req createLedgerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Cap == 0 || req.Primary == "" || req.Treasury == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cap/primary/treasury required"})
	}

	led, err := engine.NewSaleLedger(
		req.Cap, req.PriceLamports,
		engine.Window{Start: req.PurchaseStart, End: req.PurchaseEnd},
		engine.Window{Start: req.RevealStart, End: req.RevealEnd},
		engine.Identity(currentWallet(c)),
		engine.Identity(req.Primary),
		engine.Identity(req.Treasury),
	)
	if err != nil {
		return dropError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Ledgers.Create(ctx, led)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ledger failed"})
	}
	pool := engine.NewPool(h.PoolLow, h.PoolHigh, h.ShardWidth, h.Allocation)
	if err := h.Pools.CreateShards(ctx, id, pool.ShardStates()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create pool failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":        id,
		"cap":       led.Cap,
		"pool_low":  pool.Low(),
		"pool_high": pool.High(),
	})
}

// SetPeriods moves the purchase/reveal windows of an existing drop. Only the
// drop admin may call it; the new windows must satisfy the same ordering
// rules as at creation. The ledger row stays locked for the duration so a
// concurrent purchase observes either the old windows or the new ones,
// never a half-written pair.
func (h *LedgerHandler) SetPeriods(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ledger id"})
	}
	var req setPeriodsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
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
	if err := led.SetPeriods(
		engine.Identity(currentWallet(c)),
		engine.Window{Start: req.PurchaseStart, End: req.PurchaseEnd},
		engine.Window{Start: req.RevealStart, End: req.RevealEnd},
	); err != nil {
		return dropError(c, err)
	}
	if err := h.Ledgers.SaveStateTx(ctx, tx, id, led); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	middleware.InvalidateStatus(ctx, h.Rdb, h.CacheCfg.Prefix, c.Param("id"))
	return c.JSON(http.StatusOK, echo.Map{
		"purchase_start": led.PurchaseWindow.Start,
		"purchase_end":   led.PurchaseWindow.End,
		"reveal_start":   led.RevealWindow.Start,
		"reveal_end":     led.RevealWindow.End,
	})
}

// Status returns the public counters of a drop. The route is wrapped by the
// Redis status cache, so most reads during a busy mint never reach MySQL.
func (h *LedgerHandler) Status(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ledger id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Ledgers.GetByID(ctx, id)
	if err != nil {
		return dropError(c, err)
	}
	return c.JSON(http.StatusOK, ledgerStatusResp{
		ID:            row.ID,
		Cap:           row.Cap,
		PriceLamports: row.PriceLamports,
		TotalSold:     row.TotalSold,
		TotalRevealed: row.TotalRevealed,
		TotalRaised:   row.TotalRaised,
		Remaining:     row.Cap - row.TotalSold,
		PurchaseStart: row.PurchaseStart,
		PurchaseEnd:   row.PurchaseEnd,
		RevealStart:   row.RevealStart,
		RevealEnd:     row.RevealEnd,
	})
}
