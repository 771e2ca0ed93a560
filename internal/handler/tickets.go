package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/nft-drop-ledger/internal/repository"
)

// TicketHandler serves read-only ticket views for the authenticated buyer.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

type ticketView struct {
	ID             uint64 `json:"id"`
	LedgerID       uint64 `json:"ledger_id"`
	ItemID         string `json:"item_id"`
	RevealedNumber uint16 `json:"revealed_number"` // 0 = not yet revealed
	CreatedAt      string `json:"created_at"`
	RevealedAt     string `json:"revealed_at,omitempty"`
}

// ListMine returns every ticket owned by the caller's wallet, newest first.
func (h *TicketHandler) ListMine(c echo.Context) error {
	wallet := currentWallet(c)
	if wallet == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Tickets.ListByOwner(ctx, wallet)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]ticketView, 0, len(list))
	for _, t := range list {
		v := ticketView{
			ID:             t.ID,
			LedgerID:       t.LedgerID,
			ItemID:         t.ItemID,
			RevealedNumber: t.RevealedNumber,
			CreatedAt:      t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if t.RevealedAt != nil {
			v.RevealedAt = t.RevealedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": out})
}
