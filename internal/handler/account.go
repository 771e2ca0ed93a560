package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/nft-drop-ledger/internal/repository"
)

// AccountHandler serves funding-account operations: balance reads for the
// caller and the admin-only faucet used to credit buyers on test stands.
type AccountHandler struct {
	Accounts *repository.AccountRepo
}

type creditReq struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// MyBalance returns the caller's funding-account balance.
func (h *AccountHandler) MyBalance(c echo.Context) error {
	wallet := currentWallet(c)
	if wallet == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Accounts.Get(ctx, wallet)
	if err != nil {
		return dropError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"address":          acc.Address,
		"balance_lamports": acc.Balance,
	})
}

// Credit adds lamports to an account. ADMIN only.
func (h *AccountHandler) Credit(c echo.Context) error {
	var req creditReq
	if err := c.Bind(&req); err != nil || req.Address == "" || req.Amount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address/amount required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.CreateIfAbsent(ctx, req.Address); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}
	if err := h.Accounts.Credit(ctx, req.Address, req.Amount); err != nil {
		return dropError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"address": req.Address, "credited": req.Amount})
}
