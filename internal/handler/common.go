package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/repository"
)

// currentWallet returns the authenticated caller's funding-account address
// stored in the context by the JWT middleware.
func currentWallet(c echo.Context) string {
	if v := c.Get("wallet"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// dropError maps engine and repository errors onto HTTP responses. Unknown
// errors become a 500 without leaking internals to the client.
func dropError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidTimePeriods),
		errors.Is(err, engine.ErrInvalidAdminSolAccount),
		errors.Is(err, engine.ErrInvalidTreasuryAccount):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, engine.ErrNftNotFound),
		errors.Is(err, repository.ErrLedgerNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrNotInPurchasePeriod),
		errors.Is(err, engine.ErrNotInRevealPeriod),
		errors.Is(err, engine.ErrNftLimitReached),
		errors.Is(err, engine.ErrNftAlreadyRevealed),
		errors.Is(err, engine.ErrNoAvailableNumbers),
		errors.Is(err, repository.ErrNumberTaken):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
