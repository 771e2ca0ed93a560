package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/repository"
)

func newTestCtx(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestDropError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{engine.ErrInvalidTimePeriods, http.StatusBadRequest},
		{engine.ErrInvalidAdminSolAccount, http.StatusBadRequest},
		{engine.ErrInvalidTreasuryAccount, http.StatusBadRequest},
		{engine.ErrNotAdmin, http.StatusForbidden},
		{engine.ErrInsufficientFunds, http.StatusPaymentRequired},
		{engine.ErrNftNotFound, http.StatusNotFound},
		{repository.ErrLedgerNotFound, http.StatusNotFound},
		{repository.ErrTicketNotFound, http.StatusNotFound},
		{repository.ErrAccountNotFound, http.StatusNotFound},
		{engine.ErrNotInPurchasePeriod, http.StatusConflict},
		{engine.ErrNotInRevealPeriod, http.StatusConflict},
		{engine.ErrNftLimitReached, http.StatusConflict},
		{engine.ErrNftAlreadyRevealed, http.StatusConflict},
		{engine.ErrNoAvailableNumbers, http.StatusConflict},
		{repository.ErrNumberTaken, http.StatusConflict},
	}
	for _, tc := range cases {
		c, rec := newTestCtx(t)
		require.NoError(t, dropError(c, tc.err))
		require.Equal(t, tc.want, rec.Code, "error %v", tc.err)
		require.Contains(t, rec.Body.String(), tc.err.Error())
	}
}

func TestDropError_UnknownErrorHidesDetail(t *testing.T) {
	c, rec := newTestCtx(t)
	require.NoError(t, dropError(c, errors.New("dsn: secret detail")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret detail")
}

func TestCurrentWallet(t *testing.T) {
	c, _ := newTestCtx(t)
	require.Equal(t, "", currentWallet(c))
	c.Set("wallet", "abc-123")
	require.Equal(t, "abc-123", currentWallet(c))
}

func TestPathID(t *testing.T) {
	c, _ := newTestCtx(t)
	c.SetParamNames("id")
	c.SetParamValues("77")
	id, err := pathID(c, "id")
	require.NoError(t, err)
	require.EqualValues(t, 77, id)

	c.SetParamValues("nope")
	_, err = pathID(c, "id")
	require.Error(t, err)
}
