package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/kavehz/nft-drop-ledger/internal/utils"
)

func run(t *testing.T, mw echo.MiddlewareFunc, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "through")
	})
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuth_MissingToken(t *testing.T) {
	rec := run(t, JWTAuth("s"), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	rec := run(t, JWTAuth("s"), func(c echo.Context) {
		c.Request().Header.Set("Authorization", "Bearer not-a-jwt")
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_ValidTokenInjectsClaims(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 7, "BUYER", "wallet-7", 5)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRole, gotWallet any
	h := JWTAuth("secret")(func(c echo.Context) error {
		gotRole = c.Get("role")
		gotWallet = c.Get("wallet")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "BUYER", gotRole)
	require.Equal(t, "wallet-7", gotWallet)
}

func TestJWTAuth_WrongSecretRejected(t *testing.T) {
	at, err := utils.NewAccessToken("secret-a", 7, "BUYER", "w", 5)
	require.NoError(t, err)
	rec := run(t, JWTAuth("secret-b"), func(c echo.Context) {
		c.Request().Header.Set("Authorization", "Bearer "+at.Token)
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	rec := run(t, RequireRole("ADMIN"), func(c echo.Context) {
		c.Set("role", "ADMIN")
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = run(t, RequireRole("ADMIN"), func(c echo.Context) {
		c.Set("role", "BUYER")
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// missing role entirely
	rec = run(t, RequireRole("ADMIN", "BUYER"), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStatusCacheKey(t *testing.T) {
	require.Equal(t, "drop:status:42", StatusCacheKey("drop", "42"))
}
