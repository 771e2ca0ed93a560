package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/kavehz/nft-drop-ledger/internal/handler"
	"github.com/kavehz/nft-drop-ledger/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers or monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and the protected /v1/me
// endpoint. Unauthenticated operations live under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "BUYER"))
	auth.GET("/me", a.Me)
}

// DropHandlers bundles the handlers wired under the drop routes.
type DropHandlers struct {
	Ledger   *handler.LedgerHandler
	Purchase *handler.PurchaseHandler
	Reveal   *handler.RevealHandler
	Tickets  *handler.TicketHandler
	Accounts *handler.AccountHandler
}

// RegisterDrop registers the drop ledger API.
//
// Reads of a drop's status are public and sit behind the Redis status
// cache. Everything that moves money or mutates a drop requires a valid
// token; creation, window changes and the faucet additionally require the
// ADMIN role. The purchase route alone carries the per-wallet rate
// limiter: it is the only endpoint bots hammer when a window opens.
func RegisterDrop(e *echo.Echo, h DropHandlers, jwtSecret string, statusCache, rateLimit echo.MiddlewareFunc) {
	// Public status read.
	e.GET("/v1/ledgers/:id", h.Ledger.Status, statusCache)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "BUYER"))

	auth.POST("/ledgers/:id/purchase", h.Purchase.Purchase, rateLimit)
	auth.POST("/ledgers/:id/tickets/:ticketID/reveal", h.Reveal.Reveal)
	auth.GET("/me/tickets", h.Tickets.ListMine)
	auth.GET("/me/account", h.Accounts.MyBalance)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))

	admin.POST("/ledgers", h.Ledger.Create)
	admin.PATCH("/ledgers/:id/periods", h.Ledger.SetPeriods)
	admin.POST("/accounts/credit", h.Accounts.Credit)
}
