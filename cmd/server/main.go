package main // Entry point package

import (
	"io"
	"os"

	"github.com/google/logger"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kavehz/nft-drop-ledger/internal/config"
	"github.com/kavehz/nft-drop-ledger/internal/database"
	"github.com/kavehz/nft-drop-ledger/internal/engine"
	"github.com/kavehz/nft-drop-ledger/internal/handler"
	"github.com/kavehz/nft-drop-ledger/internal/middleware"
	"github.com/kavehz/nft-drop-ledger/internal/oracle"
	"github.com/kavehz/nft-drop-ledger/internal/queue"
	"github.com/kavehz/nft-drop-ledger/internal/repository"
	"github.com/kavehz/nft-drop-ledger/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	lg := logger.Init("drop-ledger", true, false, io.Discard)
	defer lg.Close()

	cfg := config.Load()

	// The policy knobs are fixed for the lifetime of the process; a typo in
	// the environment should stop the server, not silently pick a default.
	alloc, err := engine.ParseAllocationPolicy(cfg.AllocationPolicy)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	settle, err := engine.ParseSettlementMode(cfg.SettlementMode)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	price, err := engine.ParsePriceSource(cfg.PriceSource)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	engCfg := engine.Config{Allocation: alloc, Settlement: settle, Price: price}

	// Number 0 is the "not revealed" sentinel, so the pool must start above
	// it, and the geometry has to fit uint16.
	if cfg.PoolLow < 1 || cfg.PoolHigh <= cfg.PoolLow || cfg.PoolHigh > 65535 {
		logger.Fatalf("config: invalid pool bounds [%d, %d]", cfg.PoolLow, cfg.PoolHigh)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is not configured
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	users := repository.NewUserRepo(db)
	accounts := repository.NewAccountRepo(db)
	ledgers := repository.NewLedgerRepo(db)
	tickets := repository.NewTicketRepo(db)
	pools := repository.NewPoolRepo(db)
	mints := repository.NewMintRepo(db, repository.ItemMetadata{
		Name:   cfg.ItemName,
		Symbol: cfg.ItemSymbol,
		URI:    cfg.ItemURI,
	})

	priceKey := os.Getenv("ORACLE_PRICE_KEY")
	if priceKey == "" {
		priceKey = "drop:price:lamports"
	}
	feed := &oracle.RedisPriceFeed{Rdb: rdb, Key: priceKey}
	clock := engine.SystemClock{}

	drop := router.DropHandlers{
		Ledger: &handler.LedgerHandler{
			DB: db, Ledgers: ledgers, Pools: pools,
			Rdb: rdb, CacheCfg: cacheCfg,
			PoolLow:    uint16(cfg.PoolLow),
			PoolHigh:   uint16(cfg.PoolHigh),
			ShardWidth: uint16(cfg.ShardWidth),
			Allocation: alloc,
		},
		Purchase: &handler.PurchaseHandler{
			DB: db, Ledgers: ledgers, Tickets: tickets, Accounts: accounts, Mints: mints,
			Rdb: rdb, CacheCfg: cacheCfg,
			EngineCfg: engCfg, Prices: feed, Clock: clock,
		},
		Reveal: &handler.RevealHandler{
			DB: db, Ledgers: ledgers, Tickets: tickets, Accounts: accounts, Mints: mints, Pools: pools,
			Rdb: rdb, CacheCfg: cacheCfg,
			EngineCfg: engCfg, Prices: feed, Clock: clock,
		},
		Tickets:  &handler.TicketHandler{Tickets: tickets},
		Accounts: &handler.AccountHandler{Accounts: accounts},
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, accounts), cfg.JWTSecret)
	router.RegisterDrop(e, drop, cfg.JWTSecret,
		middleware.NewStatusCache(cacheCfg, rdb),
		middleware.NewTokenBucket(rlCfg, rdb),
	)

	go func() {
		if err := queue.StartDropConsumer(); err != nil {
			logger.Errorf("drop consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Infof("listening on %s (env=%s, alloc=%s, settle=%s, price=%s)",
		addr, cfg.Env, cfg.AllocationPolicy, cfg.SettlementMode, cfg.PriceSource)
	if err := e.Start(addr); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
