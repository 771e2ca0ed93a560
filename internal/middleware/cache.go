package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kavehz/nft-drop-ledger/internal/config"
)

// captureWriter captures the response body while forwarding it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// StatusCacheKey builds the Redis key holding the cached status response for
// one drop ledger. Handlers use the same key to invalidate after a purchase
// or reveal mutates the counters.
func StatusCacheKey(prefix, ledgerID string) string {
	return prefix + ":status:" + ledgerID
}

// InvalidateStatus drops the cached status body for a ledger. A failed DEL is
// harmless: the stale entry expires within the cache TTL anyway.
func InvalidateStatus(ctx context.Context, rdb *redis.Client, prefix, ledgerID string) {
	if rdb == nil {
		return
	}
	_ = rdb.Del(ctx, StatusCacheKey(prefix, ledgerID)).Err()
}

// NewStatusCache caches successful drop-status responses in Redis keyed by
// ledger ID. The body is stored verbatim so clients see identical JSON on a
// hit. Only 200 responses are cached; errors always go to the database.
func NewStatusCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := StatusCacheKey(cfg.Prefix, c.Param("id"))

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil && len(body) > 0 {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK {
				_ = rdb.SetEx(context.Background(), key, cw.buf.Bytes(), cfg.TTL).Err()
			}
			return nil
		}
	}
}
