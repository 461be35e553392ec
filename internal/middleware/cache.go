package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/peerauto/car-rental-api/internal/config"
)

// bodyRecorder tees the response body into a buffer while forwarding
// it to the client, so a successful response can be stored in Redis
// after the handler runs.
type bodyRecorder struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if w.limit <= 0 || w.buf.Len()+len(b) <= w.limit {
        w.buf.Write(b)
    } else {
        // Over the size limit: stop recording, the entry won't be cached.
        w.buf.Reset()
        w.limit = -1
    }
    return w.ResponseWriter.Write(b)
}

// ResponseCache caches successful GET responses of the routes it
// wraps, keyed by route and raw query.  Intended for the public
// search and listing endpoints where a short TTL of staleness is
// acceptable.  Only 200 responses with a JSON body under the size cap
// are stored.  With caching disabled or Redis down, requests pass
// through untouched.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            key := cacheKey(cfg.Prefix, c)
            ctx := c.Request().Context()

            if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
                c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
                c.Response().Header().Set("X-Cache", "HIT")
                c.Response().WriteHeader(http.StatusOK)
                _, werr := c.Response().Write(body)
                return werr
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if rec.status == http.StatusOK && rec.buf.Len() > 0 {
                // Detached context: the request may already be done.
                _ = rdb.SetEx(context.Background(), key, rec.buf.Bytes(), cfg.TTL).Err()
            }
            return nil
        }
    }
}

func cacheKey(prefix string, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
    return prefix + ":" + hex.EncodeToString(sum[:])
}
