package cache

import (
	"strconv"
	"time"

	"yatube/internal/middleware"

	"github.com/gofiber/fiber/v2"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/redis/go-redis/v9"
)

// PageKeyPrefix namespaces rendered pages in Redis.
const PageKeyPrefix = "yatube:page:"

// PageCache returns a middleware that serves a rendered page snapshot for ttl.
// Entries are keyed by the full URL and the caller, since pages carry the
// caller's navigation. Writes never invalidate a snapshot; it expires with ttl.
// With a nil client snapshots are kept in process memory; a zero ttl disables caching.
func PageCache(client *redis.Client, ttl time.Duration) fiber.Handler {
	if ttl <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	cfg := fibercache.Config{
		Expiration:   ttl,
		CacheHeader:  "X-Cache",
		KeyGenerator: PageKey,
		Next: func(c *fiber.Ctx) bool {
			return c.Response().StatusCode() != fiber.StatusOK
		},
	}
	if client != nil {
		cfg.Storage = NewRedisStorage(client, PageKeyPrefix)
	}
	return fibercache.New(cfg)
}

// PageKey identifies a cached page: URL plus caller identity.
func PageKey(c *fiber.Ctx) string {
	caller := "anon"
	if u := middleware.CurrentUser(c); u != nil {
		caller = "u" + strconv.FormatUint(uint64(u.ID), 10)
	}
	return c.OriginalURL() + "|" + caller
}
