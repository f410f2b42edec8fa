package middleware

import (
	"strings"
	"sync"

	"yatube/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector. The collectors are
// registered on the default registry once; later calls share them.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return p.Middleware(c)
	}
}

// PageCacheMetrics counts page cache outcomes from the X-Cache response header.
func PageCacheMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if status := c.GetRespHeader("X-Cache"); status != "" {
			observability.PageCacheRequests.WithLabelValues(strings.ToLower(status)).Inc()
		}
		return err
	}
}
