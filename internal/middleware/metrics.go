package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/metrics"
)

// Metrics records request counts and latency labelled by route pattern, so
// path parameters do not explode label cardinality.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		path := c.Route().Path
		if path == "/" && c.Path() != "/" {
			path = "unmatched"
		}

		m.Request(c.Method(), path, strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
