package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		event := log.Info()
		if status >= fiber.StatusInternalServerError {
			event = log.Error()
		}
		event = event.
			Str("method", c.Method()).
			Str("url", c.OriginalURL()).
			Int("status", status).
			Dur("latency", time.Since(start))
		if id, idErr := UserID(c); idErr == nil {
			event = event.Int("user_id", id)
		}
		event.Msg("request")
		return err
	}
}
