package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/metrics"
)

// RequestLogger logs one line per request and exposes the request id (set
// by echo's RequestID middleware) to logging.Ctx. It also records the
// HTTP request metrics.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}
			if rid != "" {
				c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), rid)))
			}

			metrics.APIRequestsInFlight.Inc()
			start := time.Now()
			err := next(c)
			if err != nil {
				// render now so the logged status is the one the client sees
				c.Error(err)
			}
			elapsed := time.Since(start)
			metrics.APIRequestsInFlight.Dec()

			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordAPIRequest(req.Method, route, status, elapsed)

			ev := logging.Info()
			if status >= 500 {
				ev = logging.Error().Err(err)
			}
			ev.Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", elapsed).
				Str("ip", c.RealIP()).
				Uint64("user_id", UserID(c)).
				Msg("request")
			return nil
		}
	}
}
