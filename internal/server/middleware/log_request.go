package middleware

import (
	"time"

	"github.com/carousell/ct-go/pkg/logger"
	"github.com/labstack/echo/v4"
)

// LogRequestConfig configures the request logging middleware.
type LogRequestConfig struct {
	Logger  *logger.Logger
	Enabled func(c echo.Context) bool
}

// LogRequest logs method, path, status and latency for every request.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("Logger is required to use LogRequest")
	}
	if config.Enabled == nil {
		config.Enabled = func(echo.Context) bool { return true }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !config.Enabled(c) {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			config.Logger.Infow("http request",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
