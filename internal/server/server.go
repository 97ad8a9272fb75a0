package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carousell/ct-go/pkg/logger"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/config"
	pkgmdw "github.com/homeinv/barcode-router/internal/server/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler *Handler,
) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = errorHandler()

	logConfig := pkgmdw.LogRequestConfig{
		Logger: logger.MustNamed("http"),
		Enabled: func(c echo.Context) bool {
			uri := c.Request().RequestURI
			return uri != "/health" && uri != "/ws"
		},
	}

	e.Use(middleware.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	e.GET("/health", handler.Health)
	e.GET("/ws", handler.Socket)

	api := e.Group("/api/v1")
	api.POST("/scan", handler.ScanBarcode)
	api.GET("/batch", handler.GetBatch)
	api.POST("/batch/process", handler.ProcessBatch)
	api.POST("/batch/clear", handler.ClearBatch)
	api.DELETE("/batch/items/:barcode", handler.RemoveItem)
	api.GET("/backends", handler.ListBackends)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

type httpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func errorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := &httpError{
			Code:    http.StatusInternalServerError,
			Message: "internal server error",
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			resp.Code = he.Code
			resp.Message = fmt.Sprint(he.Message)
		}

		if err := c.JSON(resp.Code, resp); err != nil {
			log.Errorw(c.Request().Context(), "could not write error response", "error", err)
		}
	}
}
