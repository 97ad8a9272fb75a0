package app

import (
	"github.com/carousell/ct-go/pkg/logger"
	"github.com/homeinv/barcode-router/internal/catalog"
	"github.com/homeinv/barcode-router/internal/config"
	"github.com/homeinv/barcode-router/internal/kafka"
	"github.com/homeinv/barcode-router/internal/repo/mongodb"
	"github.com/homeinv/barcode-router/internal/server"
	"github.com/homeinv/barcode-router/internal/socket"
	"github.com/homeinv/barcode-router/internal/usecase"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,
			newClassifier,
			newRegistry,
			newNotifier,

			mongodb.NewBatchRepository,

			catalog.NewClient,
			catalog.NewService,

			newBatchStore,
			socket.NewHub,

			usecase.NewDispatcher,
			kafka.NewScanEventHandler,

			server.NewHandler,
		),
		fx.Supply(conf),
		fx.Invoke(loadBatchState),
		fx.Invoke(probeBackends),
		fx.Invoke(funcs...),
	)
}
