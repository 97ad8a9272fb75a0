package app

import (
	"context"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/backends"
	"github.com/homeinv/barcode-router/internal/backends/grocy"
	"github.com/homeinv/barcode-router/internal/batch"
	"github.com/homeinv/barcode-router/internal/classifier"
	"github.com/homeinv/barcode-router/internal/config"
	"github.com/homeinv/barcode-router/internal/repo/mongodb"
	"github.com/homeinv/barcode-router/internal/socket"
	"github.com/homeinv/barcode-router/internal/usecase"
	"go.uber.org/fx"
)

const mongoConnectTimeout = 10 * time.Second

func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	db, err := mongodb.NewConnection(ctx, cfg.Database.URI, cfg.Database.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})
	return db, nil
}

func newClassifier(cfg *config.Config) *classifier.Classifier {
	return classifier.New(cfg.DefaultBackend)
}

// newRegistry builds the backend registry from configuration. Only
// configured backends are registered; the classifier may still emit ids of
// unconfigured ones, which the dispatcher reports per operation.
func newRegistry(lc fx.Lifecycle, cfg *config.Config) (*backends.Registry, error) {
	registry := backends.NewRegistry()

	if cfg.Grocy.URL != "" {
		if err := registry.Register("grocy", grocy.New(cfg.Grocy)); err != nil {
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return registry.Close()
		},
	})
	return registry, nil
}

func newBatchStore(repo mongodb.BatchRepository, cfg *config.Config) *batch.Store {
	return batch.NewStore(repo, cfg)
}

func newNotifier(hub *socket.Hub) usecase.Notifier {
	return hub
}

// loadBatchState restores the persisted batch before any command runs.
func loadBatchState(lc fx.Lifecycle, store *batch.Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			store.Load(ctx)
			return nil
		},
	})
}

// probeBackends validates each configured backend connection at startup. A
// failing probe is reported but does not prevent the service from starting.
func probeBackends(lc fx.Lifecycle, registry *backends.Registry) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, id := range registry.IDs() {
				backend, _ := registry.Get(id)
				if err := backend.Ping(ctx); err != nil {
					log.Warnw(ctx, "Backend connection probe failed", "backend", id, "error", err)
					continue
				}
				log.Infof(ctx, "Backend %s connection validated", id)
			}
			return nil
		},
	})
}
