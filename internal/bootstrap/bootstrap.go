// Package bootstrap arma el servicio del kardex con los adaptadores indicados por la configuración.
// Lo comparten el servidor HTTP y la CLI de operación.
package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/application/usecase"
	"github.com/jhoicas/kardex/internal/domain/repository"
	"github.com/jhoicas/kardex/internal/infrastructure/memory"
	"github.com/jhoicas/kardex/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/kardex/internal/infrastructure/redis"
	"github.com/jhoicas/kardex/pkg/config"
	"github.com/jhoicas/kardex/pkg/logger"
)

// Stores adaptadores de almacenamiento.
type Stores struct {
	Log         repository.MovementLog
	Products    repository.ProductRepository
	Warehouses  repository.WarehouseRepository
	Checkpoints repository.CheckpointStore
}

// App servicio armado más los recursos a liberar al cerrar.
type App struct {
	Config *config.Config
	Logger *logger.Logger
	Stores Stores
	Ledger *ledger.Service
	Redis  *goredis.Client

	closers []func()
}

// Options controla qué se inicializa.
type Options struct {
	// Migrate aplica las migraciones pendientes (solo postgres).
	Migrate bool
	// Publish conecta el EventSink de Redis si REDIS_ADDR está definido.
	Publish bool
}

// OpenStores abre el almacenamiento configurado (postgres o memoria).
func OpenStores(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) (Stores, func(), error) {
	if cfg.App.Storage == "memory" {
		log.Warn().Msg("almacenamiento en memoria: el kardex se pierde al reiniciar")
		return Stores{
			Log:         memory.NewMovementLog(),
			Products:    memory.NewProductRepository(),
			Warehouses:  memory.NewWarehouseRepository(),
			Checkpoints: memory.NewCheckpointStore(),
		}, func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return Stores{}, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if migrate {
		if _, err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return Stores{}, nil, err
		}
	}
	return Stores{
		Log:         postgres.NewMovementLog(pool),
		Products:    postgres.NewProductRepository(pool),
		Warehouses:  postgres.NewWarehouseRepository(pool),
		Checkpoints: postgres.NewCheckpointStore(pool),
	}, pool.Close, nil
}

// Open abre el almacenamiento, siembra las bodegas, conecta Redis (opcional) y arranca el ledger.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	stores, closeStores, err := OpenStores(ctx, cfg, log, opts.Migrate)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: log, Stores: stores, closers: []func(){closeStores}}

	if err := usecase.NewWarehouseUseCase(stores.Warehouses, nil).Seed(ctx, cfg.Ledger.Warehouses); err != nil {
		app.Release()
		return nil, fmt.Errorf("sembrar bodegas: %w", err)
	}

	var sink ledger.EventSink
	if opts.Publish && cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			app.Release()
			return nil, err
		}
		app.Redis = rdb
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		sink = infraredis.NewPublisher(rdb, cfg.Redis.Channel)
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("publicación de movimientos en Redis")
	}

	app.Ledger = ledger.NewService(ledger.Deps{
		Log:         stores.Log,
		Products:    stores.Products,
		Warehouses:  stores.Warehouses,
		Checkpoints: stores.Checkpoints,
		Sink:        sink,
		Logger:      log.Zerolog(),
	}, ledger.Config{
		LockTimeout:  cfg.Ledger.LockTimeout,
		CostScale:    cfg.Ledger.CostScale,
		SinkTimeout:  cfg.Ledger.SinkTimeout,
		RebuildLimit: cfg.Ledger.RebuildLimit,
	})
	if err := app.Ledger.Start(ctx); err != nil {
		app.Release()
		return nil, fmt.Errorf("arranque del ledger: %w", err)
	}
	return app, nil
}

// Close guarda el checkpoint final y libera conexiones.
func (a *App) Close(ctx context.Context) error {
	err := a.Ledger.Close(ctx)
	a.Release()
	return err
}

// Release libera conexiones sin guardar checkpoint (comandos de solo lectura).
func (a *App) Release() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
