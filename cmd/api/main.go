package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/kardex/docs"
	"github.com/jhoicas/kardex/internal/application/inventory"
	"github.com/jhoicas/kardex/internal/application/usecase"
	"github.com/jhoicas/kardex/internal/bootstrap"
	infrapdf "github.com/jhoicas/kardex/internal/infrastructure/pdf"
	"github.com/jhoicas/kardex/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/kardex/internal/interfaces/http"
	"github.com/jhoicas/kardex/pkg/config"
	"github.com/jhoicas/kardex/pkg/logger"
)

// @title        Kardex API
// @version      1.0
// @description  Existencias por bodega y costo promedio ponderado sobre un kardex inmutable.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	kardex, err := bootstrap.Open(ctx, cfg, log, bootstrap.Options{Migrate: true, Publish: true})
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización del kardex")
	}
	svc := kardex.Ledger

	sched, err := scheduler.New(svc, cfg.Scheduler.CheckpointSpec, cfg.Scheduler.VerifySpec, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	sched.Start()

	warehouseUC := usecase.NewWarehouseUseCase(kardex.Stores.Warehouses, svc)
	productUC := usecase.NewProductUseCase(kardex.Stores.Products, svc)
	registerMovementUC := inventory.NewRegisterMovementUseCase(svc)
	reportUC := inventory.NewReportUseCase(svc, infrapdf.NewKardexPDFGenerator())
	replenishmentUC := inventory.NewReplenishmentUseCase(svc, cfg.Ledger.CostScale)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: fiber.DefaultErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kardex API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inventory: httpRouter.NewInventoryHandler(registerMovementUC, reportUC, replenishmentUC),
		Products:  httpRouter.NewProductHandler(productUC),
		Warehouse: httpRouter.NewWarehouseHandler(warehouseUC),
		Events:    httpRouter.NewEventsHandler(svc, 15*time.Second, log.Component("events")),
		Health:    svc,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	sched.Stop(shutdownCtx)
	if err := kardex.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("checkpoint final")
	}

	log.Info().Msg("aplicación detenida")
}
