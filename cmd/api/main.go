package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/setsco-serial-api/internal/application/custody"
	"github.com/jhoicas/setsco-serial-api/internal/application/ledger"
	"github.com/jhoicas/setsco-serial-api/internal/application/production"
	"github.com/jhoicas/setsco-serial-api/internal/application/returns"
	"github.com/jhoicas/setsco-serial-api/internal/application/safetystock"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/application/shipment"
	"github.com/jhoicas/setsco-serial-api/internal/application/usecase"
	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/memory"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/setsco-serial-api/internal/interfaces/http"
	"github.com/jhoicas/setsco-serial-api/pkg/config"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

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
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := metrics.New(reg, cfg.Metrics.Prefix)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		tx    ports.TxRunner
		repos ports.Repos
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		tx, repos = store, store.Repos()
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(pool, log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		runner := postgres.NewTxRunner(pool, m)
		tx, repos = runner, runner.Repos()
	}

	registry := serial.NewRegistry(tx, repos, log, m)
	serialLedger := ledger.New(repos.History, repos.Serials, m)
	monitor := safetystock.NewMonitor(repos, safetystock.NewLogNotifier(log), cfg.SafetyStock.Recipients, log, m)
	returnSvc := returns.NewService(tx, registry, log, m)

	go monitor.Run(ctx, cfg.SafetyStock.Interval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	deps := httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		Registry:    registry,
		Ledger:      serialLedger,
		Custody:     custody.NewService(tx, repos.Serials, log, m),
		Production:  production.NewService(tx, repos, registry, monitor, log, m),
		Shipments:   shipment.NewService(tx, registry, returnSvc, log, m),
		Returns:     returnSvc,
		Monitor:     monitor,
		CategoryUC:  usecase.NewCategoryUseCase(repos.Categories, repos.Serials),
		SettingsUC:  usecase.NewDistributionSettingsUseCase(repos.Settings),
		Metrics:     m,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		SwaggerFile: cfg.Swagger.File,
	}
	if cfg.Metrics.Enabled {
		deps.Gatherer = reg
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
