package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stocktakehq/stockaudit-backend/api/routes"
	"github.com/stocktakehq/stockaudit-backend/internal/addons"
	"github.com/stocktakehq/stockaudit-backend/internal/audits"
	authsvc "github.com/stocktakehq/stockaudit-backend/internal/auth"
	"github.com/stocktakehq/stockaudit-backend/internal/challans"
	"github.com/stocktakehq/stockaudit-backend/internal/damages"
	"github.com/stocktakehq/stockaudit-backend/internal/devices"
	"github.com/stocktakehq/stockaudit-backend/internal/imports"
	"github.com/stocktakehq/stockaudit-backend/internal/inventory"
	"github.com/stocktakehq/stockaudit-backend/internal/racks"
	"github.com/stocktakehq/stockaudit-backend/internal/reports"
	"github.com/stocktakehq/stockaudit-backend/internal/scans"
	"github.com/stocktakehq/stockaudit-backend/internal/users"
	"github.com/stocktakehq/stockaudit-backend/pkg/auth/session"
	"github.com/stocktakehq/stockaudit-backend/pkg/config"
	"github.com/stocktakehq/stockaudit-backend/pkg/db"
	"github.com/stocktakehq/stockaudit-backend/pkg/idempotency"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
	"github.com/stocktakehq/stockaudit-backend/pkg/metrics"
	"github.com/stocktakehq/stockaudit-backend/pkg/migrate"
	"github.com/stocktakehq/stockaudit-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	dedup, err := idempotency.NewManager(redisClient, cfg.ScanQueue.DedupTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	importMetrics := metrics.NewImportMetrics(prometheus.DefaultRegisterer)
	gormDB := dbClient.DB()

	authService, err := authsvc.NewService(users.NewRepository(gormDB), sessionManager, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	rackRepo := racks.NewRepository(gormDB)
	rackService, err := racks.NewService(rackRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rack service", err)
		os.Exit(1)
	}

	auditService, err := audits.NewService(audits.NewRepository(gormDB), rackRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	scanService, err := scans.NewService(scans.NewRepository(gormDB), dedup)
	if err != nil {
		logg.Error(context.Background(), "failed to create scan service", err)
		os.Exit(1)
	}

	importService, err := imports.NewService(imports.Options{
		Repo:             imports.NewRepository(gormDB),
		MaxErrorMessages: cfg.Import.MaxErrorMessages,
		Metrics:          importMetrics,
		Logger:           logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reports.NewRepository(gormDB), auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	damageService, err := damages.NewService(damages.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create damage service", err)
		os.Exit(1)
	}

	addonService, err := addons.NewService(addons.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create addon service", err)
		os.Exit(1)
	}

	challanService, err := challans.NewService(challans.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create challan service", err)
		os.Exit(1)
	}

	deviceService, err := devices.NewService(devices.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create device service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:      authService,
			Audits:    auditService,
			Racks:     rackService,
			Scans:     scanService,
			Imports:   importService,
			Inventory: inventoryService,
			Reports:   reportService,
			Damages:   damageService,
			Addons:    addonService,
			Challans:  challanService,
			Devices:   deviceService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
