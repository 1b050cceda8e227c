package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wintoday/config"
	"wintoday/database"
	"wintoday/jobs"
	"wintoday/logger"
	"wintoday/routes"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	logger.InitLogger()
	defer logger.Sync()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	var store database.Store
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("⚠️ using in-memory store, data is lost on exit")
		store = database.NewMemoryStore()
	default:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logger.Fatal("failed to connect database", zap.Error(err))
		}
		store = database.NewGormStore(db)
	}

	svc := services.NewGameService(store, cfg.Game)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	routes.Setup(app, svc, routes.Options{Metrics: cfg.MetricsEnabled})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jobs.StartLedgerAuditScheduler(ctx, svc, cfg.LedgerAuditInterval)

	addr := cfg.Addr()
	logger.Info("🚀 server running", zap.String("addr", addr), zap.String("store", cfg.Store))

	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("gracefully shutting down...")
	cancel()
	if err := app.Shutdown(); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited cleanly")
}
