package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/api"
	"github.com/bobby-s-dev/weather-advisor/internal/config"
	"github.com/bobby-s-dev/weather-advisor/internal/scheduler"
	"github.com/bobby-s-dev/weather-advisor/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger := newLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Weather Advisor Service",
		zap.String("timezone", cfg.Advisor.Location.String()),
		zap.Int("forecast_days", cfg.WeatherAPI.ForecastDays))

	// Forecast sources
	forecasts, err := services.NewForecastService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize forecast service", zap.Error(err))
	}

	// Activities
	activities := services.NewActivityRegistry(logger)
	if cfg.Activities.SeedDefaults {
		if err := activities.SeedDefaults(); err != nil {
			logger.Fatal("Failed to seed default activities", zap.Error(err))
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewMetrics(registry)

	advisor := services.NewAdvisor(activities, forecasts, cfg.Advisor.Location, metrics, logger)

	// Initialize scheduler
	refreshScheduler := scheduler.NewScheduler(
		advisor,
		cfg.Scheduler.RefreshSchedule,
		cfg.Scheduler.DefaultLocations,
		logger,
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		ErrorHandler: api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(api.Dependencies{
		Activities: activities,
		Advisor:    advisor,
		Forecasts:  forecasts,
		Scheduler:  refreshScheduler,
		Gatherer:   registry,
	}, logger)
	api.SetupRoutes(app, handler, logger)

	// Start scheduler
	if err := refreshScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	refreshScheduler.Stop()
	forecasts.Close()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if level == "debug" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
