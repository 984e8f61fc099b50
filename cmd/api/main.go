package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/podology-frontdesk/internal/api/router"
	"github.com/wolfman30/podology-frontdesk/internal/app/bootstrap"
	appconfig "github.com/wolfman30/podology-frontdesk/internal/config"
	"github.com/wolfman30/podology-frontdesk/internal/observability/metrics"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting podology front-desk API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.Location().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	metricsHandler, reminderMetrics := setupReminderMetrics()

	fd, err := bootstrap.BuildFrontdesk(cfg, pool, redisClient, reminderMetrics, logger)
	if err != nil {
		logger.Error("failed to wire front desk", "error", err)
		os.Exit(1)
	}

	routerCfg := &router.Config{
		Logger:              logger,
		AppointmentsHandler: fd.AppointmentsHandler,
		CalendarHandler:     fd.CalendarHandler,
		RemindersHandler:    fd.RemindersHandler,
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		StaffJWTSecret:      cfg.StaffJWTSecret,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
		DB:                  pool,
	}
	if redisClient != nil {
		routerCfg.Cache = bootstrap.RedisPinger{Client: redisClient}
	}
	if cfg.StaffJWTSecret == "" {
		logger.Warn("STAFF_JWT_SECRET not set; /api is unauthenticated")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	boardDone := make(chan struct{})
	go func() {
		defer close(boardDone)
		fd.Board.Run(ctx)
	}()

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	<-boardDone

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupReminderMetrics builds a private registry so /metrics only carries
// process and front-desk series.
func setupReminderMetrics() (http.Handler, *metrics.ReminderMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewReminderMetrics(reg)
}
