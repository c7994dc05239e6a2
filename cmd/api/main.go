package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/export"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	itemStore := initItemStore(ctx, cfg, db, &logger)

	metrics.Register()
	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus)

	clock := service.SystemClock{}
	bookingService := service.NewBookingService(db, itemStore, db, eventBus, clock, &logger)
	userService := service.NewUserService(db, &logger)
	itemService := service.NewItemService(itemStore, db, db, db, clock, &logger)
	commentService := service.NewCommentService(db, db, itemStore, db, eventBus, clock, &logger)
	requestService := service.NewRequestService(db, itemStore, db, clock, &logger)
	exporter := export.NewExporter(db, cfg.Exports, &logger)

	httpServer := api.NewHTTPServer(cfg.HTTP, cfg.Pagination, api.Services{
		Bookings: bookingService,
		Users:    userService,
		Items:    itemService,
		Comments: commentService,
		Requests: requestService,
		Exporter: exporter,
	}, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

// initItemStore wraps the database item store with the configured cache:
// Redis with in-memory failover when enabled, plain memory otherwise.
func initItemStore(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) domain.ItemStore {
	ttl := time.Duration(models.ItemsCacheTTL) * time.Second
	memory := repository.NewMemoryItemCache(ttl)

	var cache domain.ItemCache = memory
	if cfg.Redis.Enabled {
		client := repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, client); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, item cache starts on memory fallback")
		}
		cache = repository.NewFailoverItemCache(repository.NewRedisItemCache(client, ttl), memory, logger)
	}

	return repository.NewCachedItemStore(db, cache, logger)
}

func subscribeBookingEvents(bus *events.EventBus) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingApproved,
		events.EventBookingRejected,
		events.EventBookingDeleted,
	} {
		t := eventType
		bus.Subscribe(t, func(*events.Event) error {
			metrics.IncBookingEvent(t)
			return nil
		})
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
