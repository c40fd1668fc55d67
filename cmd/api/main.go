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

	"parilka/internal/api"
	"parilka/internal/auth"
	"parilka/internal/clients"
	"parilka/internal/config"
	"parilka/internal/database"
	"parilka/internal/domain"
	"parilka/internal/events"
	"parilka/internal/export"
	"parilka/internal/logging"
	"parilka/internal/metrics"
	"parilka/internal/models"
	"parilka/internal/repository"
	"parilka/internal/service"
	"parilka/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if err := db.SeedRooms(ctx, cfg.Rooms); err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}

	cache := initCache(ctx, cfg, &logger)
	eventBus := initEventBus(&logger)

	profileClient := clients.NewProfileClient(cfg.Profile, &logger)
	membershipClient := clients.NewMembershipClient(cfg.Membership, &logger)

	authService := service.NewAuthService(
		db,
		profileClient,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewJWTIssuer(cfg.Auth),
		eventBus,
		cache,
		service.AuthServiceOptions{
			TokenTTL:    cfg.Auth.TokenTTLDuration(),
			LoginLimit:  cfg.Auth.LoginRateLimit,
			LoginWindow: time.Duration(cfg.Auth.LoginRateWindow) * time.Second,
		},
		&logger,
	)

	bookingService := service.NewBookingService(
		db,
		db,
		membershipClient,
		cache,
		eventBus,
		models.NewTierPolicy(cfg.Booking.BlockedRooms),
		cfg.Booking.MaxDuration(),
		&logger,
	)

	exporter := export.NewExporter(db, db, &logger)
	httpServer := api.NewHTTPServer(cfg.HTTP, authService, bookingService, exporter, &logger)

	if cfg.Recovery.Enabled {
		recovery := worker.NewRecoveryWorker(
			db,
			time.Duration(cfg.Recovery.IntervalSeconds)*time.Second,
			time.Duration(cfg.Recovery.MinAgeSeconds)*time.Second,
			&logger,
		)
		go recovery.Run(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// initCache строит кэш абонементов: Redis с откатом на память, либо
// только память, когда Redis выключен.
func initCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.MembershipCache {
	ttl := time.Duration(cfg.Membership.CacheTTL) * time.Second
	memory := repository.NewMemoryMembershipCache(ttl)

	if !cfg.Redis.Enabled {
		logger.Info().Msg("redis disabled, using in-memory membership cache")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable at startup, failover will retry")
	}

	primary := repository.NewRedisMembershipCache(client, ttl)
	return repository.NewFailoverMembershipCache(primary, memory, logger)
}

func initEventBus(logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus()

	// Подписчики только логируют: внешних потребителей событий пока нет.
	logEvent := func(event *events.Event) error {
		logger.Debug().
			Str("event_type", event.Type).
			RawJSON("payload", event.Payload).
			Msg("domain event")
		return nil
	}
	bus.Subscribe(events.EventAccountRegistered, logEvent)
	bus.Subscribe(events.EventAccountCompensated, logEvent)
	bus.Subscribe(events.EventBookingCreated, logEvent)

	return bus
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("metrics listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
