package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"shopmirror/internal/application"
	"shopmirror/internal/infrastructure/config"
	"shopmirror/internal/infrastructure/pubsub"
	"shopmirror/internal/infrastructure/queue"
	"shopmirror/internal/infrastructure/repository"
	shopifyinfra "shopmirror/internal/infrastructure/shopify"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to the mirror database
	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Initialize repositories
	tenantRepo := repository.NewGormTenantRepository(db)
	mirrorRepo := repository.NewGormMirrorRepository(db, repository.MirrorOptions{
		RedactCustomerPII: cfg.RedactCustomerPII,
	})

	// Initialize Shopify admin API access
	adminClient := shopifyinfra.NewAdminClientWithOptions(
		nil,
		cfg.ShopifyAPIVersion,
		shopifyinfra.DefaultRetryConfig(),
		logger,
	)
	gateway := shopifyinfra.NewGateway(adminClient, logger)

	// Initialize sync event publishing (optional)
	var events ports.SyncEventPublisher = pubsub.NopSyncEventPublisher{}
	if cfg.RedisAddr != "" {
		events = pubsub.NewRedisSyncEventPublisher(cfg.RedisAddr, logger)
	}

	// Initialize the ingestion queue
	taskQueue := queue.NewIngestionQueue(cfg.RabbitMQURL, logger)

	// Initialize application services
	syncService := application.NewSyncService(tenantRepo, mirrorRepo, gateway, events, logger)
	worker := application.NewWorker(taskQueue, syncService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("Starting ingestion worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Worker stopped")
	}
	logger.Info().Msg("Worker shut down")
}
