package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"shopmirror/internal/application"
	"shopmirror/internal/application/webhook_handlers"
	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/config"
	"shopmirror/internal/infrastructure/metrics"
	"shopmirror/internal/infrastructure/pubsub"
	"shopmirror/internal/infrastructure/queue"
	"shopmirror/internal/infrastructure/repository"
	shopifyinfra "shopmirror/internal/infrastructure/shopify"
	"shopmirror/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
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
	checkoutHandler := webhook_handlers.NewCheckoutHandler(mirrorRepo, logger)

	shopifyApp := goshopify.App{ApiSecret: cfg.ShopifyAPISecret}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Protected API
	r.Get("/api/cron/ingest", cronIngestHandler(syncService, cfg.CronSecret, logger))
	r.Post("/api/sync", syncEnqueueHandler(taskQueue, tenantRepo, cfg.CronSecret, logger))

	// Webhook endpoint
	r.Post("/webhooks/shopify", webhookHandler(shopifyApp, cfg.ShopifyAPISecret, tenantRepo, checkoutHandler, logger))

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// authorized checks the Authorization header against the shared secret.
func authorized(r *http.Request, secret string) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return false
	}
	return strings.TrimPrefix(header, "Bearer ") == secret
}

// cronIngestHandler runs a sync pass for every active tenant and reports the
// per-tenant outcomes.
func cronIngestHandler(syncService *application.SyncService, cronSecret string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, cronSecret) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		results, err := syncService.SyncAllActive(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("Scheduled ingestion failed")
			http.Error(w, "Failed to run scheduled ingestion", http.StatusInternalServerError)
			return
		}

		failed := 0
		for _, res := range results {
			if res.Status == domain.SyncStatusFailed {
				failed++
			}
		}
		logger.Info().
			Int("tenants", len(results)).
			Int("failed", failed).
			Msg("Scheduled ingestion finished")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": failed == 0,
			"results": results,
		})
	}
}

// syncEnqueueHandler validates the tenant and enqueues an ingestion task.
func syncEnqueueHandler(taskQueue ports.TaskQueue, tenants ports.TenantRepository, secret string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, secret) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TenantID json.Number `json:"tenantId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		id, err := application.ParseTenantID(body.TenantID.String())
		if err != nil {
			http.Error(w, "Invalid tenant id", http.StatusBadRequest)
			return
		}

		if _, err := tenants.FindByID(r.Context(), id); err != nil {
			if errors.Is(err, domain.ErrTenantNotFound) {
				http.Error(w, "Tenant not found", http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Int64("tenantId", id).Msg("Failed to look up tenant")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		task := domain.IngestionTask{TenantID: body.TenantID.String()}
		if err := taskQueue.Publish(r.Context(), task); err != nil {
			logger.Error().Err(err).Int64("tenantId", id).Msg("Failed to enqueue ingestion task")
			http.Error(w, "Failed to enqueue sync", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
	}
}

// webhookHandler verifies the Shopify HMAC signature, resolves the tenant
// from the shop domain header and dispatches the event.
func webhookHandler(
	app goshopify.App,
	apiSecret string,
	tenants ports.TenantRepository,
	checkoutHandler *webhook_handlers.CheckoutHandler,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if apiSecret == "" {
			logger.Warn().Msg("SHOPIFY_API_SECRET not set, skipping webhook verification")
		} else if !app.VerifyWebhookRequest(r) {
			logger.Warn().Msg("Webhook signature verification failed")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		topic := r.Header.Get("X-Shopify-Topic")
		if topic == "" {
			http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
			return
		}

		shopDomain := r.Header.Get("X-Shopify-Shop-Domain")
		tenant, err := tenants.FindByDomain(ctx, shopDomain)
		if err != nil {
			if errors.Is(err, domain.ErrTenantNotFound) {
				logger.Warn().Str("shop", shopDomain).Msg("Webhook for unknown shop")
				http.Error(w, "Unknown shop", http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to look up tenant")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if checkoutHandler.CanHandle(topic) {
			if err := checkoutHandler.Handle(ctx, tenant.ID, topic, payload); err != nil {
				logger.Error().Err(err).Str("topic", topic).Int64("tenantId", tenant.ID).
					Msg("Failed to process webhook event")
				http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
				return
			}
		} else {
			logger.Debug().Str("topic", topic).Msg("Ignoring unhandled webhook topic")
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"received": "true"})
	}
}
