package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/medflow/medsupply-backend/internal/auth/jwt"
	"github.com/medflow/medsupply-backend/internal/pharmacy/events"
	"github.com/medflow/medsupply-backend/internal/pharmacy/handler"
	"github.com/medflow/medsupply-backend/internal/pharmacy/notifier"
	"github.com/medflow/medsupply-backend/internal/pharmacy/repository"
	"github.com/medflow/medsupply-backend/internal/pharmacy/service"
	"github.com/medflow/medsupply-backend/pkg/config"
	"github.com/medflow/medsupply-backend/pkg/database"
	"github.com/medflow/medsupply-backend/pkg/httputil"
	"github.com/medflow/medsupply-backend/pkg/logger"
	"github.com/medflow/medsupply-backend/pkg/messaging"
)

const serviceName = "medsupply-service"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().
		Str("storage", cfg.Storage.Backend).
		Str("notifier", cfg.Notifier.Backend).
		Msg("starting MedSupply Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage backend
	kv, closeKV := openKV(ctx, cfg, log)
	defer closeKV()
	store := repository.NewStateStore(kv, cfg.Storage.KeyPrefix, log)

	// Pharmacy events go out whenever there is a broker connection
	var (
		rmq       *messaging.RabbitMQ
		publisher *events.PharmacyEventPublisher
	)
	if cfg.UsesRabbitMQ() {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewPharmacyEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Warn().Msg("RabbitMQ disabled, order.received and alert.generated events will not be published")
	}

	dispatcher := notifier.NewDispatcher(newNotifier(cfg, rmq, log), cfg.Notifier.Timeout, log)

	svc, err := service.NewPharmacyService(ctx, store, dispatcher, publisher, service.Options{
		LowStockThreshold: cfg.Alerts.LowStockThreshold,
		RecheckDelay:      cfg.Alerts.RecheckDelay,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load pharmacy state")
	}
	defer svc.Close()

	auth, err := service.NewAuthenticator(svc, jwt.NewManager(&cfg.Auth), &cfg.Auth, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise authenticator")
	}

	reminders, err := service.NewReminderScheduler(svc, cfg.Alerts.ReminderInterval, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create reminder scheduler")
	}
	if err := reminders.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start reminder scheduler")
	}

	pharmacyHandler := handler.NewHandler(svc, auth, log)

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
			"storage": svc.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1/pharmacy", pharmacyHandler.Routes)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	if err := reminders.Stop(); err != nil {
		log.Error().Err(err).Msg("reminder scheduler shutdown failed")
	}
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// openKV connects the configured storage backend
func openKV(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.KV, func()) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		client, err := repository.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to Redis")
		}
		return repository.NewRedisKV(client), func() { client.Close() }

	case config.StoragePostgres:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		kv := repository.NewPostgresKV(db)
		if err := kv.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate state table")
		}
		return kv, func() { db.Close() }

	default:
		log.Warn().Msg("using in-memory storage, state is lost on restart")
		return repository.NewMemoryKV(), func() {}
	}
}

// newNotifier picks how reorder notifications reach suppliers
func newNotifier(cfg *config.Config, rmq *messaging.RabbitMQ, log *logger.Logger) notifier.Notifier {
	switch cfg.Notifier.Backend {
	case config.NotifierAMQP:
		pub, err := messaging.NewPublisher(rmq, messaging.ExchangePharmacyEvents, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create notification publisher")
		}
		return notifier.NewAMQPNotifier(pub)

	case config.NotifierSendGrid:
		return notifier.NewSendGridNotifier(&cfg.SendGrid)

	default:
		return notifier.NewLogNotifier(log)
	}
}
