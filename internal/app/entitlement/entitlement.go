package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/supportiq/entitlement-service/internal/cache"
	"github.com/supportiq/entitlement-service/internal/config"
	"github.com/supportiq/entitlement-service/internal/lib/jwt"
	"github.com/supportiq/entitlement-service/internal/lib/rabbitmq"
	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/metering"
	"github.com/supportiq/entitlement-service/internal/migrations"
	"github.com/supportiq/entitlement-service/internal/plans"
	authservice "github.com/supportiq/entitlement-service/internal/services/auth"
	entitlementservice "github.com/supportiq/entitlement-service/internal/services/entitlement"
	trialservice "github.com/supportiq/entitlement-service/internal/services/trial"
	"github.com/supportiq/entitlement-service/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New собирает приложение: хранилище, миграции, кеш, каталог планов,
// сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	catalog, err := plans.Load(cfg.PlanCatalogPath)
	if err != nil {
		return nil, err
	}

	var notifier trialservice.Notifier
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			return nil, err
		}
		notifier = trialservice.NewRabbitNotifier(ch)
	} else {
		logger.Warn("rabbitmq is not configured, sweep runs without notifications")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	counters := metering.New(cacheRedis.Db)

	authService := authservice.New(db, jwtMaker)
	trialService := trialservice.New(db, cacheRedis, notifier, logger)
	entitlementService := entitlementservice.New(catalog, db, counters, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, authService, trialService, entitlementService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close storage", sl.Err(closeErr))
		}
		return err
	}
}
