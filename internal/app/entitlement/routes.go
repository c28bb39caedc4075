// Package entitlement предоставляет сборку и маршруты основного приложения.
package entitlement

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/supportiq/entitlement-service/docs"
	"github.com/supportiq/entitlement-service/internal/config"
	"github.com/supportiq/entitlement-service/internal/http/handlers/auth/login"
	"github.com/supportiq/entitlement-service/internal/http/handlers/auth/register"
	"github.com/supportiq/entitlement-service/internal/http/handlers/billing/billingwebhook"
	"github.com/supportiq/entitlement-service/internal/http/handlers/health"
	"github.com/supportiq/entitlement-service/internal/http/handlers/trial/start"
	"github.com/supportiq/entitlement-service/internal/http/handlers/trial/status"
	"github.com/supportiq/entitlement-service/internal/http/handlers/trial/sweep"
	"github.com/supportiq/entitlement-service/internal/http/handlers/usage/check"
	"github.com/supportiq/entitlement-service/internal/http/handlers/usage/record"
	"github.com/supportiq/entitlement-service/internal/http/middlewarectx"
	"github.com/supportiq/entitlement-service/internal/lib/jwt"
	authservice "github.com/supportiq/entitlement-service/internal/services/auth"
	entitlementservice "github.com/supportiq/entitlement-service/internal/services/entitlement"
	trialservice "github.com/supportiq/entitlement-service/internal/services/trial"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker,
	authService *authservice.Service, trialService *trialservice.Service,
	entitlementService *entitlementservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/trial", start.New(logger, trialService).ServeHTTP)
			r.Get("/trial", status.New(logger, trialService).ServeHTTP)
			r.Post("/usage/check", check.New(logger, entitlementService).ServeHTTP)
			r.Post("/usage/record", record.New(logger, entitlementService).ServeHTTP)
		})

		// Служебные конечные точки с общим секретом (без JWT)
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SharedSecretMiddleware("X-Sweep-Secret", cfg.SweepSecret, logger))
			r.Post("/internal/sweep", sweep.New(logger, trialService).ServeHTTP)
		})
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SharedSecretMiddleware("X-Webhook-Secret", cfg.WebhookSecret, logger))
			r.Post("/billing/webhook", billingwebhook.New(logger, trialService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
