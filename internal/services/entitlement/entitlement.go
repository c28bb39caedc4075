// Package entitlement содержит бизнес-логику проверки квот: по тарифному плану
// клиента и каталогу фич вычисляется, допустимо ли запрошенное количество
// использований и сколько квоты осталось.
//
// Проверка детерминирована: при одинаковых входных данных в фиксированный
// момент времени результат одинаков, никакой скрытой случайности в контракте нет.
package entitlement

import (
	"context"
	"log/slog"

	"github.com/supportiq/entitlement-service/internal/models"
	"github.com/supportiq/entitlement-service/internal/plans"
)

// PlanResolver возвращает ключ тарифного плана клиента.
type PlanResolver interface {
	GetUserPlan(ctx context.Context, userUID string) (string, error)
}

// UsageSource — источник счётчиков использования, принадлежащих метеринговому
// коллаборатору. Проверка квоты только читает счётчик.
type UsageSource interface {
	// CurrentUsage возвращает текущее использование фичи за расчётный период.
	CurrentUsage(ctx context.Context, customerUID, feature string) (int64, error)
	// Add увеличивает счётчик и возвращает новое значение.
	Add(ctx context.Context, customerUID, feature string, quantity int64) (int64, error)
}

// Service реализует проверку и учёт использования фич.
type Service struct {
	catalog  *plans.Catalog
	resolver PlanResolver
	usage    UsageSource
	log      *slog.Logger
}

// New создает новый экземпляр Service. Каталог планов неизменяем после
// загрузки и разделяется между компонентами без синхронизации.
func New(catalog *plans.Catalog, resolver PlanResolver, usage UsageSource, log *slog.Logger) *Service {
	return &Service{
		catalog:  catalog,
		resolver: resolver,
		usage:    usage,
		log:      log,
	}
}

// CheckUsage вычисляет, допустимо ли запрошенное количество использований фичи.
//
//	remaining = max(0, limit - currentUsage)
//	allowed   = remaining >= quantity
//
// Ничего не записывает. Фича вне каталога плана — ошибка unknown_feature,
// отсутствие записи никогда не трактуется как безлимит. Неположительное
// quantity означает значение по умолчанию 1.
func (s *Service) CheckUsage(ctx context.Context, customerUID, feature string, quantity int64) (*models.UsageCheckResult, error) {
	if quantity <= 0 {
		quantity = 1
	}

	planKey, err := s.resolver.GetUserPlan(ctx, customerUID)
	if err != nil {
		return nil, err
	}
	limit, err := s.catalog.Limit(planKey, feature)
	if err != nil {
		return nil, err
	}
	current, err := s.usage.CurrentUsage(ctx, customerUID, feature)
	if err != nil {
		return nil, err
	}

	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	allowed := remaining >= quantity

	result := &models.UsageCheckResult{
		Allowed:      allowed,
		Remaining:    remaining,
		Limit:        limit,
		CurrentUsage: current,
		Feature:      feature,
		CustomerID:   customerUID,
	}

	if allowed {
		usageChecksTotal.WithLabelValues("allowed").Inc()
	} else {
		usageChecksTotal.WithLabelValues("denied").Inc()
	}
	s.log.Info("usage check",
		slog.String("customer_uid", customerUID),
		slog.String("feature", feature),
		slog.Int64("remaining", remaining),
		slog.Bool("allowed", allowed))

	return result, nil
}

// RecordUsage увеличивает счётчик использования фичи и возвращает новое
// значение. Фича проверяется по каталогу плана клиента так же, как при
// проверке квоты.
func (s *Service) RecordUsage(ctx context.Context, customerUID, feature string, quantity int64) (int64, error) {
	if quantity <= 0 {
		quantity = 1
	}

	planKey, err := s.resolver.GetUserPlan(ctx, customerUID)
	if err != nil {
		return 0, err
	}
	if _, err := s.catalog.Limit(planKey, feature); err != nil {
		return 0, err
	}

	total, err := s.usage.Add(ctx, customerUID, feature, quantity)
	if err != nil {
		return 0, err
	}
	s.log.Info("usage recorded",
		slog.String("customer_uid", customerUID),
		slog.String("feature", feature),
		slog.Int64("total", total))
	return total, nil
}
