// Package trial содержит бизнес-логику жизненного цикла пробного периода:
// создание, чтение статуса, периодический перевод истёкших периодов в expired
// и конверсию при апгрейде тарифного плана.
//
// Машина состояний: pending -> active -> {expired, converted}.
// Пробный период создаётся сразу активным; expired и converted — терминальные.
package trial

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/supportiq/entitlement-service/internal/apperr"
	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/models"
)

// TrialRepository определяет методы для работы с пробными периодами в хранилище.
type TrialRepository interface {
	// CreateTrial добавляет новый пробный период и возвращает его ID.
	// Возвращает ошибку conflict, если активный период уже существует.
	CreateTrial(ctx context.Context, trial models.Trial) (int, error)
	// GetTrialByUser возвращает пробный период пользователя или nil.
	GetTrialByUser(ctx context.Context, userUID string) (*models.Trial, error)
	// ListDueTrials возвращает активные периоды с expires_at <= now.
	ListDueTrials(ctx context.Context, now time.Time) ([]*models.Trial, error)
	// MarkTrialExpired условно переводит период в expired, возвращает число изменённых строк.
	MarkTrialExpired(ctx context.Context, id int) (int, error)
	// ConvertTrial атомарно переводит активный период пользователя в converted
	// и меняет тарифный план, возвращает число изменённых записей trials.
	ConvertTrial(ctx context.Context, userUID, planKey string, convertedAt time.Time) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Notifier публикует событие об истёкшем пробном периоде.
type Notifier interface {
	TrialExpired(ctx context.Context, event models.TrialExpiredEvent) error
}

// Service реализует бизнес-логику жизненного цикла пробного периода.
type Service struct {
	repo     TrialRepository
	cache    Cache
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service. notifier может быть nil,
// тогда sweep выполняет переходы без публикации уведомлений.
func New(repo TrialRepository, cache Cache, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

func cacheKey(userUID string) string {
	return fmt.Sprintf("trial:%s", userUID)
}

// Start создает пробный период для пользователя: сразу активный,
// с фиксированной длительностью models.TrialDuration. Если активный период
// уже существует, возвращает ошибку conflict с существующей записью в Meta.
// Атомарность проверки и вставки обеспечивает хранилище.
func (s *Service) Start(ctx context.Context, userUID string) (*models.Trial, error) {
	now := time.Now().UTC()
	trial := models.Trial{
		UserUID:   userUID,
		Status:    models.TrialStatusActive,
		StartedAt: now,
		ExpiresAt: now.Add(models.TrialDuration),
	}

	id, err := s.repo.CreateTrial(ctx, trial)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			existing, getErr := s.repo.GetTrialByUser(ctx, userUID)
			if getErr == nil && existing != nil {
				return nil, apperr.New(apperr.KindConflict, "active trial already exists").
					WithMeta("user_uid", userUID).
					WithMeta("existing_trial", existing)
			}
		}
		return nil, err
	}
	trial.ID = id

	s.log.Info("started trial", slog.Int("id", id), slog.String("user_uid", userUID))

	if err := s.cache.Set(cacheKey(userUID), &trial, time.Hour); err != nil {
		s.log.Warn("failed to cache trial", slog.String("key", cacheKey(userUID)), sl.Err(err))
	}

	return &trial, nil
}

// Status возвращает пробный период пользователя или nil, если записи нет.
// Чистое чтение: статус не пересчитывается, логически истёкший период может
// наблюдаться как active до ближайшего sweep. Вызывающая сторона может
// применить предикат Trial.IsExpired к результату.
func (s *Service) Status(ctx context.Context, userUID string) (*models.Trial, error) {
	var result *models.Trial
	found, err := s.cache.Get(cacheKey(userUID), &result)
	if err != nil {
		s.log.Warn("failed to read trial from cache", slog.String("key", cacheKey(userUID)), sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetTrialByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		if err := s.cache.Set(cacheKey(userUID), result, time.Hour); err != nil {
			s.log.Warn("failed to cache trial", slog.String("key", cacheKey(userUID)), sl.Err(err))
		}
	}
	return result, nil
}

// Sweep переводит все истёкшие активные пробные периоды в expired и публикует
// уведомление по каждому выполненному переходу. Идемпотентен: повторный запуск
// без продвижения времени не находит кандидатов и ничего не меняет. Переход
// каждой записи захватывается условным обновлением, поэтому два конкурентных
// sweep не выполнят один переход дважды — проигравший видит no-op. Ошибка
// обновления одной записи логируется и не прерывает обработку остальных.
func (s *Service) Sweep(ctx context.Context) ([]*models.Trial, error) {
	now := time.Now().UTC()
	due, err := s.repo.ListDueTrials(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		s.log.Info("no expired trials found")
		return nil, nil
	}

	var transitioned []*models.Trial
	for _, t := range due {
		rows, err := s.repo.MarkTrialExpired(ctx, t.ID)
		if err != nil {
			s.log.Error("failed to expire trial", slog.Int("id", t.ID), sl.Err(err))
			continue
		}
		if rows == 0 {
			// Переход уже выполнил конкурентный sweep или конверсия.
			s.log.Info("trial already transitioned", slog.Int("id", t.ID))
			continue
		}

		t.Status = models.TrialStatusExpired
		transitioned = append(transitioned, t)
		trialsExpiredTotal.Inc()

		if err := s.cache.Invalidate(cacheKey(t.UserUID)); err != nil {
			s.log.Warn("failed to invalidate trial cache", slog.String("user_uid", t.UserUID), sl.Err(err))
		}
		if s.notifier != nil {
			event := models.TrialExpiredEvent{
				TrialID:   t.ID,
				UserUID:   t.UserUID,
				ExpiresAt: t.ExpiresAt,
			}
			if err := s.notifier.TrialExpired(ctx, event); err != nil {
				s.log.Error("failed to publish trial expired event", slog.Int("id", t.ID), sl.Err(err))
			}
		}
	}

	s.log.Info("sweep finished", slog.Int("due", len(due)), slog.Int("transitioned", len(transitioned)))
	return transitioned, nil
}

// Convert переводит активный пробный период пользователя в converted и меняет
// его тарифный план. Вызывается при событии апгрейда от биллинг-провайдера.
// Переход и смена плана фиксируются одной транзакцией хранилища, поэтому
// сбой не оставляет converted-период со старым планом, а повторная доставка
// события после сбоя применяет оба изменения заново. Условное обновление
// защищает от гонки со sweep: если период уже expired, возвращается ошибка
// conflict, если записи нет вовсе — not_found.
func (s *Service) Convert(ctx context.Context, userUID, planKey string) (*models.Trial, error) {
	now := time.Now().UTC()
	rows, err := s.repo.ConvertTrial(ctx, userUID, planKey, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		existing, getErr := s.repo.GetTrialByUser(ctx, userUID)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, apperr.New(apperr.KindNotFound, "trial not found").
				WithMeta("user_uid", userUID)
		}
		return nil, apperr.New(apperr.KindConflict, "trial is not active").
			WithMeta("user_uid", userUID).
			WithMeta("status", existing.Status)
	}

	if err := s.cache.Invalidate(cacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate trial cache", slog.String("user_uid", userUID), sl.Err(err))
	}

	s.log.Info("converted trial", slog.String("user_uid", userUID), slog.String("plan", planKey))

	return s.repo.GetTrialByUser(ctx, userUID)
}
