// Package sweeper реализует внешний по отношению к HTTP-серверу драйвер
// периодической обработки: по тикеру вызывает sweep жизненного цикла
// пробных периодов. Сама обработка идемпотентна, поэтому совместная работа
// нескольких экземпляров драйвера безопасна.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/models"
)

// TrialService описывает интерфейс сервиса жизненного цикла пробных периодов.
type TrialService interface {
	Sweep(ctx context.Context) ([]*models.Trial, error)
}

// Sweeper периодически запускает sweep.
type Sweeper struct {
	service  TrialService
	interval time.Duration
	log      *slog.Logger
}

// New создает новый экземпляр Sweeper.
func New(service TrialService, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		log:      log,
	}
}

// Run выполняет sweep сразу и далее по тикеру до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	s.log.Info("starting trial expiration sweep")
	transitioned, err := s.service.Sweep(ctx)
	if err != nil {
		s.log.Error("sweep failed", sl.Err(err))
		return
	}
	if len(transitioned) == 0 {
		s.log.Info("no expired trials found")
		return
	}
	s.log.Info("expired trials", slog.Int("count", len(transitioned)))
}
