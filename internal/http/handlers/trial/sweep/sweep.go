// Package sweep реализует HTTP-обработчик периодической обработки истёкших
// пробных периодов. Вызывается внешним планировщиком, авторизуется общим
// секретом (middleware), телом запроса не пользуется.
package sweep

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/supportiq/entitlement-service/internal/http/response"
	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/models"
)

// Handler управляет HTTP-запросами запуска sweep.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики sweep.
type Service interface {
	Sweep(ctx context.Context) ([]*models.Trial, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Перевести истёкшие пробные периоды в expired
// @Description Обрабатывает все активные пробные периоды с истёкшим сроком. Идемпотентен.
// @Tags Trials
// @Produce  json
// @Success 200 {object} map[string]any "Список переведённых периодов"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /internal/sweep [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.sweep"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	transitioned, err := h.service.Sweep(r.Context())
	if err != nil {
		log.Error("sweep failed", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("could not run sweep"))
		return
	}

	if transitioned == nil {
		// Стабильная форма ответа: пустой список, а не null
		transitioned = []*models.Trial{}
	}

	log.Info("sweep done", slog.Int("count", len(transitioned)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":  len(transitioned),
		"trials": transitioned,
	}))
}
