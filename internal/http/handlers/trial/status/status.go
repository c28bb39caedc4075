// Package status реализует HTTP-обработчик чтения статуса пробного периода.
//
// Чтение не пересчитывает статус: истёкший, но ещё не обработанный sweep
// период возвращается как active. Для прозрачности в ответ добавляется
// признак is_expired, вычисленный чистым предикатом на момент запроса.
package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/supportiq/entitlement-service/internal/http/middlewarectx"
	"github.com/supportiq/entitlement-service/internal/http/response"
	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/models"
)

// Handler обрабатывает запросы на получение пробного периода пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения пробного периода.
type Service interface {
	Status(ctx context.Context, userUID string) (*models.Trial, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить статус пробного периода
// @Description Возвращает пробный период текущего пользователя или 404, если его нет.
// @Tags Trials
// @Produce  json
// @Success 200 {object} map[string]any "Пробный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пробный период не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /trial [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	trial, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		log.Error("failed to read trial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read trial"))
		return
	}
	if trial == nil {
		log.Info("trial not found", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("trial not found"))
		return
	}

	log.Info("trial read", slog.Int("id", trial.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"trial":      trial,
		"is_expired": trial.IsExpired(time.Now().UTC()),
	}))
}
