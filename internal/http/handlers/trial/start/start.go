// Package start реализует HTTP-обработчик запуска пробного периода.
//
// Handler извлекает uid пользователя из контекста, вызывает бизнес-логику
// создания пробного периода и возвращает созданную запись в JSON-формате.
// Если активный период уже существует, возвращается 409 с существующей
// записью в данных ответа.
package start

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/supportiq/entitlement-service/internal/apperr"
	"github.com/supportiq/entitlement-service/internal/http/middlewarectx"
	"github.com/supportiq/entitlement-service/internal/http/response"
	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/models"
)

// Handler управляет HTTP-запросами на запуск пробного периода.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики запуска пробного периода.
type Service interface {
	Start(ctx context.Context, userUID string) (*models.Trial, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Запустить пробный период
// @Description Создает активный пробный период на 14 дней для текущего пользователя.
// @Tags Trials
// @Produce  json
// @Success 200 {object} map[string]any "Пробный период создан"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Активный пробный период уже существует"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /trial [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.start"

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

	trial, err := h.service.Start(r.Context(), userUID)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindConflict {
			log.Info("active trial already exists", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.ErrorWithData("active trial already exists", map[string]any{
				"existing_trial": appErr.Meta["existing_trial"],
			}))
			return
		}
		log.Error("failed to start trial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start trial"))
		return
	}

	log.Info("trial started", slog.Int("id", trial.ID), slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"trial": trial,
	}))
}
