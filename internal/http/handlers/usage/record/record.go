// Package record реализует HTTP-обработчик учёта использования фичи.
//
// Увеличивает счётчик метеринга на переданное количество. Вызывается
// ингест-стороной после фактического использования фичи.
package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/supportiq/entitlement-service/internal/apperr"
	"github.com/supportiq/entitlement-service/internal/http/middlewarectx"
	"github.com/supportiq/entitlement-service/internal/http/response"
	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/models"
)

// Handler управляет HTTP-запросами учёта использования.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики учёта использования.
type Service interface {
	RecordUsage(ctx context.Context, customerUID, feature string, quantity int64) (int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Учесть использование фичи
// @Description Увеличивает счётчик использования фичи за текущий период.
// @Tags Usage
// @Accept  json
// @Produce  json
// @Param request body models.DummyUsageRecord true "Событие использования"
// @Success 200 {object} map[string]any "Новое значение счётчика"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Чужой customer_id"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестная фича"
// @Failure 503 {object} response.ErrorResponse "Источник счётчиков недоступен"
// @Security BearerAuth
// @Router /usage/record [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.record"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUsageRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != "admin" && req.CustomerID != userUID {
		log.Error("customer_id does not match caller", slog.String("customer_id", req.CustomerID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
		return
	}

	total, err := h.service.RecordUsage(r.Context(), req.CustomerID, req.Feature, req.Quantity)
	if err != nil {
		switch {
		case apperr.Is(err, apperr.KindUnknownFeature):
			log.Error("unknown feature", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("feature is not in the plan catalog"))
		case apperr.Is(err, apperr.KindNotFound):
			log.Error("customer not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("customer not found"))
		default:
			log.Error("failed to record usage", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("could not record usage"))
		}
		return
	}

	log.Info("usage recorded", slog.Int64("total", total))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"current_usage": total,
	}))
}
