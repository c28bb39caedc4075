// Package check реализует HTTP-обработчик проверки квоты использования фичи.
//
// Handler принимает JSON-запрос с customer_id, фичей и количеством, валидирует
// его, и возвращает результат проверки: допустимо ли запрошенное использование
// и сколько квоты осталось. Обычный пользователь может проверять только свою
// квоту, admin — любую.
package check

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

// Handler управляет HTTP-запросами проверки квоты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики проверки квоты.
type Service interface {
	CheckUsage(ctx context.Context, customerUID, feature string, quantity int64) (*models.UsageCheckResult, error)
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
// @Summary Проверить квоту использования фичи
// @Description Возвращает allowed/remaining по тарифному плану клиента. Ничего не записывает.
// @Tags Usage
// @Accept  json
// @Produce  json
// @Param request body models.DummyUsageCheck true "Параметры проверки"
// @Success 200 {object} map[string]any "Результат проверки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Чужой customer_id"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестная фича"
// @Failure 503 {object} response.ErrorResponse "Источник счётчиков недоступен"
// @Security BearerAuth
// @Router /usage/check [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.check"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUsageCheck
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("feature", req.Feature))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != "admin" && req.CustomerID != userUID {
		log.Error("customer_id does not match caller", slog.String("customer_id", req.CustomerID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
		return
	}

	result, err := h.service.CheckUsage(r.Context(), req.CustomerID, req.Feature, req.Quantity)
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
			log.Error("failed to check usage", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("could not check usage"))
		}
		return
	}

	log.Info("usage checked", slog.Bool("allowed", result.Allowed), slog.Int64("remaining", result.Remaining))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"result": result,
	}))
}
