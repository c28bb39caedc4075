// Package billingwebhook реализует HTTP-обработчик вебхука биллинг-провайдера.
//
// Событие plan.upgraded переводит активный пробный период клиента в converted
// и меняет его тарифный план. Прочие события подтверждаются без действия,
// чтобы провайдер не повторял доставку.
package billingwebhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/supportiq/entitlement-service/internal/apperr"
	"github.com/supportiq/entitlement-service/internal/http/response"
	"github.com/supportiq/entitlement-service/internal/lib/sl"
	"github.com/supportiq/entitlement-service/internal/models"
)

// Payload — тело вебхука биллинг-провайдера.
type Payload struct {
	Event      string `json:"event" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Plan       string `json:"plan" validate:"required"`
}

// Handler обрабатывает события биллинг-провайдера.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики конверсии пробного периода.
type Service interface {
	Convert(ctx context.Context, userUID, planKey string) (*models.Trial, error)
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
// @Summary Вебхук биллинг-провайдера
// @Description Принимает событие апгрейда плана и конвертирует пробный период.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Payload true "Событие биллинга"
// @Success 200 {object} map[string]any "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Пробный период не найден"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error("failed to decode webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("webhook payload decoded", slog.String("event", payload.Event))

	if err := h.validate.Struct(payload); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if payload.Event != "plan.upgraded" {
		log.Info("ignoring billing event", slog.String("event", payload.Event))
		render.JSON(w, r, response.OKWithData(map[string]any{
			"handled": false,
		}))
		return
	}

	trial, err := h.service.Convert(r.Context(), payload.CustomerID, payload.Plan)
	if err != nil {
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			log.Error("trial not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("trial not found"))
		case apperr.Is(err, apperr.KindConflict):
			// Гонка со sweep или повторная доставка события: переход уже
			// выполнен, провайдеру отвечаем успехом.
			log.Info("trial is not active, nothing to convert", sl.Err(err))
			render.JSON(w, r, response.OKWithData(map[string]any{
				"handled": false,
			}))
		default:
			log.Error("failed to convert trial", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not convert trial"))
		}
		return
	}

	log.Info("trial converted", slog.String("customer_id", payload.CustomerID), slog.String("plan", payload.Plan))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"handled": true,
		"trial":   trial,
	}))
}
