package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/supportiq/entitlement-service/internal/apperr"
	"github.com/supportiq/entitlement-service/internal/http/middlewarectx"
	"github.com/supportiq/entitlement-service/internal/models"
)

// MockService реализует интерфейс check.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CheckUsage(ctx context.Context, customerUID, feature string, quantity int64) (*models.UsageCheckResult, error) {
	args := m.Called(ctx, customerUID, feature, quantity)
	if res := args.Get(0); res != nil {
		return res.(*models.UsageCheckResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCheckHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const uid = "b4e9f3c2-1a5d-4c0e-9b77-6e2d8a4f1c33"
	const otherUID = "0d8e4a10-7b3f-4c2a-9e61-5a7c1f2d3b99"

	tests := []struct {
		name           string
		body           string
		userUID        string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная проверка квоты",
			body:    `{"customer_id":"` + uid + `","feature":"tickets_analyzed","quantity":1}`,
			userUID: uid,
			role:    "user",
			setupMock: func(m *MockService) {
				result := &models.UsageCheckResult{
					Allowed:      true,
					Remaining:    300,
					Limit:        1000,
					CurrentUsage: 700,
					Feature:      "tickets_analyzed",
					CustomerID:   uid,
				}
				m.On("CheckUsage", mock.Anything, uid, "tickets_analyzed", int64(1)).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"remaining":300`,
		},
		{
			name:    "квота исчерпана",
			body:    `{"customer_id":"` + uid + `","feature":"tickets_analyzed","quantity":400}`,
			userUID: uid,
			role:    "user",
			setupMock: func(m *MockService) {
				result := &models.UsageCheckResult{
					Allowed:      false,
					Remaining:    300,
					Limit:        1000,
					CurrentUsage: 700,
					Feature:      "tickets_analyzed",
					CustomerID:   uid,
				}
				m.On("CheckUsage", mock.Anything, uid, "tickets_analyzed", int64(400)).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"allowed":false`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"customer_id":`,
			userUID:        uid,
			role:           "user",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "отсутствует фича",
			body:           `{"customer_id":"` + uid + `"}`,
			userUID:        uid,
			role:           "user",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "чужой customer_id для обычного пользователя",
			body:           `{"customer_id":"` + otherUID + `","feature":"tickets_analyzed"}`,
			userUID:        uid,
			role:           "user",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"forbidden"`,
		},
		{
			name:    "admin проверяет чужую квоту",
			body:    `{"customer_id":"` + otherUID + `","feature":"tickets_analyzed"}`,
			userUID: uid,
			role:    "admin",
			setupMock: func(m *MockService) {
				result := &models.UsageCheckResult{
					Allowed:    true,
					Remaining:  10,
					Limit:      10,
					Feature:    "tickets_analyzed",
					CustomerID: otherUID,
				}
				m.On("CheckUsage", mock.Anything, otherUID, "tickets_analyzed", int64(0)).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"allowed":true`,
		},
		{
			name:    "неизвестная фича",
			body:    `{"customer_id":"` + uid + `","feature":"pdf_reports"}`,
			userUID: uid,
			role:    "user",
			setupMock: func(m *MockService) {
				m.On("CheckUsage", mock.Anything, uid, "pdf_reports", int64(0)).
					Return(nil, apperr.New(apperr.KindUnknownFeature, "feature is not in the plan catalog"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"feature is not in the plan catalog"`,
		},
		{
			name:    "клиент не найден",
			body:    `{"customer_id":"` + uid + `","feature":"tickets_analyzed"}`,
			userUID: uid,
			role:    "user",
			setupMock: func(m *MockService) {
				m.On("CheckUsage", mock.Anything, uid, "tickets_analyzed", int64(0)).
					Return(nil, apperr.New(apperr.KindNotFound, "unknown plan"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"customer not found"`,
		},
		{
			name:    "источник счётчиков недоступен",
			body:    `{"customer_id":"` + uid + `","feature":"tickets_analyzed"}`,
			userUID: uid,
			role:    "user",
			setupMock: func(m *MockService) {
				m.On("CheckUsage", mock.Anything, uid, "tickets_analyzed", int64(0)).
					Return(nil, errors.New("redis down"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"error":"could not check usage"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/usage/check", strings.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
