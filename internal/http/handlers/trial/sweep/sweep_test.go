package sweep

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/supportiq/entitlement-service/internal/models"
)

// MockService реализует интерфейс sweep.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Sweep(ctx context.Context) ([]*models.Trial, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]*models.Trial), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSweepHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	now := time.Now().UTC()

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "переходы выполнены",
			setupMock: func(m *MockService) {
				transitioned := []*models.Trial{
					{ID: 1, UserUID: "uid-1", Status: models.TrialStatusExpired, ExpiresAt: now.Add(-time.Hour)},
					{ID: 2, UserUID: "uid-2", Status: models.TrialStatusExpired, ExpiresAt: now.Add(-2 * time.Hour)},
				}
				m.On("Sweep", mock.Anything).Return(transitioned, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":2`,
		},
		{
			name: "нет кандидатов",
			setupMock: func(m *MockService) {
				m.On("Sweep", mock.Anything).Return([]*models.Trial{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":0`,
		},
		{
			name: "nil от сервиса рендерится пустым списком",
			setupMock: func(m *MockService) {
				m.On("Sweep", mock.Anything).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"trials":[]`,
		},
		{
			name: "хранилище недоступно",
			setupMock: func(m *MockService) {
				m.On("Sweep", mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"error":"could not run sweep"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/internal/sweep", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
