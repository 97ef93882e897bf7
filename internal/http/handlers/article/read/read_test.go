package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, id int, st entitlement.Status, policy entitlement.Policy) (*models.Article, entitlement.Decision, error) {
	args := m.Called(ctx, id, st, policy)
	if res := args.Get(0); res != nil {
		return res.(*models.Article), args.Get(1).(entitlement.Decision), args.Error(2)
	}
	return nil, args.Get(1).(entitlement.Decision), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestReadHandler(t *testing.T) {
	anon := entitlement.Status{}
	premium := entitlement.Status{IsAuthenticated: true, IsPremium: true}

	tests := []struct {
		name           string
		idParam        string
		status         entitlement.Status
		policy         entitlement.Policy
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное чтение статьи",
			idParam: "123",
			status:  premium,
			setupMock: func(m *MockService) {
				article := &models.Article{
					ID:     123,
					Title:  "Going Premium",
					Status: models.StatusPublished,
				}
				m.On("Read", mock.Anything, 123, premium, entitlement.Policy{}).
					Return(article, entitlement.Allow, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Going Premium"`,
		},
		{
			name:    "премиум-статья без подписки даёт 402",
			idParam: "7",
			status:  entitlement.Status{IsAuthenticated: true},
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, 7, entitlement.Status{IsAuthenticated: true}, entitlement.Policy{}).
					Return(nil, entitlement.DenyRequiresUpgrade, nil)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `premium subscription required`,
		},
		{
			name:    "строгая точка вызова требует входа",
			idParam: "7",
			status:  anon,
			policy:  entitlement.Policy{RequireLogin: true},
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, 7, anon, entitlement.Policy{RequireLogin: true}).
					Return(nil, entitlement.DenyRequiresLogin, nil)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `login required`,
		},
		{
			name:    "неопубликованная статья отдаёт 404",
			idParam: "8",
			status:  premium,
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, 8, premium, entitlement.Policy{}).
					Return(nil, entitlement.DenyNotFound, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `article not found`,
		},
		{
			name:           "некорректный id в URL",
			idParam:        "abc",
			status:         anon,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name:    "ошибка сервиса чтения",
			idParam: "777",
			status:  anon,
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, 777, anon, entitlement.Policy{}).
					Return(nil, entitlement.DenyNotFound, errors.New("db error"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `article not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService, tt.policy)

			req := httptest.NewRequest(http.MethodGet, "/articles/"+tt.idParam, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.idParam)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.Entitlement, tt.status)
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
