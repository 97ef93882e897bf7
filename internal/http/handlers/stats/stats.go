// Package stats реализует HTTP-обработчик сводной статистики платформы
// для административной панели.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Handler обрабатывает запросы на получение статистики.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс источника статистики. Ему удовлетворяет
// слой хранилища напрямую.
type Service interface {
	CountArticlesByStatus(ctx context.Context) (map[string]int, error)
	CountPremiumArticles(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика платформы
// @Description Возвращает счётчики статей по статусам, премиум-статей и пользователей.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Статистика"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	counts, err := h.service.CountArticlesByStatus(r.Context())
	if err != nil {
		log.Error("failed to count articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load stats"))
		return
	}
	for _, status := range []string{models.StatusPending, models.StatusPublished, models.StatusDeclined} {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}

	premium, err := h.service.CountPremiumArticles(r.Context())
	if err != nil {
		log.Error("failed to count premium articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load stats"))
		return
	}

	users, err := h.service.CountUsers(r.Context())
	if err != nil {
		log.Error("failed to count users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load stats"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"articles": counts,
		"premium":  premium,
		"users":    users,
	}))
}
