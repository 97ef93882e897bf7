// Package premium реализует HTTP-обработчик ленты премиум-статей.
//
// Маршрут монтируется за RequirePremium, поэтому сюда попадают только
// запросы пользователей с действующей подпиской.
package premium

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Handler обрабатывает запросы на получение премиум-ленты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики премиум-ленты.
type Service interface {
	ListPremium(ctx context.Context, limit, offset int) ([]*models.Article, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Лента премиум-статей
// @Description Возвращает опубликованные премиум-статьи. Требует действующей подписки.
// @Tags Articles
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список статей"
// @Failure 401 {object} response.ErrorResponse "Требуется вход"
// @Failure 402 {object} response.ErrorResponse "Требуется премиум-подписка"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /articles/premium [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.premium"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := parseOrDefault(r.URL.Query().Get("limit"), 20)
	offset := parseOrDefault(r.URL.Query().Get("offset"), 0)

	articles, err := h.service.ListPremium(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list premium articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list premium articles"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"articles": articles,
		"count":    len(articles),
	}))
}

func parseOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
