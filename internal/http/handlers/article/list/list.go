// Package list реализует HTTP-обработчик публичной ленты статей.
//
// Поддерживает фильтры поиска по заголовку, тегу и издателю, а также
// пагинацию через query-параметры limit и offset.
package list

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

// Handler обрабатывает запросы на получение ленты статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики ленты.
type Service interface {
	ListPublished(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Лента опубликованных статей
// @Description Возвращает опубликованные статьи с фильтрами и пагинацией.
// @Tags Articles
// @Produce  json
// @Param search query string false "Поиск по заголовку"
// @Param tag query string false "Фильтр по тегу"
// @Param publisher query string false "Фильтр по издателю"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список статей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /articles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.ArticleFilter{
		Search:    r.URL.Query().Get("search"),
		Tag:       r.URL.Query().Get("tag"),
		Publisher: r.URL.Query().Get("publisher"),
		Limit:     parseOrDefault(r.URL.Query().Get("limit"), 20),
		Offset:    parseOrDefault(r.URL.Query().Get("offset"), 0),
	}

	articles, err := h.service.ListPublished(r.Context(), filter)
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list articles"))
		return
	}

	log.Info("articles listed", slog.Int("count", len(articles)))
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
