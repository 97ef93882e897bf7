// Package mine реализует HTTP-обработчик списка статей текущего автора.
//
// В отличие от публичной ленты возвращает статьи в любом статусе,
// включая отклонённые с причиной отклонения.
package mine

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Handler обрабатывает запросы на получение статей автора.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка статей автора.
type Service interface {
	ListMine(ctx context.Context, authorEmail string, limit, offset int) ([]*models.Article, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статьи текущего автора
// @Description Возвращает статьи автора в любом статусе, включая отклонённые.
// @Tags Articles
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список статей"
// @Failure 401 {object} response.ErrorResponse "Требуется вход"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /articles/mine [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.mine"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, ok := r.Context().Value(middlewarectx.Email).(string)
	if !ok || email == "" {
		log.Error("missing email in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	limit := parseOrDefault(r.URL.Query().Get("limit"), 20)
	offset := parseOrDefault(r.URL.Query().Get("offset"), 0)

	articles, err := h.service.ListMine(r.Context(), email, limit, offset)
	if err != nil {
		log.Error("failed to list author articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list articles"))
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
