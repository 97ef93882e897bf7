// Package read реализует HTTP-обработчик чтения статьи по ID.
//
// Handler извлекает ID из URL-параметров, берёт права доступа из контекста
// запроса и вызывает бизнес-логику, которая возвращает статью вместе с
// решением о доступе. Решение транслируется в HTTP-статус: 401 — нужен
// вход, 402 — нужна премиум-подписка, 404 — статья не существует или
// не опубликована.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Handler обрабатывает запросы на чтение статьи.
type Handler struct {
	log      *slog.Logger
	service  Service
	policy   entitlement.Policy
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики чтения статьи.
type Service interface {
	Read(ctx context.Context, id int, st entitlement.Status, policy entitlement.Policy) (*models.Article, entitlement.Decision, error)
}

// New создает новый Handler. Политика задаётся точкой монтирования:
// разные маршруты по-разному относятся к анонимному чтению бесплатных
// статей.
func New(log *slog.Logger, service Service, policy entitlement.Policy) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		policy:   policy,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Чтение статьи
// @Description Возвращает опубликованную статью с учётом прав доступа читателя.
// @Tags Articles
// @Produce  json
// @Param id path int true "ID статьи"
// @Success 200 {object} map[string]any "Статья"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Требуется вход"
// @Failure 402 {object} response.ErrorResponse "Требуется премиум-подписка"
// @Failure 404 {object} response.ErrorResponse "Статья не найдена"
// @Router /articles/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	st := middlewarectx.StatusFromContext(r.Context())

	article, decision, err := h.service.Read(r.Context(), id, st, h.policy)
	if err != nil {
		log.Error("failed to read article", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("article not found"))
		return
	}

	switch decision {
	case entitlement.Allow:
	case entitlement.DenyRequiresLogin:
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("login required"))
		return
	case entitlement.DenyRequiresUpgrade:
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Error("premium subscription required"))
		return
	case entitlement.DenyNotFound:
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("article not found"))
		return
	}

	log.Info("article read", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"article": article,
	}))
}
