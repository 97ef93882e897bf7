// Package update реализует HTTP-обработчик редактирования статьи.
//
// Редактировать статью может её автор или администратор. После
// редактирования статья возвращается в статус pending и проходит
// модерацию заново.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/news-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Handler обрабатывает запросы на редактирование статьи.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики редактирования.
type Service interface {
	Get(ctx context.Context, id int) (*models.Article, error)
	Update(ctx context.Context, id int, req models.DummyArticle) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Редактирование статьи
// @Description Обновляет статью автора и возвращает её на модерацию.
// @Tags Articles
// @Accept  json
// @Produce  json
// @Param id path int true "ID статьи"
// @Param request body models.DummyArticle true "Новые данные статьи"
// @Success 200 {object} map[string]any "Статья обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Нет прав на редактирование"
// @Failure 404 {object} response.ErrorResponse "Статья не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /articles/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.update"

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

	var req models.DummyArticle
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if !h.authorized(w, r, log, id) {
		return
	}

	count, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update article", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update article"))
		return
	}

	log.Info("article updated", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updated": count,
		"status":  models.StatusPending,
	}))
}

// authorized проверяет, что текущий пользователь — автор статьи или
// администратор. Пишет ответ и возвращает false при отказе.
func (h *Handler) authorized(w http.ResponseWriter, r *http.Request, log *slog.Logger, id int) bool {
	email, _ := r.Context().Value(middlewarectx.Email).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to load article", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("article not found"))
		return false
	}
	if article.AuthorEmail != email && role != models.RoleAdmin {
		log.Warn("edit denied", slog.Int("id", id), slog.String("email", email))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("only the author can edit this article"))
		return false
	}
	return true
}
