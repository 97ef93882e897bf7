// Package setpremium реализует HTTP-обработчик установки признака
// премиум-статьи.
package setpremium

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
)

// Request — структура входных данных для смены признака премиум.
type Request struct {
	Premium bool `json:"premium"`
}

// Handler обрабатывает запросы на смену признака премиум.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики модерации.
type Service interface {
	SetPremium(ctx context.Context, id int, premium bool) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Смена признака премиум
// @Description Помечает статью как премиум или снимает пометку.
// @Tags Moderation
// @Accept  json
// @Produce  json
// @Param id path int true "ID статьи"
// @Param request body Request true "Новый признак премиум"
// @Success 200 {object} map[string]any "Признак обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /moderation/articles/{id}/premium [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.moderation.setpremium"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	count, err := h.service.SetPremium(r.Context(), id, req.Premium)
	if err != nil {
		log.Error("failed to set premium flag", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set premium flag"))
		return
	}

	log.Info("premium flag updated", slog.Int("id", id), slog.Bool("premium", req.Premium))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updated": count,
		"premium": req.Premium,
	}))
}
