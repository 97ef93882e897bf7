// Package health реализует HTTP-обработчик проверки живости сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
)

// Readiness проверяет готовность зависимостей сервиса.
type Readiness interface {
	CheckDatabaseReady(ctx context.Context) error
}

// Handler обрабатывает запросы проверки живости.
type Handler struct {
	log       *slog.Logger
	readiness Readiness
}

// New создает новый Handler.
func New(log *slog.Logger, readiness Readiness) *Handler {
	return &Handler{
		log:       log,
		readiness: readiness,
	}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Description Возвращает ok, если сервис и база данных готовы.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "Зависимости не готовы"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.readiness.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
