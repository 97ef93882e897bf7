package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/http/response"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
)

// EntitlementService вычисляет права доступа пользователя.
type EntitlementService interface {
	Entitlement(ctx context.Context, email string, now time.Time) (entitlement.Status, error)
}

// EntitlementMiddleware кладёт в контекст права доступа текущего
// пользователя. Для анонимного запроса — нулевой Status. Ошибка загрузки
// профиля тоже даёт нулевой Status: недоказанный премиум не premium.
func EntitlementMiddleware(svc EntitlementService, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"

			var st entitlement.Status
			if email, ok := r.Context().Value(Email).(string); ok && email != "" {
				loaded, err := svc.Entitlement(r.Context(), email, time.Now())
				if err != nil {
					log.Error("failed to resolve entitlement",
						slog.String("op", op),
						slog.String("email", email),
						slog.String("request_id", middleware.GetReqID(r.Context())),
						sl.Err(err))
					st = entitlement.Status{IsAuthenticated: true}
				} else {
					st = loaded
				}
			}

			ctx := context.WithValue(r.Context(), Entitlement, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StatusFromContext возвращает права доступа, положенные
// EntitlementMiddleware. Без middleware возвращает нулевой Status.
func StatusFromContext(ctx context.Context) entitlement.Status {
	st, _ := ctx.Value(Entitlement).(entitlement.Status)
	return st
}

// RequirePremium пропускает только пользователей с действующей
// премиум-подпиской. Ставится после EntitlementMiddleware.
func RequirePremium(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequirePremium"

			st := StatusFromContext(r.Context())
			if !st.IsAuthenticated {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			if !st.IsPremium {
				log.Info("premium access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				render.Status(r, http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("premium subscription required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
