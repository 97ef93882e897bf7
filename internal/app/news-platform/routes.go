// Package newsplatform предоставляет маршруты для основного приложения.
package newsplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/article/create"
	articlelist "github.com/magabrotheeeer/news-platform/internal/http/handlers/article/list"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/article/mine"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/article/premium"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/article/read"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/article/remove"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/article/trending"
	articleupdate "github.com/magabrotheeeer/news-platform/internal/http/handlers/article/update"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/moderation/approve"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/moderation/decline"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/moderation/pending"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/moderation/setpremium"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/stats"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/subscription/status"
	userlist "github.com/magabrotheeeer/news-platform/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/news-platform/internal/http/handlers/user/setrole"
	userupdate "github.com/magabrotheeeer/news-platform/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/news-platform/internal/http/middlewarectx"
	articleservice "github.com/magabrotheeeer/news-platform/internal/services/article"
	authservice "github.com/magabrotheeeer/news-platform/internal/services/auth"
	subscriptionservice "github.com/magabrotheeeer/news-platform/internal/services/subscription"
	userservice "github.com/magabrotheeeer/news-platform/internal/services/user"
	"github.com/magabrotheeeer/news-platform/internal/storage"
)

// Services содержит зависимости маршрутов приложения.
type Services struct {
	Auth          *authservice.AuthService
	Article       *articleservice.Service
	User          *userservice.Service
	Subscription  *subscriptionservice.Service
	Storage       *storage.Storage
	WebhookSecret string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(rate.Limit(20), 40)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, svc.Storage).ServeHTTP)

		// Webhook endpoint (подпись вместо аутентификации)
		r.Post("/payments/webhook", paymentwebhook.New(logger, svc.Subscription, svc.WebhookSecret).ServeHTTP)

		// Публичное чтение: аноним проходит, права кладутся в контекст.
		// Страница статьи требует входа, лента и тренды — нет, поэтому
		// read получает политику RequireLogin, а отказ исходит от самой
		// проверки доступа, не от middleware.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.EntitlementMiddleware(svc.User, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Get("/articles", articlelist.New(logger, svc.Article).ServeHTTP)
			r.Get("/articles/trending", trending.New(logger, svc.Article).ServeHTTP)
			r.Get("/articles/{id}", read.New(logger, svc.Article, entitlement.Policy{RequireLogin: true}).ServeHTTP)
			// Граница Profile Fetch: чтение профиля открыто, его читает
			// сессионный адаптер без токена.
			r.Get("/users/{email}", profile.New(logger, svc.User).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.EntitlementMiddleware(svc.User, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Post("/articles", create.New(logger, svc.Article).ServeHTTP)
			r.Get("/articles/mine", mine.New(logger, svc.Article).ServeHTTP)
			r.Put("/articles/{id}", articleupdate.New(logger, svc.Article).ServeHTTP)
			r.Delete("/articles/{id}", remove.New(logger, svc.Article).ServeHTTP)

			r.With(middlewarectx.RequirePremium(logger)).
				Get("/articles/premium", premium.New(logger, svc.Article).ServeHTTP)

			r.Put("/users/me", userupdate.New(logger, svc.User).ServeHTTP)

			r.Post("/payments", paymentcreate.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/subscription", status.New(logger, svc.Subscription).ServeHTTP)
		})

		// Модерация: только модераторы и администраторы
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RequireRole(logger, "moderator", "admin"))
			r.Get("/moderation/articles", pending.New(logger, svc.Article).ServeHTTP)
			r.Post("/moderation/articles/{id}/approve", approve.New(logger, svc.Article).ServeHTTP)
			r.Post("/moderation/articles/{id}/decline", decline.New(logger, svc.Article).ServeHTTP)
			r.Post("/moderation/articles/{id}/premium", setpremium.New(logger, svc.Article).ServeHTTP)
		})

		// Администрирование
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RequireRole(logger, "admin"))
			r.Get("/users", userlist.New(logger, svc.User).ServeHTTP)
			r.Post("/users/{email}/role", setrole.New(logger, svc.User).ServeHTTP)
			r.Get("/stats", stats.New(logger, svc.Storage).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
