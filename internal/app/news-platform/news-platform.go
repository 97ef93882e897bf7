// Package newsplatform собирает HTTP-приложение новостной платформы:
// хранилище, кеш, сервисы и маршруты.
package newsplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/news-platform/internal/cache"
	"github.com/magabrotheeeer/news-platform/internal/config"
	"github.com/magabrotheeeer/news-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/news-platform/internal/migrations"
	"github.com/magabrotheeeer/news-platform/internal/paymentprovider"
	articleservice "github.com/magabrotheeeer/news-platform/internal/services/article"
	authservice "github.com/magabrotheeeer/news-platform/internal/services/auth"
	subscriptionservice "github.com/magabrotheeeer/news-platform/internal/services/subscription"
	userservice "github.com/magabrotheeeer/news-platform/internal/services/user"
	"github.com/magabrotheeeer/news-platform/internal/storage"
)

// App инкапсулирует HTTP-сервер платформы и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
}

// New создает приложение: подключает Postgres и Redis, применяет
// миграции и регистрирует все маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.APIURL, cfg.SecretKey)

	authService := authservice.New(db, jwtMaker)
	articleService := articleservice.New(db, cacheRedis, logger)
	userService := userservice.New(db, logger)
	subscriptionService := subscriptionservice.New(db, providerClient, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, &Services{
		Auth:          authService,
		Article:       articleService,
		User:          userService,
		Subscription:  subscriptionService,
		Storage:       db,
		WebhookSecret: cfg.WebhookSecret,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
