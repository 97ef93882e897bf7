// Package article содержит бизнес-логику работы со статьями:
// создание, чтение с учётом прав доступа, модерацию и кеширование
// горячих выборок.
package article

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// trendingLimit — размер карусели трендов.
const trendingLimit = 6

// ArticleRepository определяет методы для работы со статьями в хранилище.
type ArticleRepository interface {
	// CreateArticle добавляет новую статью и возвращает её ID.
	CreateArticle(ctx context.Context, a models.Article) (int, error)
	// GetArticle возвращает статью по ID.
	GetArticle(ctx context.Context, id int) (*models.Article, error)
	// UpdateArticle обновляет содержимое статьи по ID.
	UpdateArticle(ctx context.Context, a models.Article, id int) (int, error)
	// RemoveArticle удаляет статью по ID.
	RemoveArticle(ctx context.Context, id int) (int, error)
	// ListPublished возвращает опубликованные статьи по фильтру.
	ListPublished(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	// ListPremiumPublished возвращает опубликованные премиум-статьи.
	ListPremiumPublished(ctx context.Context, limit, offset int) ([]*models.Article, error)
	// ListByAuthor возвращает статьи автора в любом статусе.
	ListByAuthor(ctx context.Context, authorEmail string, limit, offset int) ([]*models.Article, error)
	// ListPending возвращает очередь модерации.
	ListPending(ctx context.Context, limit, offset int) ([]*models.Article, error)
	// ListTrending возвращает статьи с наибольшим числом просмотров.
	ListTrending(ctx context.Context, limit int) ([]*models.Article, error)
	// SetArticleStatus меняет статус статьи.
	SetArticleStatus(ctx context.Context, id int, status, declineReason string) (int, error)
	// SetArticlePremium выставляет признак премиум-статьи.
	SetArticlePremium(ctx context.Context, id int, premium bool) (int, error)
	// IncrementViewCount увеличивает счётчик просмотров.
	IncrementViewCount(ctx context.Context, id int) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику работы со статьями, включая кеширование.
type Service struct {
	repo  ArticleRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ArticleRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую статью в статусе pending и возвращает её ID.
func (s *Service) Create(ctx context.Context, authorEmail, authorName string, req models.DummyArticle) (int, error) {
	a := models.Article{
		Title:         req.Title,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
		Tags:          req.Tags,
		PublisherName: req.PublisherName,
		PublisherLogo: req.PublisherLogo,
		AuthorEmail:   authorEmail,
		AuthorName:    authorName,
		Status:        models.StatusPending,
		PostedAt:      time.Now().UTC(),
	}

	id, err := s.repo.CreateArticle(ctx, a)
	if err != nil {
		return 0, err
	}

	s.log.Info("created new article", slog.Int("id", id), slog.String("author", authorEmail))
	return id, nil
}

// Read возвращает статью по ID вместе с решением о доступе для переданных
// прав. Счётчик просмотров увеличивается только при Allow.
// Политика точки вызова передаётся снаружи: лента и страница статьи
// по-разному относятся к анонимному просмотру бесплатного контента.
func (s *Service) Read(ctx context.Context, id int, st entitlement.Status, policy entitlement.Policy) (*models.Article, entitlement.Decision, error) {
	var a *models.Article
	cacheKey := fmt.Sprintf("article:%d", id)
	found, err := s.cache.Get(cacheKey, &a)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
		found = false
	}
	if !found {
		a, err = s.repo.GetArticle(ctx, id)
		if err != nil {
			return nil, entitlement.DenyNotFound, err
		}
		if err := s.cache.Set(cacheKey, a, time.Hour); err != nil {
			s.log.Warn("failed to cache article", slog.String("key", cacheKey), sl.Err(err))
		}
	}

	decision := entitlement.Decide(a, st, policy)
	if decision != entitlement.Allow {
		s.log.Info("article access denied", slog.Int("id", id), sl.Decision(decision.String()))
		return nil, decision, nil
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.log.Warn("failed to increment view count", slog.Int("id", id), sl.Err(err))
	}
	return a, entitlement.Allow, nil
}

// Update обновляет статью и возвращает её на модерацию. Кеш инвалидируется.
func (s *Service) Update(ctx context.Context, id int, req models.DummyArticle) (int, error) {
	a := models.Article{
		Title:         req.Title,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
		Tags:          req.Tags,
		PublisherName: req.PublisherName,
		PublisherLogo: req.PublisherLogo,
	}
	count, err := s.repo.UpdateArticle(ctx, a, id)
	if err != nil {
		return 0, err
	}
	s.invalidate(id)
	return count, nil
}

// Remove удаляет статью по ID и инвалидирует кеш.
func (s *Service) Remove(ctx context.Context, id int) (int, error) {
	count, err := s.repo.RemoveArticle(ctx, id)
	if err != nil {
		return 0, err
	}
	s.invalidate(id)
	return count, nil
}

// Get возвращает статью без проверки доступа — для автора и модераторов.
func (s *Service) Get(ctx context.Context, id int) (*models.Article, error) {
	return s.repo.GetArticle(ctx, id)
}

// ListPublished возвращает опубликованные статьи по фильтру.
func (s *Service) ListPublished(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	return s.repo.ListPublished(ctx, filter)
}

// ListPremium возвращает опубликованные премиум-статьи.
func (s *Service) ListPremium(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.repo.ListPremiumPublished(ctx, limit, offset)
}

// ListMine возвращает статьи автора в любом статусе.
func (s *Service) ListMine(ctx context.Context, authorEmail string, limit, offset int) ([]*models.Article, error) {
	return s.repo.ListByAuthor(ctx, authorEmail, limit, offset)
}

// ListPending возвращает очередь модерации.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.repo.ListPending(ctx, limit, offset)
}

// Trending возвращает статьи с наибольшим числом просмотров, кешируя
// выборку: счётчики просмотров меняются часто, точность карусели
// не критична.
func (s *Service) Trending(ctx context.Context) ([]*models.Article, error) {
	const cacheKey = "articles:trending"

	var result []*models.Article
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListTrending(ctx, trendingLimit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, 5*time.Minute); err != nil {
		s.log.Warn("failed to cache trending articles", sl.Err(err))
	}
	return result, nil
}

// Approve публикует статью по решению модератора.
func (s *Service) Approve(ctx context.Context, id int) (int, error) {
	count, err := s.repo.SetArticleStatus(ctx, id, models.StatusPublished, "")
	if err != nil {
		return 0, err
	}
	s.log.Info("article approved", slog.Int("id", id))
	s.invalidate(id)
	return count, nil
}

// Decline отклоняет статью с указанием причины.
func (s *Service) Decline(ctx context.Context, id int, reason string) (int, error) {
	count, err := s.repo.SetArticleStatus(ctx, id, models.StatusDeclined, reason)
	if err != nil {
		return 0, err
	}
	s.log.Info("article declined", slog.Int("id", id))
	s.invalidate(id)
	return count, nil
}

// SetPremium выставляет или снимает признак премиум-статьи.
func (s *Service) SetPremium(ctx context.Context, id int, premium bool) (int, error) {
	count, err := s.repo.SetArticlePremium(ctx, id, premium)
	if err != nil {
		return 0, err
	}
	s.invalidate(id)
	return count, nil
}

func (s *Service) invalidate(id int) {
	cacheKey := fmt.Sprintf("article:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if err := s.cache.Invalidate("articles:trending"); err != nil {
		s.log.Warn("failed to invalidate trending cache", sl.Err(err))
	}
}
