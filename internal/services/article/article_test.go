package article

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateArticle(ctx context.Context, a models.Article) (int, error) {
	args := m.Called(ctx, a)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetArticle(ctx context.Context, id int) (*models.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}
func (m *RepoMock) UpdateArticle(ctx context.Context, a models.Article, id int) (int, error) {
	args := m.Called(ctx, a, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveArticle(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListPublished(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) ListPremiumPublished(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) ListByAuthor(ctx context.Context, authorEmail string, limit, offset int) ([]*models.Article, error) {
	args := m.Called(ctx, authorEmail, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) ListPending(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) ListTrending(ctx context.Context, limit int) ([]*models.Article, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) SetArticleStatus(ctx context.Context, id int, status, declineReason string) (int, error) {
	args := m.Called(ctx, id, status, declineReason)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) SetArticlePremium(ctx context.Context, id int, premium bool) (int, error) {
	args := m.Called(ctx, id, premium)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) IncrementViewCount(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestArticleService_Create(t *testing.T) {
	req := models.DummyArticle{
		Title:         "Going Premium",
		Content:       "long body",
		Tags:          []string{"go", "news"},
		PublisherName: "Daily Gopher",
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantID     int
		wantErr    bool
	}{
		{
			name: "success create pending",
			setupMocks: func(r *RepoMock) {
				r.On("CreateArticle", mock.Anything, mock.MatchedBy(func(a models.Article) bool {
					return a.Title == req.Title &&
						a.Status == models.StatusPending &&
						a.AuthorEmail == "alice@example.com" &&
						!a.Premium
				})).Return(42, nil).Once()
			},
			wantID:  42,
			wantErr: false,
		},
		{
			name: "repo error",
			setupMocks: func(r *RepoMock) {
				r.On("CreateArticle", mock.Anything, mock.Anything).Return(0, errors.New("db error")).Once()
			},
			wantID:  0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := New(repo, cache, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.Create(context.Background(), "alice@example.com", "Alice", req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestArticleService_Read(t *testing.T) {
	free := &models.Article{ID: 1, Title: "Free", Status: models.StatusPublished}
	premium := &models.Article{ID: 2, Title: "Paid", Status: models.StatusPublished, Premium: true}
	pending := &models.Article{ID: 3, Title: "Draft", Status: models.StatusPending}

	authPremium := entitlement.Status{IsAuthenticated: true, IsPremium: true}
	authFree := entitlement.Status{IsAuthenticated: true}
	anon := entitlement.Status{}

	tests := []struct {
		name         string
		id           int
		article      *models.Article
		repoErr      error
		st           entitlement.Status
		policy       entitlement.Policy
		wantDecision entitlement.Decision
		wantViewed   bool
		wantErr      bool
	}{
		{
			name:         "free article allowed for anonymous",
			id:           1,
			article:      free,
			st:           anon,
			wantDecision: entitlement.Allow,
			wantViewed:   true,
		},
		{
			name:         "free article requires login at strict call site",
			id:           1,
			article:      free,
			st:           anon,
			policy:       entitlement.Policy{RequireLogin: true},
			wantDecision: entitlement.DenyRequiresLogin,
		},
		{
			name:         "premium article denied without entitlement",
			id:           2,
			article:      premium,
			st:           authFree,
			wantDecision: entitlement.DenyRequiresUpgrade,
		},
		{
			name:         "premium article allowed with entitlement",
			id:           2,
			article:      premium,
			st:           authPremium,
			wantDecision: entitlement.Allow,
			wantViewed:   true,
		},
		{
			name:         "pending article hidden even from premium",
			id:           3,
			article:      pending,
			st:           authPremium,
			wantDecision: entitlement.DenyNotFound,
		},
		{
			name:         "repo error",
			id:           9,
			repoErr:      errors.New("not found"),
			st:           authPremium,
			wantDecision: entitlement.DenyNotFound,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := New(repo, cache, newNoopLogger())

			cache.On("Get", mock.Anything, mock.Anything).Return(false, nil).Once()
			repo.On("GetArticle", mock.Anything, tt.id).Return(tt.article, tt.repoErr).Once()
			if tt.repoErr == nil {
				cache.On("Set", mock.Anything, mock.Anything, time.Hour).Return(nil).Once()
			}
			if tt.wantViewed {
				repo.On("IncrementViewCount", mock.Anything, tt.id).Return(nil).Once()
			}

			got, decision, err := svc.Read(context.Background(), tt.id, tt.st, tt.policy)
			assert.Equal(t, tt.wantDecision, decision)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.wantDecision == entitlement.Allow {
				assert.Equal(t, tt.article, got)
			} else {
				assert.Nil(t, got)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestArticleService_Read_CacheHit(t *testing.T) {
	cached := &models.Article{ID: 7, Title: "Cached", Status: models.StatusPublished}

	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	cache.On("Get", "article:7", mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		ptrPtr := args.Get(1).(**models.Article)
		*ptrPtr = cached
	}).Once()
	repo.On("IncrementViewCount", mock.Anything, 7).Return(nil).Once()

	got, decision, err := svc.Read(context.Background(), 7, entitlement.Status{}, entitlement.Policy{})
	assert.NoError(t, err)
	assert.Equal(t, entitlement.Allow, decision)
	assert.Equal(t, cached, got)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestArticleService_Trending(t *testing.T) {
	articles := []*models.Article{
		{ID: 1, Title: "Hot", Status: models.StatusPublished, ViewCount: 100},
		{ID: 2, Title: "Warm", Status: models.StatusPublished, ViewCount: 50},
	}

	t.Run("cache miss loads from repo", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		cache.On("Get", "articles:trending", mock.Anything).Return(false, nil).Once()
		repo.On("ListTrending", mock.Anything, trendingLimit).Return(articles, nil).Once()
		cache.On("Set", "articles:trending", articles, 5*time.Minute).Return(nil).Once()

		got, err := svc.Trending(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, articles, got)

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips repo", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		cache.On("Get", "articles:trending", mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
			ptr := args.Get(1).(*[]*models.Article)
			*ptr = articles
		}).Once()

		got, err := svc.Trending(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, articles, got)

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache error falls back to repo", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		cache.On("Get", "articles:trending", mock.Anything).Return(false, errors.New("redis down")).Once()
		repo.On("ListTrending", mock.Anything, trendingLimit).Return(articles, nil).Once()
		cache.On("Set", "articles:trending", articles, 5*time.Minute).Return(nil).Once()

		got, err := svc.Trending(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, articles, got)
	})
}

func TestArticleService_Moderation(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		call       func(svc *Service) (int, error)
		wantCount  int
		wantErr    bool
	}{
		{
			name: "approve publishes",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("SetArticleStatus", mock.Anything, 1, models.StatusPublished, "").Return(1, nil).Once()
				c.On("Invalidate", "article:1").Return(nil).Once()
				c.On("Invalidate", "articles:trending").Return(nil).Once()
			},
			call: func(svc *Service) (int, error) {
				return svc.Approve(context.Background(), 1)
			},
			wantCount: 1,
		},
		{
			name: "decline keeps reason",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("SetArticleStatus", mock.Anything, 2, models.StatusDeclined, "plagiarism").Return(1, nil).Once()
				c.On("Invalidate", "article:2").Return(nil).Once()
				c.On("Invalidate", "articles:trending").Return(nil).Once()
			},
			call: func(svc *Service) (int, error) {
				return svc.Decline(context.Background(), 2, "plagiarism")
			},
			wantCount: 1,
		},
		{
			name: "set premium",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("SetArticlePremium", mock.Anything, 3, true).Return(1, nil).Once()
				c.On("Invalidate", "article:3").Return(nil).Once()
				c.On("Invalidate", "articles:trending").Return(nil).Once()
			},
			call: func(svc *Service) (int, error) {
				return svc.SetPremium(context.Background(), 3, true)
			},
			wantCount: 1,
		},
		{
			name: "approve repo error skips invalidation",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("SetArticleStatus", mock.Anything, 4, models.StatusPublished, "").Return(0, errors.New("db error")).Once()
			},
			call: func(svc *Service) (int, error) {
				return svc.Approve(context.Background(), 4)
			},
			wantErr: true,
		},
		{
			name: "cache invalidate error does not fail remove",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("RemoveArticle", mock.Anything, 5).Return(1, nil).Once()
				c.On("Invalidate", "article:5").Return(errors.New("cache fail")).Once()
				c.On("Invalidate", "articles:trending").Return(nil).Once()
			},
			call: func(svc *Service) (int, error) {
				return svc.Remove(context.Background(), 5)
			},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := New(repo, cache, newNoopLogger())

			tt.setupMocks(repo, cache)

			count, err := tt.call(svc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantCount, count)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}
