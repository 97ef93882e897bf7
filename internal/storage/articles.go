package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Теги хранятся одной текстовой колонкой через запятую.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

const articleColumns = `id, title, content, image_url, tags, publisher_name, publisher_logo,
			      author_email, author_name, premium, status, decline_reason, view_count, posted_at`

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{}
	var tags string
	var declineReason sql.NullString
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.ImageURL, &tags,
		&a.PublisherName, &a.PublisherLogo, &a.AuthorEmail, &a.AuthorName,
		&a.Premium, &a.Status, &declineReason, &a.ViewCount, &a.PostedAt); err != nil {
		return nil, err
	}
	a.Tags = splitTags(tags)
	a.DeclineReason = declineReason.String
	return a, nil
}

// CreateArticle вставляет новую статью и возвращает её ID.
// Статья создаётся в статусе pending и ждёт решения модератора.
func (s *Storage) CreateArticle(ctx context.Context, a models.Article) (int, error) {
	const op = "storage.CreateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO articles (title, content, image_url, tags, publisher_name,
			      publisher_logo, author_email, author_name, premium, status, posted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		a.Title, a.Content, a.ImageURL, joinTags(a.Tags), a.PublisherName,
		a.PublisherLogo, a.AuthorEmail, a.AuthorName, a.Premium, a.Status, a.PostedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetArticle возвращает статью по её ID.
func (s *Storage) GetArticle(ctx context.Context, id int) (*models.Article, error) {
	const op = "storage.GetArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	a, err := scanArticle(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// UpdateArticle обновляет содержимое статьи и возвращает количество
// изменённых строк. После правки статья возвращается на модерацию.
func (s *Storage) UpdateArticle(ctx context.Context, a models.Article, id int) (int, error) {
	const op = "storage.UpdateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET title = $1, content = $2, image_url = $3, tags = $4,
			      publisher_name = $5, publisher_logo = $6, status = $7, decline_reason = NULL
			  WHERE id = $8`
	result, err := s.DB.ExecContext(ctx, query,
		a.Title, a.Content, a.ImageURL, joinTags(a.Tags),
		a.PublisherName, a.PublisherLogo, models.StatusPending, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveArticle удаляет статью по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveArticle(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPublished возвращает опубликованные статьи с фильтрами и пагинацией.
// Выдача общедоступна: премиум-статьи присутствуют в списке, доступ
// к их содержимому проверяется по месту чтения.
func (s *Storage) ListPublished(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	const op = "storage.ListPublished"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE status = $1
			    AND ($2 = '' OR title ILIKE '%' || $2 || '%')
			    AND ($3 = '' OR tags ILIKE '%' || $3 || '%')
			    AND ($4 = '' OR publisher_name = $4)
			  ORDER BY posted_at DESC
			  LIMIT $5 OFFSET $6`
	rows, err := s.DB.QueryContext(ctx, query,
		models.StatusPublished, filter.Search, filter.Tag, filter.Publisher, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectArticles(op, rows)
}

// ListPremiumPublished возвращает опубликованные премиум-статьи.
func (s *Storage) ListPremiumPublished(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	const op = "storage.ListPremiumPublished"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE status = $1 AND premium = true
			  ORDER BY posted_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusPublished, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectArticles(op, rows)
}

// ListByAuthor возвращает все статьи автора в любом статусе.
func (s *Storage) ListByAuthor(ctx context.Context, authorEmail string, limit, offset int) ([]*models.Article, error) {
	const op = "storage.ListByAuthor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE author_email = $1
			  ORDER BY posted_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, authorEmail, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectArticles(op, rows)
}

// ListPending возвращает очередь статей на модерацию.
func (s *Storage) ListPending(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	const op = "storage.ListPending"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE status = $1
			  ORDER BY posted_at
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectArticles(op, rows)
}

// ListTrending возвращает опубликованные статьи с наибольшим числом просмотров.
func (s *Storage) ListTrending(ctx context.Context, limit int) ([]*models.Article, error) {
	const op = "storage.ListTrending"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles
			  WHERE status = $1
			  ORDER BY view_count DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectArticles(op, rows)
}

// SetArticleStatus меняет статус статьи по решению модератора.
// Причина заполняется только при отклонении.
func (s *Storage) SetArticleStatus(ctx context.Context, id int, status, declineReason string) (int, error) {
	const op = "storage.SetArticleStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles SET status = $1, decline_reason = NULLIF($2, '') WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, status, declineReason, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetArticlePremium выставляет или снимает признак премиум-статьи.
func (s *Storage) SetArticlePremium(ctx context.Context, id int, premium bool) (int, error) {
	const op = "storage.SetArticlePremium"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `UPDATE articles SET premium = $1 WHERE id = $2`, premium, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// IncrementViewCount увеличивает счётчик просмотров статьи.
func (s *Storage) IncrementViewCount(ctx context.Context, id int) error {
	const op = "storage.IncrementViewCount"
	if _, err := s.DB.ExecContext(ctx, `UPDATE articles SET view_count = view_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountArticlesByStatus возвращает количество статей в каждом статусе
// (данные для административной панели).
func (s *Storage) CountArticlesByStatus(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountArticlesByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM articles GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return counts, nil
}

// CountPremiumArticles возвращает количество опубликованных премиум-статей.
func (s *Storage) CountPremiumArticles(ctx context.Context) (int, error) {
	const op = "storage.CountPremiumArticles"
	var count int
	query := `SELECT COUNT(*) FROM articles WHERE status = $1 AND premium = true`
	if err := s.DB.QueryRowContext(ctx, query, models.StatusPublished).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func collectArticles(op string, rows *sql.Rows) ([]*models.Article, error) {
	defer func() { _ = rows.Close() }()

	var result []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
