package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, display_name, photo_url, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.DisplayName, user.PhotoURL,
		user.PasswordHash, user.Role).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUser(ctx, op, `WHERE username = $1`, username)
}

// GetUserByEmail возвращает профиль пользователя по email —
// граница Profile Fetch, которой пользуется сессионный адаптер.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `WHERE email = $1`, email)
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, display_name, photo_url, password_hash, role,
			      subscription_plan, subscription_start, subscription_end, created_at
			  FROM users ` + where
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var plan sql.NullString
	var subscriptionStart, subscriptionEnd sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.DisplayName, &u.PhotoURL,
		&u.PasswordHash, &u.Role, &plan, &subscriptionStart, &subscriptionEnd, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.SubscriptionPlan = plan.String
	if subscriptionStart.Valid {
		u.SubscriptionStart = &subscriptionStart.Time
	}
	if subscriptionEnd.Valid {
		u.SubscriptionEnd = &subscriptionEnd.Time
	}
	return u, nil
}

// UpdateProfile обновляет отображаемое имя и аватар пользователя,
// возвращает количество изменённых строк.
func (s *Storage) UpdateProfile(ctx context.Context, email, displayName, photoURL string) (int, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET display_name = $1, photo_url = $2 WHERE email = $3`
	result, err := s.DB.ExecContext(ctx, query, displayName, photoURL, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateUserRole меняет роль пользователя (действие администратора),
// остальные поля профиля не затрагиваются.
func (s *Storage) UpdateUserRole(ctx context.Context, email, role string) (int, error) {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $1 WHERE email = $2`
	result, err := s.DB.ExecContext(ctx, query, role, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetSubscription записывает купленную подписку: план и обе даты.
// Вызывается потоком обработки платежа после подтверждения оплаты.
func (s *Storage) SetSubscription(ctx context.Context, email, plan string, start, end time.Time) (int, error) {
	const op = "storage.SetSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_plan = $1, subscription_start = $2, subscription_end = $3
			  WHERE email = $4`
	result, err := s.DB.ExecContext(ctx, query, plan, start, end, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListUsers возвращает список пользователей с пагинацией (админская панель).
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, display_name, photo_url, password_hash, role,
			      subscription_plan, subscription_start, subscription_end, created_at
			  FROM users
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		var plan sql.NullString
		var subscriptionStart, subscriptionEnd sql.NullTime
		if err := rows.Scan(&u.UID, &u.Email, &u.Username, &u.DisplayName, &u.PhotoURL,
			&u.PasswordHash, &u.Role, &plan, &subscriptionStart, &subscriptionEnd, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.SubscriptionPlan = plan.String
		if subscriptionStart.Valid {
			u.SubscriptionStart = &subscriptionStart.Time
		}
		if subscriptionEnd.Valid {
			u.SubscriptionEnd = &subscriptionEnd.Time
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUsers возвращает общее количество пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// FindSubscriptionsExpiringBetween возвращает пользователей, чья подписка
// истекает в полуинтервале [from, to). Используется планировщиком
// уведомлений: завтрашние истечения — напоминание о продлении,
// сегодняшние — письмо о закрытии премиум-доступа.
func (s *Storage) FindSubscriptionsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.User, error) {
	const op = "storage.FindSubscriptionsExpiringBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, display_name, photo_url, password_hash, role,
			      subscription_plan, subscription_start, subscription_end, created_at
			  FROM users
			  WHERE subscription_end >= $1 AND subscription_end < $2`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		var plan sql.NullString
		var subscriptionStart, subscriptionEnd sql.NullTime
		if err := rows.Scan(&u.UID, &u.Email, &u.Username, &u.DisplayName, &u.PhotoURL,
			&u.PasswordHash, &u.Role, &plan, &subscriptionStart, &subscriptionEnd, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.SubscriptionPlan = plan.String
		if subscriptionStart.Valid {
			u.SubscriptionStart = &subscriptionStart.Time
		}
		if subscriptionEnd.Valid {
			u.SubscriptionEnd = &subscriptionEnd.Time
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
