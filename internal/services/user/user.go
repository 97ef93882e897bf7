// Package user содержит бизнес-логику работы с профилями пользователей.
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile обновляет отображаемое имя и аватар пользователя.
	UpdateProfile(ctx context.Context, email, displayName, photoURL string) (int, error)
	// UpdateUserRole меняет роль пользователя.
	UpdateUserRole(ctx context.Context, email, role string) (int, error)
	// ListUsers возвращает страницу пользователей.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// CountUsers возвращает общее число пользователей.
	CountUsers(ctx context.Context) (int, error)
}

// Service реализует операции над профилями.
type Service struct {
	users UserRepository
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, log *slog.Logger) *Service {
	return &Service{users: users, log: log}
}

// GetProfile возвращает профиль пользователя по email.
func (s *Service) GetProfile(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetUserByEmail(ctx, email)
}

// Entitlement вычисляет права доступа пользователя на момент now.
// Единственный источник премиум-статуса — дата окончания подписки.
func (s *Service) Entitlement(ctx context.Context, email string, now time.Time) (entitlement.Status, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return entitlement.Status{}, err
	}
	return entitlement.Evaluate(true, u.SubscriptionEnd, now), nil
}

// UpdateProfile обновляет профиль и возвращает его свежую копию,
// чтобы вызывающая сторона могла сразу пересчитать права.
func (s *Service) UpdateProfile(ctx context.Context, email string, req models.DummyUpdateProfile) (*models.User, error) {
	if _, err := s.users.UpdateProfile(ctx, email, req.DisplayName, req.PhotoURL); err != nil {
		return nil, err
	}
	s.log.Info("profile updated", slog.String("email", email))
	return s.users.GetUserByEmail(ctx, email)
}

// SetRole меняет роль пользователя. Валидность роли проверяется
// валидатором запроса на уровне обработчика.
func (s *Service) SetRole(ctx context.Context, email, role string) (int, error) {
	count, err := s.users.UpdateUserRole(ctx, email, role)
	if err != nil {
		return 0, err
	}
	s.log.Info("role updated", slog.String("email", email), slog.String("role", role))
	return count, nil
}

// ListUsers возвращает страницу пользователей вместе с их общим числом.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
