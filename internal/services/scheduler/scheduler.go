// Package scheduler периодически ищет подписки, срок которых подходит
// к концу или уже истёк, и публикует уведомления в очередь.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
	"github.com/streadway/amqp"
)

// UserRepository определяет методы хранилища для поиска подписок.
type UserRepository interface {
	FindSubscriptionsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.User, error)
}

// SchedulerService ищет истекающие подписки и рассылает уведомления.
type SchedulerService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo UserRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
	}
}

// FindSubscriptionsExpiringTomorrow раз в 12 часов ищет подписки,
// истекающие в ближайшие сутки-двое, и публикует уведомления.
func (s *SchedulerService) FindSubscriptionsExpiringTomorrow(ctx context.Context, channel *amqp.Channel) {
	s.runFindExpiring(ctx, channel)

	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runFindExpiring(ctx, channel)
		}
	}
}

func (s *SchedulerService) runFindExpiring(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting scan for subscriptions expiring tomorrow")
	now := time.Now().UTC()
	users, err := s.repo.FindSubscriptionsExpiringBetween(ctx, now.Add(24*time.Hour), now.Add(48*time.Hour))
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(users))
	for _, user := range users {
		err = rabbitmq.PublishMessage(channel, rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyExpiring, user)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}

// FindSubscriptionsExpiredToday раз в сутки ищет подписки, истёкшие
// за прошедший день, и публикует уведомления.
func (s *SchedulerService) FindSubscriptionsExpiredToday(ctx context.Context, channel *amqp.Channel) {
	s.runFindExpired(ctx, channel)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runFindExpired(ctx, channel)
		}
	}
}

func (s *SchedulerService) runFindExpired(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting scan for subscriptions expired today")
	now := time.Now().UTC()
	users, err := s.repo.FindSubscriptionsExpiringBetween(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		s.log.Error("failed to find expired subscriptions", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no expired subscriptions found")
		return
	}
	s.log.Info("found expired subscriptions", "count", len(users))
	for _, user := range users {
		err = rabbitmq.PublishMessage(channel, rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyExpired, user)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
