// Package subscription содержит бизнес-логику премиум-подписки:
// создание платежа у провайдера и активацию подписки по факту оплаты.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/models"
	"github.com/magabrotheeeer/news-platform/internal/paymentprovider"
)

// UserRepository определяет методы хранилища, нужные подписке.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// SetSubscription выставляет план и даты подписки пользователя.
	SetSubscription(ctx context.Context, email, plan string, start, end time.Time) (int, error)
}

// PaymentProvider создает платёжные намерения у внешнего провайдера.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, req paymentprovider.PaymentIntentRequest) (*paymentprovider.PaymentIntent, error)
}

// Service реализует операции подписки.
type Service struct {
	users    UserRepository
	provider PaymentProvider
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, provider PaymentProvider, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		provider: provider,
		log:      log,
	}
}

// Plans возвращает доступные тарифные планы.
func (s *Service) Plans() []models.Plan {
	return models.Plans
}

// CreatePayment создает платёжное намерение на выбранный план.
// Email и план кладутся в метаданные, чтобы вебхук провайдера мог
// активировать подписку без собственного хранилища платежей.
func (s *Service) CreatePayment(ctx context.Context, email, planName string) (*paymentprovider.PaymentIntent, error) {
	const op = "subscription.CreatePayment"

	plan, err := models.FindPlan(planName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, paymentprovider.PaymentIntentRequest{
		Amount:   plan.Price,
		Currency: "usd",
		Metadata: map[string]string{
			"email": email,
			"plan":  plan.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment intent created",
		slog.String("email", email),
		slog.String("plan", plan.Name),
		slog.String("intent_id", intent.ID))
	return intent, nil
}

// Activate включает подписку пользователя на план начиная с now.
// Если действующая подписка ещё не истекла, новый срок добавляется
// к её окончанию, а не к now.
func (s *Service) Activate(ctx context.Context, email, planName string, now time.Time) (time.Time, error) {
	const op = "subscription.Activate"

	plan, err := models.FindPlan(planName)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	start := now
	base := now
	if u.SubscriptionEnd != nil && u.SubscriptionEnd.After(now) {
		base = *u.SubscriptionEnd
		if u.SubscriptionStart != nil {
			start = *u.SubscriptionStart
		}
	}
	end := base.Add(plan.Duration)

	if _, err := s.users.SetSubscription(ctx, email, plan.Name, start, end); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription activated",
		slog.String("email", email),
		slog.String("plan", plan.Name),
		slog.Time("end", end))
	return end, nil
}

// Status возвращает текущее состояние подписки пользователя.
func (s *Service) Status(ctx context.Context, email string, now time.Time) (*models.User, entitlement.Status, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, entitlement.Status{}, err
	}
	return u, entitlement.Evaluate(true, u.SubscriptionEnd, now), nil
}
