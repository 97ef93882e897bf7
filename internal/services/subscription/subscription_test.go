package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/models"
	"github.com/magabrotheeeer/news-platform/internal/paymentprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) SetSubscription(ctx context.Context, email, plan string, start, end time.Time) (int, error) {
	args := m.Called(ctx, email, plan, start, end)
	return args.Int(0), args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreatePaymentIntent(ctx context.Context, req paymentprovider.PaymentIntentRequest) (*paymentprovider.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PaymentIntent), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSubscriptionService_CreatePayment(t *testing.T) {
	tests := []struct {
		name       string
		plan       string
		setupMocks func(p *ProviderMock)
		wantID     string
		wantErr    bool
	}{
		{
			name: "success with metadata",
			plan: "5days",
			setupMocks: func(p *ProviderMock) {
				p.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(req paymentprovider.PaymentIntentRequest) bool {
					return req.Amount == 500 &&
						req.Currency == "usd" &&
						req.Metadata["email"] == "a@b.c" &&
						req.Metadata["plan"] == "5days"
				})).Return(&paymentprovider.PaymentIntent{ID: "pi_1", Status: "requires_payment_method"}, nil).Once()
			},
			wantID: "pi_1",
		},
		{
			name:       "unknown plan",
			plan:       "lifetime",
			setupMocks: func(_ *ProviderMock) {},
			wantErr:    true,
		},
		{
			name: "provider error",
			plan: "minute",
			setupMocks: func(p *ProviderMock) {
				p.On("CreatePaymentIntent", mock.Anything, mock.Anything).Return(nil, errors.New("provider down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			provider := new(ProviderMock)
			svc := New(repo, provider, newNoopLogger())

			tt.setupMocks(provider)

			intent, err := svc.CreatePayment(context.Background(), "a@b.c", tt.plan)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, intent.ID)
			}

			provider.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Activate(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	t.Run("fresh subscription starts now", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(ProviderMock), newNoopLogger())

		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(&models.User{Email: "a@b.c"}, nil).Once()
		wantEnd := now.Add(5 * 24 * time.Hour)
		repo.On("SetSubscription", mock.Anything, "a@b.c", "5days", now, wantEnd).Return(1, nil).Once()

		end, err := svc.Activate(context.Background(), "a@b.c", "5days", now)
		assert.NoError(t, err)
		assert.Equal(t, wantEnd, end)

		repo.AssertExpectations(t)
	})

	t.Run("active subscription extends from its end", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(ProviderMock), newNoopLogger())

		start := now.Add(-24 * time.Hour)
		currentEnd := now.Add(48 * time.Hour)
		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(&models.User{
			Email:             "a@b.c",
			SubscriptionStart: &start,
			SubscriptionEnd:   &currentEnd,
		}, nil).Once()
		wantEnd := currentEnd.Add(10 * 24 * time.Hour)
		repo.On("SetSubscription", mock.Anything, "a@b.c", "10days", start, wantEnd).Return(1, nil).Once()

		end, err := svc.Activate(context.Background(), "a@b.c", "10days", now)
		assert.NoError(t, err)
		assert.Equal(t, wantEnd, end)

		repo.AssertExpectations(t)
	})

	t.Run("expired subscription starts over from now", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(ProviderMock), newNoopLogger())

		oldStart := now.Add(-72 * time.Hour)
		oldEnd := now.Add(-24 * time.Hour)
		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(&models.User{
			Email:             "a@b.c",
			SubscriptionStart: &oldStart,
			SubscriptionEnd:   &oldEnd,
		}, nil).Once()
		wantEnd := now.Add(time.Minute)
		repo.On("SetSubscription", mock.Anything, "a@b.c", "minute", now, wantEnd).Return(1, nil).Once()

		end, err := svc.Activate(context.Background(), "a@b.c", "minute", now)
		assert.NoError(t, err)
		assert.Equal(t, wantEnd, end)

		repo.AssertExpectations(t)
	})

	t.Run("unknown plan", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(ProviderMock), newNoopLogger())

		_, err := svc.Activate(context.Background(), "a@b.c", "forever", now)
		assert.Error(t, err)

		repo.AssertExpectations(t)
	})
}

func TestSubscriptionService_Status(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)

	repo := new(RepoMock)
	svc := New(repo, new(ProviderMock), newNoopLogger())

	repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(&models.User{
		Email:           "a@b.c",
		SubscriptionEnd: &future,
	}, nil).Once()

	u, st, err := svc.Status(context.Background(), "a@b.c", now)
	assert.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)
	assert.True(t, st.IsAuthenticated)
	assert.True(t, st.IsPremium)

	repo.AssertExpectations(t)
}
