package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// fakeProfileClient реализует ProfileClient с управляемыми ответами.
type fakeProfileClient struct {
	mu      sync.Mutex
	fetchFn func(ctx context.Context, email string) (*models.User, error)
}

func (f *fakeProfileClient) setFetch(fn func(ctx context.Context, email string) (*models.User, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchFn = fn
}

func (f *fakeProfileClient) FetchByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	fn := f.fetchFn
	f.mu.Unlock()
	return fn(ctx, email)
}

func (f *fakeProfileClient) UpdateDisplayName(ctx context.Context, email, displayName string) (*models.User, error) {
	user, err := f.FetchByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	updated := *user
	updated.DisplayName = displayName
	return &updated, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func premiumUser(email string, end time.Time) *models.User {
	return &models.User{
		UID:             "uid-1",
		Email:           email,
		Username:        "testuser",
		DisplayName:     "Test User",
		Role:            models.RoleUser,
		SubscriptionEnd: &end,
	}
}

func testIdentity() *models.Identity {
	return &models.Identity{UID: "uid-1", Email: "test@example.com", DisplayName: "Test User"}
}

func TestAdapter_DefaultSnapshot(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)
	defer adapter.Close()

	// До первого уведомления источника снимок нулевой.
	assert.Nil(t, adapter.Identity())
	assert.Nil(t, adapter.Profile())
	assert.Equal(t, entitlement.Status{}, adapter.Entitlement())
}

func TestAdapter_SignInResolvesPremium(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)
	defer adapter.Close()

	source.Emit(testIdentity())

	// IsAuthenticated выставляется сразу, IsPremium — после загрузки профиля.
	assert.True(t, adapter.Entitlement().IsAuthenticated)
	require.Eventually(t, func() bool {
		return adapter.Entitlement().IsPremium
	}, time.Second, 10*time.Millisecond)
	require.NotNil(t, adapter.Profile())
	assert.Equal(t, "test@example.com", adapter.Profile().Email)
}

func TestAdapter_SignOutDominance(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)
	defer adapter.Close()

	source.Emit(testIdentity())
	require.Eventually(t, func() bool {
		return adapter.Entitlement().IsPremium
	}, time.Second, 10*time.Millisecond)

	// Никакие права не переживают sign-out, несмотря на дату в будущем.
	source.Emit(nil)
	assert.Equal(t, entitlement.Status{}, adapter.Entitlement())
	assert.Nil(t, adapter.Identity())
	assert.Nil(t, adapter.Profile())
}

func TestAdapter_FetchFailureKeepsLastEntitlement(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)
	defer adapter.Close()

	source.Emit(testIdentity())
	require.Eventually(t, func() bool {
		return adapter.Entitlement().IsPremium
	}, time.Second, 10*time.Millisecond)

	// Сбой загрузки — мягкий: снимок сохраняет последнее известное состояние.
	profiles.setFetch(func(_ context.Context, _ string) (*models.User, error) {
		return nil, errors.New("server unavailable")
	})
	err = adapter.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, adapter.Entitlement().IsPremium)
}

func TestAdapter_OutOfOrderResponseDiscarded(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}

	release := make(chan struct{})
	var slowStarted atomic.Bool
	// Первая (медленная) загрузка вернёт профиль без подписки,
	// вторая (быстрая) — с действующей. Медленный ответ приходит позже
	// и обязан быть отброшен.
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		slowStarted.Store(true)
		<-release
		user := premiumUser(email, time.Now().Add(time.Hour))
		user.SubscriptionEnd = nil
		return user, nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)
	defer adapter.Close()

	source.Emit(testIdentity())
	require.Eventually(t, slowStarted.Load, time.Second, 10*time.Millisecond)

	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})
	require.NoError(t, adapter.Refresh(context.Background()))
	require.True(t, adapter.Entitlement().IsPremium)

	// Медленный ответ разрешается последним, но снимок не откатывается.
	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, adapter.Entitlement().IsPremium)
}

func TestAdapter_IdempotentRedelivery(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)
	defer adapter.Close()

	var changes atomic.Int32
	unsubscribe := adapter.OnChange(func(entitlement.Status) {
		changes.Add(1)
	})
	defer unsubscribe()

	identity := testIdentity()
	source.Emit(identity)
	require.Eventually(t, func() bool {
		return adapter.Entitlement().IsPremium
	}, time.Second, 10*time.Millisecond)
	after := changes.Load()

	// Источник вправе доставить ту же identity повторно:
	// состояние не меняется, лишних уведомлений нет.
	source.Emit(identity)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, changes.Load())
	assert.True(t, adapter.Entitlement().IsPremium)
}

func TestAdapter_UpdateDisplayNameRefreshesSynchronously(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)
	defer adapter.Close()

	source.Emit(testIdentity())
	require.Eventually(t, func() bool {
		return adapter.Profile() != nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, adapter.UpdateDisplayName(context.Background(), "Renamed"))
	// Сразу после возврата снимок уже отражает мутацию.
	assert.Equal(t, "Renamed", adapter.Profile().DisplayName)
}

func TestAdapter_PeriodicRevalidationDemotesPremium(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	// Подписка истекает почти сразу: фоновая ревалидация должна
	// понизить IsPremium без каких-либо действий пользователя.
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(80*time.Millisecond)), nil
	})

	adapter, err := New(source, profiles, testLogger(), 30*time.Millisecond)
	require.NoError(t, err)
	defer adapter.Close()

	source.Emit(testIdentity())
	require.Eventually(t, func() bool {
		return adapter.Entitlement().IsPremium
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		st := adapter.Entitlement()
		return st.IsAuthenticated && !st.IsPremium
	}, time.Second, 5*time.Millisecond)
}

func TestAdapter_CloseIsIdempotentAndSilent(t *testing.T) {
	source := NewManualSource()
	profiles := &fakeProfileClient{}
	profiles.setFetch(func(_ context.Context, email string) (*models.User, error) {
		return premiumUser(email, time.Now().Add(time.Hour)), nil
	})

	adapter, err := New(source, profiles, testLogger(), time.Minute)
	require.NoError(t, err)

	var changes atomic.Int32
	unsubscribe := adapter.OnChange(func(entitlement.Status) {
		changes.Add(1)
	})

	adapter.Close()
	adapter.Close() // повторный Close безопасен

	// После Close уведомления источника игнорируются.
	source.Emit(testIdentity())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), changes.Load())
	assert.Equal(t, entitlement.Status{}, adapter.Entitlement())

	// Двойная отписка тоже безопасна.
	unsubscribe()
	unsubscribe()
}

func TestManualSource_ReplaysLastIdentity(t *testing.T) {
	source := NewManualSource()
	source.Emit(testIdentity())

	var got *models.Identity
	unsubscribe, err := source.Subscribe(func(identity *models.Identity) {
		got = identity
	})
	require.NoError(t, err)
	defer unsubscribe()

	// Поздний подписчик немедленно получает последнее значение.
	require.NotNil(t, got)
	assert.Equal(t, "uid-1", got.UID)
}
