// Package session реализует сессионный адаптер: мост между push-источником
// identity (провайдером аутентификации) и синхронным, всегда актуальным
// снимком прав доступа.
//
// Адаптер подписывается на смену identity, асинхронно загружает профиль
// пользователя по email и пересчитывает entitlement.Status. Пока загрузка
// профиля не завершилась, снимок сохраняет последнее известное значение —
// потребители обязаны считать IsPremium ориентировочным до первого
// успешного ответа. Раз в интервал ревалидации профиль перечитывается,
// чтобы естественное истечение подписки понизило IsPremium без участия
// пользователя.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// DefaultRevalidateInterval — период фоновой перечитки профиля.
// Ограничивает время, в течение которого снимок может показывать
// устаревший премиум-статус после истечения подписки.
const DefaultRevalidateInterval = 60 * time.Second

// Source — внешний провайдер уведомлений о смене identity.
// Доставляет nil ровно один раз при выходе и может доставлять
// одну и ту же identity повторно: обработка обязана быть идемпотентной.
type Source interface {
	// Subscribe регистрирует обработчик и возвращает функцию отписки.
	Subscribe(fn func(identity *models.Identity)) (unsubscribe func(), err error)
}

// ProfileClient описывает операции над профилем пользователя,
// нужные адаптеру: загрузку по email и мутации, после которых
// снимок должен обновиться синхронно.
type ProfileClient interface {
	// FetchByEmail возвращает профиль пользователя по email.
	FetchByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateDisplayName меняет отображаемое имя и возвращает свежий профиль.
	UpdateDisplayName(ctx context.Context, email, displayName string) (*models.User, error)
}

// Adapter хранит снимок текущей сессии: identity, профиль и права.
// Снимок мутируется только под внутренним мьютексом; подписчики
// уведомляются после каждого применённого изменения.
type Adapter struct {
	source   Source
	profiles ProfileClient
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu           sync.Mutex
	identity     *models.Identity
	profile      *models.User
	status       entitlement.Status
	fetchSeq     uint64 // номер последней запущенной загрузки профиля
	appliedSeq   uint64 // номер последней применённой загрузки
	listeners    map[int]func(entitlement.Status)
	nextListener int
	closed       bool

	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

// New создаёт адаптер, подписывается на источник identity и запускает
// фоновую ревалидацию. interval <= 0 заменяется DefaultRevalidateInterval.
// Вызывающая сторона обязана вызвать Close на каждом пути завершения.
func New(source Source, profiles ProfileClient, log *slog.Logger, interval time.Duration) (*Adapter, error) {
	if interval <= 0 {
		interval = DefaultRevalidateInterval
	}
	a := &Adapter{
		source:    source,
		profiles:  profiles,
		log:       log,
		interval:  interval,
		now:       time.Now,
		listeners: make(map[int]func(entitlement.Status)),
		done:      make(chan struct{}),
	}

	unsubscribe, err := source.Subscribe(a.handleIdentity)
	if err != nil {
		return nil, err
	}
	a.unsubscribe = unsubscribe

	a.wg.Add(1)
	go a.revalidateLoop()

	return a, nil
}

// Identity возвращает текущую identity или nil (синхронный снимок).
func (a *Adapter) Identity() *models.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// Profile возвращает последний успешно загруженный профиль или nil.
func (a *Adapter) Profile() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}

// Entitlement возвращает текущие права (синхронный снимок).
// До первого разрешения возвращает нулевой Status: не аутентифицирован,
// не премиум.
func (a *Adapter) Entitlement() entitlement.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// OnChange регистрирует обработчик изменений снимка и возвращает функцию
// отписки. Повторный вызов функции отписки безопасен.
func (a *Adapter) OnChange(fn func(entitlement.Status)) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextListener
	a.nextListener++
	a.listeners[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// Refresh синхронно перечитывает профиль и пересчитывает права.
// Используется после покупки подписки: к возврату из Refresh снимок
// уже отражает новые даты. Ошибка загрузки — мягкая: снимок сохраняет
// прежнее состояние.
func (a *Adapter) Refresh(ctx context.Context) error {
	a.mu.Lock()
	if a.closed || a.identity == nil {
		a.mu.Unlock()
		return nil
	}
	email := a.identity.Email
	a.fetchSeq++
	seq := a.fetchSeq
	a.mu.Unlock()

	user, err := a.profiles.FetchByEmail(ctx, email)
	if err != nil {
		a.log.Warn("profile refresh failed, keeping last entitlement", sl.Err(err))
		return err
	}
	a.applyProfile(seq, email, user)
	return nil
}

// UpdateDisplayName меняет отображаемое имя пользователя и синхронно
// обновляет снимок: следующий же вызов Entitlement и Profile отражает
// мутацию.
func (a *Adapter) UpdateDisplayName(ctx context.Context, displayName string) error {
	a.mu.Lock()
	if a.closed || a.identity == nil {
		a.mu.Unlock()
		return nil
	}
	email := a.identity.Email
	a.fetchSeq++
	seq := a.fetchSeq
	a.mu.Unlock()

	user, err := a.profiles.UpdateDisplayName(ctx, email, displayName)
	if err != nil {
		return err
	}
	a.applyProfile(seq, email, user)
	return nil
}

// Close безусловно останавливает адаптер: отписывается от источника,
// гасит таймер ревалидации и дожидается фоновых горутин. После Close
// ни один обработчик OnChange не вызывается. Повторный Close безопасен.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()

		a.unsubscribe()
		close(a.done)
		a.wg.Wait()
	})
}

// handleIdentity — обработчик уведомлений источника.
func (a *Adapter) handleIdentity(identity *models.Identity) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}

	if identity == nil {
		// Выход: никакие права не переживают sign-out.
		a.identity = nil
		a.profile = nil
		a.status = entitlement.Status{}
		// Запущенные загрузки профиля больше не применяются.
		a.fetchSeq++
		a.appliedSeq = a.fetchSeq
		notify := a.listenersSnapshotLocked()
		st := a.status
		a.mu.Unlock()
		a.log.Info("identity cleared, entitlement reset")
		fire(notify, st)
		return
	}

	same := a.identity != nil && a.identity.UID == identity.UID
	a.identity = identity
	// Пока профиль не загружен, IsPremium остаётся последним известным.
	a.status = entitlement.Status{IsAuthenticated: true, IsPremium: a.status.IsPremium}
	a.fetchSeq++
	seq := a.fetchSeq
	email := identity.Email
	notify := a.listenersSnapshotLocked()
	st := a.status
	a.mu.Unlock()

	if !same {
		fire(notify, st)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.fetchAndApply(seq, email)
	}()
}

// revalidateLoop — фоновая ревалидация: пока identity присутствует,
// профиль перечитывается раз в интервал. Это же подбирает повтор после
// неудачной загрузки: отдельной политики ретраев нет.
func (a *Adapter) revalidateLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.mu.Lock()
			if a.closed || a.identity == nil {
				a.mu.Unlock()
				continue
			}
			a.fetchSeq++
			seq := a.fetchSeq
			email := a.identity.Email
			a.mu.Unlock()

			a.fetchAndApply(seq, email)
		}
	}
}

// fetchAndApply загружает профиль и применяет его к снимку.
func (a *Adapter) fetchAndApply(seq uint64, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := a.profiles.FetchByEmail(ctx, email)
	if err != nil {
		a.log.Warn("profile fetch failed, keeping last entitlement",
			slog.String("email", email), sl.Err(err))
		return
	}
	a.applyProfile(seq, email, user)
}

// applyProfile применяет результат загрузки профиля к снимку.
// Ответы, пришедшие позже более нового применённого, отбрасываются:
// снимок никогда не откатывается к устаревшему состоянию.
func (a *Adapter) applyProfile(seq uint64, email string, user *models.User) {
	a.mu.Lock()
	if a.closed || seq <= a.appliedSeq {
		a.mu.Unlock()
		return
	}
	if a.identity == nil || a.identity.Email != email {
		// Пользователь успел смениться или выйти.
		a.mu.Unlock()
		return
	}
	a.appliedSeq = seq
	a.profile = user
	prev := a.status
	a.status = entitlement.Evaluate(true, user.SubscriptionEnd, a.now())
	changed := prev != a.status
	notify := a.listenersSnapshotLocked()
	st := a.status
	a.mu.Unlock()

	if changed {
		fire(notify, st)
	}
}

func (a *Adapter) listenersSnapshotLocked() []func(entitlement.Status) {
	out := make([]func(entitlement.Status), 0, len(a.listeners))
	for _, fn := range a.listeners {
		out = append(out, fn)
	}
	return out
}

func fire(listeners []func(entitlement.Status), st entitlement.Status) {
	for _, fn := range listeners {
		fn(st)
	}
}
