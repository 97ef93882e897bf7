// ManualSource — управляемая вручную реализация Source для утилит и тестов.
package session

import (
	"sync"

	"github.com/magabrotheeeer/news-platform/internal/models"
)

// ManualSource доставляет identity подписчикам по явному вызову Emit.
// Используется утилитой session-watch и тестами адаптера; боевые
// реализации Source оборачивают SDK провайдера аутентификации.
type ManualSource struct {
	mu   sync.Mutex
	subs map[int]func(*models.Identity)
	next int
	last *models.Identity
	seen bool
}

// NewManualSource создает пустой источник без подписчиков.
func NewManualSource() *ManualSource {
	return &ManualSource{subs: make(map[int]func(*models.Identity))}
}

// Subscribe регистрирует обработчик. Если identity уже была доставлена,
// обработчик немедленно получает последнее значение — так ведут себя
// SDK провайдеров аутентификации при поздней подписке.
func (s *ManualSource) Subscribe(fn func(identity *models.Identity)) (func(), error) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	replay := s.seen
	last := s.last
	s.mu.Unlock()

	if replay {
		fn(last)
	}

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return unsubscribe, nil
}

// Emit доставляет identity всем подписчикам. nil означает выход.
func (s *ManualSource) Emit(identity *models.Identity) {
	s.mu.Lock()
	s.last = identity
	s.seen = true
	fns := make([]func(*models.Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}
