// Доступ к статье: единая точка принятия решения по паре (статья, права).
package entitlement

import "github.com/magabrotheeeer/news-platform/internal/models"

// Decision — результат проверки доступа к статье.
type Decision int

const (
	// Allow — доступ разрешён.
	Allow Decision = iota
	// DenyRequiresLogin — нужна аутентификация.
	DenyRequiresLogin
	// DenyRequiresUpgrade — нужна премиум-подписка.
	DenyRequiresUpgrade
	// DenyNotFound — статья отсутствует или не опубликована.
	DenyNotFound
)

// String возвращает текстовое представление решения.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyRequiresLogin:
		return "deny_requires_login"
	case DenyRequiresUpgrade:
		return "deny_requires_upgrade"
	case DenyNotFound:
		return "deny_not_found"
	default:
		return "unknown"
	}
}

// Policy задаёт поведение конкретной точки вызова для бесплатных статей.
// Лента статей разрешает анонимный просмотр бесплатного контента,
// страница статьи и переход из трендов требуют входа. Различие
// намеренное, поэтому параметризовано, а не зашито в Decide.
type Policy struct {
	RequireLogin bool // Требовать вход даже для бесплатных статей
}

// Decide возвращает решение о доступе к статье для заданных прав.
//
// Порядок проверок:
//  1. Отсутствующая или неопубликованная статья — DenyNotFound,
//     независимо от прав (pending и declined никогда не видны читателям).
//  2. Премиум-статья без премиум-прав — DenyRequiresUpgrade;
//     анонимный зритель премиум-контента получает то же предложение
//     оформить подписку, что и вошедший без подписки.
//  3. Бесплатная статья, анонимный зритель и политика RequireLogin —
//     DenyRequiresLogin.
//  4. Иначе — Allow.
//
// Функция тотальна и не выполняет ввода-вывода; преобразование отказа
// в действие (редирект на вход, страницу подписки, not found) — забота
// вызывающей стороны.
func Decide(item *models.Article, st Status, policy Policy) Decision {
	if item == nil || item.Status != models.StatusPublished {
		return DenyNotFound
	}
	if item.Premium && !st.IsPremium {
		return DenyRequiresUpgrade
	}
	if !item.Premium && !st.IsAuthenticated && policy.RequireLogin {
		return DenyRequiresLogin
	}
	return Allow
}
