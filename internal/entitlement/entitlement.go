// Package entitlement реализует вычисление прав доступа пользователя:
// аутентифицирован ли он и действует ли его премиум-подписка.
//
// Логика собрана в одной чистой функции Evaluate, чтобы все потребители
// (обработчики, middleware, сессионный адаптер) принимали решение одинаково
// и не дублировали сравнение дат по месту вызова.
package entitlement

import "time"

// Status — вычисленные права доступа. Не сохраняется в хранилище,
// пересчитывается при каждой смене identity, обновлении профиля
// или по таймеру ревалидации.
type Status struct {
	IsAuthenticated bool `json:"is_authenticated"` // Присутствует ли identity
	IsPremium       bool `json:"is_premium"`       // Действует ли премиум-подписка
}

// Evaluate вычисляет Status по трём входам: наличию identity,
// дате окончания подписки (nil — подписки не было) и текущему времени.
//
// Правила:
//   - IsAuthenticated повторяет identityPresent.
//   - IsPremium истинен только при identityPresent, ненулевой дате окончания
//     и строгом now < subscriptionEnd: момент окончания — уже не премиум.
//   - Без identity премиум невозможен, какие бы даты ни остались в профиле.
//
// Время передаётся параметром, а не читается из глобальных часов:
// функция детерминирована и не имеет побочных эффектов.
func Evaluate(identityPresent bool, subscriptionEnd *time.Time, now time.Time) Status {
	return Status{
		IsAuthenticated: identityPresent,
		IsPremium:       identityPresent && subscriptionEnd != nil && now.Before(*subscriptionEnd),
	}
}
