// Package models содержит доменные структуры новостной платформы:
// пользователей, статьи и тарифные планы подписки,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователей платформы.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Identity представляет аутентифицированного принципала текущей сессии.
// Создаётся провайдером аутентификации при входе и исчезает при выходе.
type Identity struct {
	UID         string // Уникальный идентификатор принципала
	Email       string // Электронная почта, ключ связи с профилем пользователя
	DisplayName string // Отображаемое имя (опционально)
	PhotoURL    string // Ссылка на аватар (опционально)
}

// User представляет сохранённый профиль пользователя платформы.
// Ключом профиля служит email. Поле SubscriptionEnd — единственный
// источник истины о премиум-статусе: отдельный булев флаг не хранится
// и не считается достоверным.
type User struct {
	UID               string     `json:"uid"`                         // Уникальный идентификатор пользователя
	Email             string     `json:"email"`                       // Электронная почта (уникальная)
	Username          string     `json:"username"`                    // Имя пользователя (уникальное)
	DisplayName       string     `json:"display_name"`                // Отображаемое имя
	PhotoURL          string     `json:"photo_url,omitempty"`         // Ссылка на аватар
	PasswordHash      string     `json:"-"`                           // Хэш пароля, наружу не отдаётся
	Role              string     `json:"role"`                        // Роль: user, moderator или admin
	SubscriptionPlan  string     `json:"subscription_plan,omitempty"` // Название тарифного плана (опционально)
	SubscriptionStart *time.Time `json:"subscription_start"`          // Дата начала подписки, nil — не подписан
	SubscriptionEnd   *time.Time `json:"subscription_end"`            // Дата окончания подписки, nil — не подписан
	CreatedAt         time.Time  `json:"created_at"`                  // Дата регистрации
}

// DummyUpdateProfile используется для приёма данных из JSON-запроса
// на обновление профиля пользователя.
type DummyUpdateProfile struct {
	DisplayName string `json:"display_name" validate:"required"` // Новое отображаемое имя
	PhotoURL    string `json:"photo_url"`                        // Новая ссылка на аватар
}

// DummySetRole используется для приёма данных из JSON-запроса
// на смену роли пользователя администратором.
type DummySetRole struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin"` // Новая роль
}
