// Package models содержит доменную модель статьи новостной платформы.
// Статья проходит модерацию: создаётся в статусе pending, после решения
// модератора переходит в published или declined. Читателям доступны
// только опубликованные статьи.
package models

import "time"

// Статусы статьи в процессе модерации.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusDeclined  = "declined"
)

// Article представляет статью платформы.
type Article struct {
	ID            int       `json:"id"`                       // Уникальный идентификатор статьи
	Title         string    `json:"title"`                    // Заголовок
	Content       string    `json:"content"`                  // Текст статьи
	ImageURL      string    `json:"image_url,omitempty"`      // Ссылка на обложку
	Tags          []string  `json:"tags"`                     // Теги статьи
	PublisherName string    `json:"publisher_name"`           // Название издателя
	PublisherLogo string    `json:"publisher_logo,omitempty"` // Логотип издателя
	AuthorEmail   string    `json:"author_email"`             // Email автора, ключ связи с профилем
	AuthorName    string    `json:"author_name"`              // Отображаемое имя автора
	Premium       bool      `json:"premium"`                  // Признак премиум-статьи (только для подписчиков)
	Status        string    `json:"status"`                   // pending, published или declined
	DeclineReason string    `json:"decline_reason,omitempty"` // Причина отклонения, заполняется модератором
	ViewCount     int       `json:"view_count"`               // Количество просмотров
	PostedAt      time.Time `json:"posted_at"`                // Дата публикации
}

// DummyArticle используется для приёма данных из JSON-запроса
// на создание или обновление статьи.
type DummyArticle struct {
	Title         string   `json:"title" validate:"required"`          // Заголовок
	Content       string   `json:"content" validate:"required"`       // Текст статьи
	ImageURL      string   `json:"image_url"`                         // Ссылка на обложку
	Tags          []string `json:"tags" validate:"required,min=1"`    // Теги (минимум один)
	PublisherName string   `json:"publisher_name" validate:"required"` // Название издателя
	PublisherLogo string   `json:"publisher_logo"`                    // Логотип издателя
}

// DummyDecline используется для приёма данных из JSON-запроса
// на отклонение статьи модератором.
type DummyDecline struct {
	Reason string `json:"reason" validate:"required"` // Причина отклонения
}

// ArticleFilter описывает параметры выборки списка статей:
// полнотекстовый поиск по заголовку, фильтры по тегу и издателю, пагинация.
type ArticleFilter struct {
	Search    string // Подстрока заголовка
	Tag       string // Тег
	Publisher string // Название издателя
	Limit     int    // Размер страницы
	Offset    int    // Смещение
}
