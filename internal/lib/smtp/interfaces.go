// Package smtp отправляет письма-уведомления о состоянии подписки.
package smtp

import "io"

// Client — минимальный набор операций SMTP-сессии, достаточный
// для отправки одного письма. Позволяет подменить *smtp.Client в тестах.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
