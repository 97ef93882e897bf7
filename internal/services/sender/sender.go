// Package sender отправляет email-уведомления о состоянии подписки
// по сообщениям из очереди.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Transport устанавливает соединение с SMTP-сервером.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// SenderService рассылает уведомления по email.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendInfoExpiringSubscription уведомляет о подписке, истекающей завтра.
func (s *SenderService) SendInfoExpiringSubscription(body []byte) error {
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{user.Email}
	subject := "Уведомление о скором окончании премиум-подписки"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаша премиум-подписка заканчивается завтра.\n\nПродлите её заранее, чтобы не потерять доступ к премиум-статьям.",
		user.Username)

	return s.sendEmail(to, subject, bodyText)
}

// SendInfoExpiredSubscription уведомляет об уже истёкшей подписке.
func (s *SenderService) SendInfoExpiredSubscription(body []byte) error {
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{user.Email}
	subject := "Премиум-подписка закончилась"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nСрок вашей премиум-подписки истёк. Премиум-статьи больше недоступны.\n\nОформить подписку заново можно в личном кабинете.",
		user.Username)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
