// Package paymentwebhook обрабатывает вебхуки платёжного провайдера.
//
// Подпись тела запроса проверяется по HMAC-SHA256 из заголовка
// X-Api-Signature. По событию успешной оплаты активируется подписка
// пользователя из метаданных платежа.
package paymentwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
)

// События провайдера, которые платформа обрабатывает.
const (
	PaymentIntentSucceeded = "payment_intent.succeeded"
	PaymentIntentFailed    = "payment_intent.payment_failed"
	PaymentIntentCanceled  = "payment_intent.canceled"
)

// Payload — тело вебхука платёжного провайдера.
type Payload struct {
	Event  string `json:"event"`
	Object struct {
		ID       string            `json:"id"`       // ID платёжного намерения
		Status   string            `json:"status"`   // Статус платежа
		Amount   int               `json:"amount"`   // Сумма в центах
		Currency string            `json:"currency"` // Валюта
		Metadata map[string]string `json:"metadata"` // email, plan
	} `json:"object"`
}

// Service описывает интерфейс активации подписки.
type Service interface {
	Activate(ctx context.Context, email, planName string, now time.Time) (time.Time, error)
}

// Handler обрабатывает вебхуки провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// verifySignature проверяет подпись тела вебхука (X-Api-Signature).
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Принимает события провайдера и активирует подписку по успешной оплате.
// @Tags Payments
// @Accept  json
// @Success 200 "Событие обработано"
// @Failure 400 "Некорректное тело"
// @Failure 401 "Неверная подпись"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch strings.ToLower(payload.Event) {
	case PaymentIntentSucceeded:
		email := payload.Object.Metadata["email"]
		plan := payload.Object.Metadata["plan"]
		if email == "" || plan == "" {
			log.Error("webhook metadata missing email or plan", slog.String("payment_id", payload.Object.ID))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		end, err := h.service.Activate(r.Context(), email, plan, time.Now().UTC())
		if err != nil {
			log.Error("failed to activate subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		log.Info("subscription activated by webhook",
			slog.String("email", email),
			slog.String("plan", plan),
			slog.Time("end", end))
	case PaymentIntentFailed, PaymentIntentCanceled:
		log.Info("payment did not complete",
			slog.String("event", payload.Event),
			slog.String("payment_id", payload.Object.ID))
	default:
		log.Info("ignored webhook event", slog.String("event", payload.Event))
	}

	w.WriteHeader(http.StatusOK)
}
