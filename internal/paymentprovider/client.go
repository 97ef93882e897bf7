// Package paymentprovider реализует HTTP-клиент платёжного провайдера.
// Платформа создаёт платёжное намерение на покупку тарифного плана,
// подтверждение оплаты приходит отдельным webhook-вызовом.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client — клиент API платёжного провайдера.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного провайдера.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreatePaymentIntent отправляет запрос на создание платёжного намерения.
// Метаданные несут email покупателя и название плана: по ним webhook
// активирует подписку после подтверждения оплаты. Ключ идемпотентности
// защищает от повторного списания при сетевых ретраях.
func (c *Client) CreatePaymentIntent(ctx context.Context, reqParams PaymentIntentRequest) (*PaymentIntent, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/payment_intents", reqParams)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var intentResp PaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intentResp); err != nil {
		return nil, err
	}
	return &intentResp, nil
}
