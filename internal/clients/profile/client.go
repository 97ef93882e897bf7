// Package profile реализует HTTP-клиент границы Profile Fetch:
// загрузку и мутации профиля пользователя по email через REST API
// платформы. Клиент реализует session.ProfileClient и используется
// сессионным адаптером.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/models"
)

// Client — HTTP-клиент профилей пользователей.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// envelope повторяет унифицированный JSON-ответ сервера.
type envelope struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   struct {
		User *models.User `json:"user"`
	} `json:"data"`
}

// NewClient создаёт клиент профилей. authToken может быть пустым:
// он нужен только мутациям, чтение профиля открыто.
func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchByEmail возвращает профиль пользователя по email.
// Ответ со status != OK и сетевая ошибка неразличимы для вызывающей
// стороны: и то и другое — мягкий сбой, кешированный профиль не трогается.
func (c *Client) FetchByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "profile.FetchByEmail"

	endpoint := c.baseURL + "/api/v1/users/" + url.PathEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK || env.Status != "OK" || env.Data.User == nil {
		return nil, fmt.Errorf("%s: profile fetch failed: %s", op, env.Error)
	}
	return env.Data.User, nil
}

// UpdateDisplayName меняет отображаемое имя пользователя и возвращает
// свежий профиль. Требует авторизационного токена; email из аргумента
// не участвует в запросе — пользователя определяет токен.
func (c *Client) UpdateDisplayName(ctx context.Context, _, displayName string) (*models.User, error) {
	const op = "profile.UpdateDisplayName"

	body, err := json.Marshal(models.DummyUpdateProfile{DisplayName: displayName})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	endpoint := c.baseURL + "/api/v1/users/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK || env.Status != "OK" || env.Data.User == nil {
		return nil, fmt.Errorf("%s: profile update failed: %s", op, env.Error)
	}
	return env.Data.User, nil
}
