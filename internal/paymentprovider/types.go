package paymentprovider

// PaymentIntentRequest — запрос на создание платёжного намерения.
type PaymentIntentRequest struct {
	Amount   int               `json:"amount" validate:"required,gt=0"` // Сумма в центах
	Currency string            `json:"currency" validate:"required"`    // Код валюты
	Metadata map[string]string `json:"metadata,omitempty"`              // email, plan и др.
}

// PaymentIntent — ответ провайдера на создание намерения.
type PaymentIntent struct {
	ID           string `json:"id"`            // Идентификатор платежа
	Status       string `json:"status"`        // Статус платежа
	ClientSecret string `json:"client_secret"` // Секрет для подтверждения на клиенте
}
