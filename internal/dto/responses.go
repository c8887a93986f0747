package dto

import (
	"time"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// AuthResponse представляет итог регистрации или входа.
type AuthResponse struct {
	Principal *models.Principal  `json:"principal"`
	Tokens    *service.TokenPair `json:"tokens"`
}

// CheckoutResponse представляет итог оплаты корзины.
type CheckoutResponse struct {
	HistoryEntry *models.CartHistoryEntry `json:"history_entry,omitempty"`
	Transactions []models.Transaction     `json:"transactions"`
}

// EndOrderResponse представляет итог завершения заказа.
type EndOrderResponse struct {
	Order  *models.Order       `json:"order"`
	Payout *models.Transaction `json:"payout"`
}

// SubscribeResponse представляет итог оформления подписки.
type SubscribeResponse struct {
	Transaction *models.Transaction `json:"transaction"`
	ExpiresAt   time.Time           `json:"expires_at"`
}

// MediaResponse представляет загруженный файл.
type MediaResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// ErrorResponse представляет стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse представляет стандартный успешный ответ.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
