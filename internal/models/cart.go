package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart представляет корзину пользователя: одна на пользователя.
// Subtotal всегда пересчитывается из живых заказов, не накапливается.
type Cart struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Subtotal    float64   `db:"subtotal" json:"subtotal"`
	PlatformFee float64   `db:"platform_fee" json:"platform_fee"`
	Total       float64   `db:"total" json:"total"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Orders      []Order   `json:"orders,omitempty"`
}

// CartHistoryEntry представляет архивную партию покупок одного checkout.
type CartHistoryEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CartID      uuid.UUID `db:"cart_id" json:"cart_id"`
	Total       float64   `db:"total" json:"total"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
	Orders      []Order   `json:"orders,omitempty"`
}
