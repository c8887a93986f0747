package models

import (
	"time"

	"github.com/google/uuid"
)

// Order представляет покупку одной услуги с выбранными дополнениями.
// Цена фиксируется при создании и при изменении набора дополнений.
type Order struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	ServiceID     uuid.UUID  `db:"service_id" json:"service_id"`
	FreelancerID  uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	CartID        *uuid.UUID `db:"cart_id" json:"cart_id,omitempty"`
	Status        string     `db:"status" json:"status"`
	OrderPrice    float64    `db:"order_price" json:"order_price"`
	RatingID      *uuid.UUID `db:"rating_id" json:"rating_id,omitempty"`
	TransactionID *uuid.UUID `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	AddOns        []AddOn    `json:"addons,omitempty"`
}

// Rating представляет единственную оценку завершённого заказа.
type Rating struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Value     int       `db:"value" json:"value"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
