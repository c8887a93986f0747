package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet представляет баланс фрилансера или единственный платформенный кошелёк.
// Баланс знаковый: защиты от ухода в минус нет, это унаследованное поведение.
type Wallet struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OwnerID    uuid.UUID `db:"owner_id" json:"owner_id"`
	OwnerModel string    `db:"owner_model" json:"owner_model"`
	Balance    float64   `db:"balance" json:"balance"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction представляет неизменяемую запись о движении средств.
type Transaction struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	FromID        uuid.UUID  `db:"from_id" json:"from_id"`
	FromModel     string     `db:"from_model" json:"from_model"`
	ToID          uuid.UUID  `db:"to_id" json:"to_id"`
	ToModel       string     `db:"to_model" json:"to_model"`
	Type          string     `db:"type" json:"type"`
	Amount        float64    `db:"amount" json:"amount"`
	PaymentMethod string     `db:"payment_method" json:"payment_method"`
	Status        string     `db:"status" json:"status"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
