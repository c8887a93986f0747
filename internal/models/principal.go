package models

import (
	"time"

	"github.com/google/uuid"
)

// Principal описывает аутентифицированного актора любого типа.
// Тип аккаунта хранится в Model и определяет таблицу хранения.
type Principal struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Model        string    `db:"-" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// User описывает покупателя услуг.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Freelancer описывает исполнителя, владеющего услугами и кошельком.
type Freelancer struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	PhotoKey     *string   `db:"photo_key" json:"photo_key,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Influencer описывает аккаунт с платной подпиской.
type Influencer struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	Email                 string     `db:"email" json:"email"`
	Username              string     `db:"username" json:"username"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	SubscriptionPlanID    *uuid.UUID `db:"subscription_plan_id" json:"subscription_plan_id,omitempty"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at" json:"subscription_expires_at,omitempty"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// Admin описывает администратора платформы.
type Admin struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию принципала.
type Session struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrincipalID    uuid.UUID `db:"principal_id" json:"principal_id"`
	PrincipalModel string    `db:"principal_model" json:"principal_model"`
	RefreshToken   string    `db:"refresh_token" json:"refresh_token"`
	UserAgent      *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress      *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
