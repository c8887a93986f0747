package models

import (
	"time"

	"github.com/google/uuid"
)

// Category представляет верхний уровень каталога услуг.
type Category struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	Slug          string        `db:"slug" json:"slug"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Subcategory представляет подкатегорию внутри категории.
type Subcategory struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	Name       string    `db:"name" json:"name"`
	Slug       string    `db:"slug" json:"slug"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Service представляет услугу фрилансера.
// Видна публично только после одобрения администратором.
type Service struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FreelancerID  uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	CategoryID    uuid.UUID `db:"category_id" json:"category_id"`
	SubcategoryID uuid.UUID `db:"subcategory_id" json:"subcategory_id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Price         float64   `db:"price" json:"price"`
	IsApproved    bool      `db:"is_approved" json:"is_approved"`
	PhotoKey      *string   `db:"photo_key" json:"photo_key,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
	AddOns        []AddOn   `json:"addons,omitempty"`
}

// AddOn представляет платное дополнение к услуге.
type AddOn struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ServiceID    uuid.UUID `db:"service_id" json:"service_id"`
	Title        string    `db:"title" json:"title"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	Price        float64   `db:"price" json:"price"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
