package models

import (
	"time"

	"github.com/google/uuid"
)

// Post представляет публикацию в ленте.
type Post struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AuthorID    uuid.UUID `db:"author_id" json:"author_id"`
	AuthorModel string    `db:"author_model" json:"author_model"`
	Title       string    `db:"title" json:"title"`
	Body        string    `db:"body" json:"body"`
	PhotoKey    *string   `db:"photo_key" json:"photo_key,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PostID      uuid.UUID `db:"post_id" json:"post_id"`
	AuthorID    uuid.UUID `db:"author_id" json:"author_id"`
	AuthorModel string    `db:"author_model" json:"author_model"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ChatRoom представляет комнату чата, опционально привязанную к заказу.
type ChatRoom struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	OrderID   *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ChatParticipant представляет участника комнаты.
type ChatParticipant struct {
	RoomID         uuid.UUID `db:"room_id" json:"room_id"`
	PrincipalID    uuid.UUID `db:"principal_id" json:"principal_id"`
	PrincipalModel string    `db:"principal_model" json:"principal_model"`
	JoinedAt       time.Time `db:"joined_at" json:"joined_at"`
}

// ChatMessage представляет сообщение в комнате.
type ChatMessage struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RoomID      uuid.UUID `db:"room_id" json:"room_id"`
	SenderID    uuid.UUID `db:"sender_id" json:"sender_id"`
	SenderModel string    `db:"sender_model" json:"sender_model"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SubscriptionPlan представляет тарифный план подписки инфлюенсера.
type SubscriptionPlan struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Price        float64   `db:"price" json:"price"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
