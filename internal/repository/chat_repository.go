package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/repository/common"
)

var (
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrNotInRoom       = errors.New("principal is not a room participant")
	ErrMessageNotFound = errors.New("message not found")
)

type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateRoom создаёт комнату и сразу добавляет участников.
func (r *ChatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom, participants []models.ChatParticipant) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		row := tx.QueryRowxContext(ctx, `
			INSERT INTO chat_rooms (order_id) VALUES ($1)
			RETURNING id, created_at
		`, room.OrderID)
		if err := row.Scan(&room.ID, &room.CreatedAt); err != nil {
			return fmt.Errorf("chat repository: create room: %w", err)
		}

		inserter := common.NewBatchInserter(tx, `INSERT INTO chat_participants (room_id, principal_id, principal_model)`, 3, 100)
		for _, p := range participants {
			if err := inserter.Add(ctx, room.ID, p.PrincipalID, p.PrincipalModel); err != nil {
				return fmt.Errorf("chat repository: add participant: %w", err)
			}
		}
		return inserter.Flush(ctx)
	})
}

// GetRoom возвращает комнату по идентификатору.
func (r *ChatRepository) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.ChatRoom, error) {
	return common.GetByID[models.ChatRoom](ctx, r.db, "chat_rooms", roomID, ErrRoomNotFound)
}

// ListRooms возвращает комнаты, где принципал состоит участником.
func (r *ChatRepository) ListRooms(ctx context.Context, principalID uuid.UUID, model string) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.SelectContext(ctx, &rooms, `
		SELECT cr.id, cr.order_id, cr.created_at
		FROM chat_rooms cr
		JOIN chat_participants cp ON cp.room_id = cr.id
		WHERE cp.principal_id = $1 AND cp.principal_model = $2
		ORDER BY cr.created_at DESC
	`, principalID, model)
	if err != nil {
		return nil, fmt.Errorf("chat repository: list rooms: %w", err)
	}
	return rooms, nil
}

// IsParticipant проверяет членство принципала в комнате.
func (r *ChatRepository) IsParticipant(ctx context.Context, roomID, principalID uuid.UUID, model string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM chat_participants
		WHERE room_id = $1 AND principal_id = $2 AND principal_model = $3
	`, roomID, principalID, model)
	if err != nil {
		return false, fmt.Errorf("chat repository: is participant: %w", err)
	}
	return count > 0, nil
}

// SaveMessage сохраняет сообщение участника комнаты.
func (r *ChatRepository) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO chat_messages (room_id, sender_id, sender_model, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, msg.RoomID, msg.SenderID, msg.SenderModel, msg.Body)
	if err := row.Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("chat repository: save message: %w", err)
	}
	return nil
}

// ListMessages возвращает историю комнаты от старых к новым.
func (r *ChatRepository) ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.SelectContext(ctx, &messages, `
		SELECT id, room_id, sender_id, sender_model, body, created_at
		FROM chat_messages WHERE room_id = $1
		ORDER BY created_at LIMIT $2 OFFSET $3
	`, roomID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("chat repository: list messages: %w", err)
	}
	return messages, nil
}

// FindRoomByOrder возвращает комнату, привязанную к заказу.
func (r *ChatRepository) FindRoomByOrder(ctx context.Context, orderID uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `
		SELECT id, order_id, created_at FROM chat_rooms WHERE order_id = $1
	`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("chat repository: find room by order: %w", err)
	}
	return &room, nil
}
