package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
	"github.com/ignatzorin/marketplace-backend/internal/validation"
)

// ChatRepository описывает зависимости ChatService от слоя хранилища.
type ChatRepository interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom, participants []models.ChatParticipant) error
	GetRoom(ctx context.Context, roomID uuid.UUID) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, principalID uuid.UUID, model string) ([]models.ChatRoom, error)
	IsParticipant(ctx context.Context, roomID, principalID uuid.UUID, model string) (bool, error)
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.ChatMessage, error)
	FindRoomByOrder(ctx context.Context, orderID uuid.UUID) (*models.ChatRoom, error)
}

// RoomNotifier рассылает событие подписчикам комнаты.
type RoomNotifier interface {
	BroadcastToRoom(roomID uuid.UUID, payload interface{})
}

// ChatService управляет комнатами и сообщениями.
// Сообщение сначала сохраняется, затем рассылается по websocket.
type ChatService struct {
	repo     ChatRepository
	notifier RoomNotifier
}

// NewChatService создаёт сервис чатов.
func NewChatService(repo ChatRepository, notifier RoomNotifier) *ChatService {
	return &ChatService{repo: repo, notifier: notifier}
}

// OpenOrderRoom возвращает комнату заказа, создавая её при первом обращении.
func (s *ChatService) OpenOrderRoom(ctx context.Context, order *models.Order) (*models.ChatRoom, error) {
	room, err := s.repo.FindRoomByOrder(ctx, order.ID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, repository.ErrRoomNotFound) {
		return nil, err
	}

	room = &models.ChatRoom{OrderID: &order.ID}
	participants := []models.ChatParticipant{
		{PrincipalID: order.UserID, PrincipalModel: models.PrincipalUser},
		{PrincipalID: order.FreelancerID, PrincipalModel: models.PrincipalFreelancer},
	}
	if err := s.repo.CreateRoom(ctx, room, participants); err != nil {
		return nil, err
	}
	return room, nil
}

// CreateDirectRoom создаёт комнату между двумя принципалами.
func (s *ChatService) CreateDirectRoom(ctx context.Context, a, b models.ChatParticipant) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	if err := s.repo.CreateRoom(ctx, room, []models.ChatParticipant{a, b}); err != nil {
		return nil, err
	}
	return room, nil
}

// ListRooms возвращает комнаты принципала.
func (s *ChatService) ListRooms(ctx context.Context, principalID uuid.UUID, role string) ([]models.ChatRoom, error) {
	return s.repo.ListRooms(ctx, principalID, role)
}

// SendMessage сохраняет сообщение и рассылает его подписчикам комнаты.
func (s *ChatService) SendMessage(ctx context.Context, roomID, senderID uuid.UUID, senderModel, body string) (*models.ChatMessage, error) {
	if err := validation.ValidateMessageContent(body); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	ok, err := s.repo.IsParticipant(ctx, roomID, senderID, senderModel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ErrForbidden
	}

	msg := &models.ChatMessage{
		RoomID:      roomID,
		SenderID:    senderID,
		SenderModel: senderModel,
		Body:        body,
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BroadcastToRoom(roomID, msg)
	}
	return msg, nil
}

// History возвращает историю сообщений комнаты её участнику.
func (s *ChatService) History(ctx context.Context, roomID, principalID uuid.UUID, role string, limit, offset int) ([]models.ChatMessage, error) {
	ok, err := s.repo.IsParticipant(ctx, roomID, principalID, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ErrForbidden
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListMessages(ctx, roomID, limit, offset)
}

// CanJoin проверяет право принципала на подписку к комнате.
func (s *ChatService) CanJoin(ctx context.Context, roomID, principalID uuid.UUID, role string) (bool, error) {
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return false, apperror.New(apperror.ErrCodeNotFound, "комната не найдена")
		}
		return false, err
	}
	return s.repo.IsParticipant(ctx, roomID, principalID, role)
}
