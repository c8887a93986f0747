package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// ChatHandler обслуживает комнаты и сообщения чата.
type ChatHandler struct {
	chat   *service.ChatService
	orders *service.OrderService
}

// NewChatHandler создаёт новый хэндлер.
func NewChatHandler(chat *service.ChatService, orders *service.OrderService) *ChatHandler {
	return &ChatHandler{chat: chat, orders: orders}
}

// OpenOrderRoom POST /orders/:id/chat
// Комната заказа создаётся при первом обращении любого из участников.
func (h *ChatHandler) OpenOrderRoom(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Get(c.Request.Context(), principalID, role, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	room, err := h.chat.OpenOrderRoom(c.Request.Context(), order)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListRooms GET /chat/rooms
func (h *ChatHandler) ListRooms(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	rooms, err := h.chat.ListRooms(c.Request.Context(), principalID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// SendMessage POST /chat/rooms/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	roomID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "body обязателен")
		return
	}

	msg, err := h.chat.SendMessage(c.Request.Context(), roomID, principalID, role, req.Body)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// History GET /chat/rooms/:id/messages
func (h *ChatHandler) History(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	roomID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	messages, err := h.chat.History(c.Request.Context(), roomID, principalID, role, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
