package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/goroutine"
	"github.com/ignatzorin/marketplace-backend/internal/logger"
)

// Hub управляет WebSocket подписчиками комнат чата.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	roomID  uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.roomID, msg.payload)
		}
	}
}

// Register подписывает клиента на комнату.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister снимает подписку клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToRoom рассылает событие всем подписчикам комнаты.
// Контракт сообщения: поле "type" — имя события, "data" — полезная нагрузка.
func (h *Hub) BroadcastToRoom(roomID uuid.UUID, data interface{}) {
	payload := map[string]interface{}{
		"type": "message",
		"data": data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Log.WithField("error", err.Error()).Error("ws: не удалось сериализовать сообщение")
		return
	}

	h.broadcast <- message{roomID: roomID, payload: raw}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[client.roomID]; !ok {
		h.rooms[client.roomID] = make(map[*Client]struct{})
	}
	h.rooms[client.roomID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[client.roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, client.roomID)
		}
	}
}

func (h *Hub) send(roomID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент: закрываем, не блокируя остальных.
			goroutine.SafeGo(client.Close)
		}
	}
}
