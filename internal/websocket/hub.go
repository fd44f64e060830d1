package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
)

const (
	// 클라이언트가 1초에 보낼 수 있는 메시지 수
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// ClientMessage 클라이언트가 보내는 메시지. 지금은 ping 만 있다
type ClientMessage struct {
	Type string `json:"type"`
}

// Client 파트너센터 화면 하나의 연결
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SubjectID string // partnerId 또는 adminId
	IsAdmin   bool
	Send      chan []byte

	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, subjectID string, isAdmin bool) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SubjectID: subjectID,
		IsAdmin:   isAdmin,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// canSee 관리자는 모든 이벤트, 파트너는 자기 ID 가 들어 있는 이벤트만
func (c *Client) canSee(partnerIDs []string) bool {
	if c.IsAdmin {
		return true
	}
	for _, id := range partnerIDs {
		if id == c.SubjectID {
			return true
		}
	}
	return false
}

type delivery struct {
	partnerIDs []string
	data       []byte
}

// Hub 연결 관리자. service.EventPublisher 를 구현한다
type Hub struct {
	// 같은 계정이 여러 탭에서 접속할 수 있다
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan delivery, 1024),
	}
}

// Run ctx 가 끝나면 모든 연결의 Send 채널을 닫고 돌아온다
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, list := range h.clients {
				for _, c := range list {
					close(c.Send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SubjectID] = append(h.clients[client.SubjectID], client)
			sessions := len(h.clients[client.SubjectID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"subject_id":     client.SubjectID,
				"admin":          client.IsAdmin,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.SubjectID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.SubjectID)
	} else {
		h.clients[client.SubjectID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"subject_id":         client.SubjectID,
		"remaining_sessions": len(kept),
	})
}

func (h *Hub) deliver(msg delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, list := range h.clients {
		for _, client := range list {
			if !client.canSee(msg.partnerIDs) {
				continue
			}
			select {
			case client.Send <- msg.data:
			default:
				// 버퍼가 찬 연결은 끊는다
				go h.Unregister(client)
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"subject_id": client.SubjectID,
				})
			}
		}
	}
}

// Publish 이벤트를 볼 수 있는 연결에만 보낸다. 채널이 가득 차면 버린다
func (h *Hub) Publish(event service.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}

	select {
	case h.broadcast <- delivery{partnerIDs: event.PartnerIDs, data: data}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": event.Type,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Online 연결된 계정 수
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) IsOnline(subjectID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[subjectID]
	return ok
}

// HandleClientMessage ping 에는 pong 으로 답한다
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"subject_id": client.SubjectID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"subject_id": client.SubjectID,
			"error":      err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		data, _ := json.Marshal(map[string]interface{}{"type": "pong", "at": now})
		h.sendTo(client, data)
	}
}

// sendTo 등록된 연결에만 보낸다. Send 는 허브가 잠금 안에서 닫는다
func (h *Hub) sendTo(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[client.SubjectID] {
		if c != client {
			continue
		}
		select {
		case c.Send <- data:
		default:
		}
		return
	}
}
