package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// SnapshotSource opens a live feed of a user's chat sessions. The hub holds
// one feed per connected user and fans deliveries out to all their sockets.
type SnapshotSource interface {
	Subscribe(ctx context.Context, userEmail string, onChange func([]*dto.ChatSessionResponse)) (func(), error)
}

type Hub struct {
	// Registered clients map: user email -> connected sockets (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	// One snapshot feed per user with at least one socket attached.
	feeds map[string]func()

	mu sync.RWMutex

	source SnapshotSource

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(source SnapshotSource, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		feeds:      make(map[string]func()),
		source:     source,
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			first := len(h.clients[client.Email]) == 0
			h.clients[client.Email] = append(h.clients[client.Email], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user": client.Email})

			if first {
				// The feed delivers its first snapshot synchronously, so it
				// must not run on the hub loop.
				go h.openFeed(client.Email)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Email]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.Email] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.Email]) == 0 {
					delete(h.clients, client.Email)
					cancel := h.feeds[client.Email]
					delete(h.feeds, client.Email)
					if cancel != nil {
						cancel()
					}
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user": client.Email})
				}
			}
			h.mu.Unlock()
		}
	}
}

// openFeed starts the chat snapshot subscription for a user. Every delivery
// is pushed to all their sockets, locally and via Redis to other instances.
func (h *Hub) openFeed(email string) {
	if h.source == nil {
		return
	}
	cancel, err := h.source.Subscribe(context.Background(), email, func(sessions []*dto.ChatSessionResponse) {
		h.SendSnapshot(email, sessions)
	})
	if err != nil {
		h.logger.Error("Hub", "Snapshot feed failed to open", map[string]interface{}{
			"user":  email,
			"error": err.Error(),
		})
		return
	}
	h.mu.Lock()
	h.feeds[email] = cancel
	h.mu.Unlock()
}

// SendSnapshot pushes the full session list to every socket of one user.
func (h *Hub) SendSnapshot(email string, sessions []*dto.ChatSessionResponse) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "chat_snapshot",
		"data": sessions,
	})
	h.sendLocal(email, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_user": email,
			"message":     json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "cluster_events", payload)
	}
}

func (h *Hub) sendLocal(email string, data []byte) {
	h.mu.RLock()
	clients := h.clients[email]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Unregistering closes the Send channel; closing it here too
			// would be a double close.
			h.logger.Warn("Hub", "Client send buffer full, dropping socket", map[string]interface{}{"user": email})
			h.unregister <- client
		}
	}
}

// subscribeToRedis relays snapshots published by other instances to the
// sockets this instance holds. Every instance subscribes to the shared
// channel and filters by the target user.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUser string          `json:"target_user"`
			Message    json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		h.sendLocal(payload.TargetUser, payload.Message)
	}
}
