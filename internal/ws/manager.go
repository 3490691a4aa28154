package ws

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Manager fans accepted attendance events out to connected HR dashboards.
// New connections receive a snapshot of today's last event per employee,
// read back from redis, before the live stream.
type Manager struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	redis      *redis.Client
	mu         sync.RWMutex
}

func NewManager(redisClient *redis.Client) *Manager {
	m := &Manager{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      redisClient,
	}
	go m.run()
	return m
}

func (m *Manager) Register(client *Client) {
	m.register <- client
}

func (m *Manager) Unregister(client *Client) {
	m.unregister <- client
}

// PublishAttendance records the event as the employee's latest in redis and
// broadcasts it to every connected dashboard.
func (m *Manager) PublishAttendance(ctx context.Context, record *models.Attendance) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":      "attendance",
		"record":    record,
		"timestamp": time.Now().UTC(),
	})

	if m.redis != nil {
		key := "attendance:last:" + strconv.Itoa(record.UserID)
		if err := m.redis.Set(ctx, key, data, 24*time.Hour).Err(); err != nil {
			log.Printf("Redis set last attendance failed: %v", err)
		}
		if err := m.redis.SAdd(ctx, "attendance:today", record.UserID).Err(); err != nil {
			log.Printf("Redis SAdd warning: %v", err)
		}
		if err := m.redis.Expire(ctx, "attendance:today", 24*time.Hour).Err(); err != nil {
			log.Printf("Redis Expire warning: %v", err)
		}
	}

	m.broadcast <- data
}

func (m *Manager) run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			m.mu.Unlock()
			m.sendSnapshot(client)
		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.Send)
			}
			m.mu.Unlock()
		case message := <-m.broadcast:
			m.mu.Lock()
			for client := range m.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(m.clients, client)
				}
			}
			m.mu.Unlock()
		}
	}
}

// sendSnapshot replays today's last event per employee to a new client.
// Without redis there is no snapshot; the client only gets live events.
func (m *Manager) sendSnapshot(client *Client) {
	if m.redis == nil {
		return
	}
	ctx := context.Background()
	ids, err := m.redis.SMembers(ctx, "attendance:today").Result()
	if err != nil {
		log.Printf("Failed to read attendance:today set: %v", err)
		return
	}
	for _, id := range ids {
		data, err := m.redis.Get(ctx, "attendance:last:"+id).Bytes()
		if err != nil {
			continue
		}
		select {
		case client.Send <- data:
		default:
			return
		}
	}
}

// WritePump drains the client's send channel onto the socket.
func (m *Manager) WritePump(client *Client) {
	defer client.Conn.Close()
	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// ReadPump discards inbound frames and tears the client down on error. The
// feed is one-way; dashboards only listen.
func (m *Manager) ReadPump(client *Client) {
	defer func() {
		m.Unregister(client)
		client.Conn.Close()
	}()
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
