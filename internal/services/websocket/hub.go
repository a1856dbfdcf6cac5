package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"cocomarkup/internal/logger"
	"cocomarkup/internal/models"

	"github.com/gorilla/websocket"
)

const (
	broadcastBuffer = 256
	writeWait       = 5 * time.Second

	// DefaultPongWait is how long a viewer may stay silent before it is dropped.
	DefaultPongWait = 60 * time.Second
)

// HubService fans task events out to connected progress viewers.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *logger.Logger
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewHubService(logger *logger.Logger) *HubService {
	return NewHubServiceWithKeepAlive(logger, DefaultPongWait)
}

// NewHubServiceWithKeepAlive creates a hub that pings every viewer at 9/10 of
// pongWait, so a viewer that answers pings never hits its read deadline.
func NewHubServiceWithKeepAlive(logger *logger.Logger, pongWait time.Duration) *HubService {
	if pongWait <= 0 {
		pongWait = DefaultPongWait
	}
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
		pongWait:   pongWait,
		pingPeriod: pongWait * 9 / 10,
	}
}

// PongWait is the read deadline handlers give each viewer.
func (h *HubService) PongWait() time.Duration {
	return h.pongWait
}

// Run serves registrations and broadcasts until Stop is called.
func (h *HubService) Run() {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Progress viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Progress viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Warning("Error sending progress message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-ticker.C:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					h.logger.Warning("Error pinging progress viewer: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop disconnects all viewers and ends Run. Safe to call more than once.
func (h *HubService) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every viewer. It never blocks a worker: when
// the buffer is full the message is dropped.
func (h *HubService) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warning("Progress buffer full, dropping message")
	}
}

// TaskChanged implements scheduler.Observer.
func (h *HubService) TaskChanged(event models.TaskEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding task event: %v", err)
		return
	}
	h.Broadcast(message)
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
