package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
)

// defaultPingPeriod must stay below the handlers' 60 s read deadline so idle
// clients keep extending it with pongs.
const defaultPingPeriod = 30 * time.Second

// HubService fans messages out to connected viewer clients (live frames from
// the detector, alert events on the dashboard).
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	logger     *logger.Logger
	metrics    *metrics.Metrics
	pingPeriod time.Duration
}

// NewHubService creates a hub. Call Run in a goroutine to start it.
func NewHubService(log *logger.Logger, m *metrics.Metrics) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		logger:     log,
		metrics:    m,
		pingPeriod: defaultPingPeriod,
	}
}

// Run owns all writes to client connections: broadcasts and the keepalive
// pings that stop idle clients from hitting their read deadline.
func (h *HubService) Run() {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.updateViewerGauge()
			h.logger.Info("Client connected. Total: %d", h.GetClientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mutex.Unlock()
			h.updateViewerGauge()
			h.logger.Info("Client disconnected. Total: %d", h.GetClientCount())

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				err := client.WriteMessage(websocket.TextMessage, message)
				if err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
			h.updateViewerGauge()

		case <-ticker.C:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.PingMessage, nil); err != nil {
					h.logger.Error("Error pinging client: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
			h.updateViewerGauge()
		}
	}
}

func (h *HubService) Register(client *websocket.Conn) {
	h.register <- client
}

func (h *HubService) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// Broadcast sends a raw message to every connected client.
func (h *HubService) Broadcast(message []byte) {
	h.broadcast <- message
}

// BroadcastEvent marshals an event and sends it to every connected client.
func (h *HubService) BroadcastEvent(event dto.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding event: %v", err)
		return
	}
	h.Broadcast(data)
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *HubService) updateViewerGauge() {
	if h.metrics != nil {
		h.metrics.ConnectedViewers.Set(float64(h.GetClientCount()))
	}
}
