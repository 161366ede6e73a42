package debug

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// WebSocketHub fans log events out to connected dashboard clients.
type WebSocketHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

var Hub *WebSocketHub

func init() {
	Hub = &WebSocketHub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		clients:    make(map[*websocket.Conn]bool),
	}
	go Hub.run()
}

func (h *WebSocketHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Info("dashboard client connected", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()
			logger.Info("dashboard client disconnected", zap.Int("clients", len(h.clients)))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// HandleWebSocketFiber registers a Fiber websocket connection with the hub.
func HandleWebSocketFiber(conn *websocket.Conn) {
	Hub.register <- conn
	defer func() {
		Hub.unregister <- conn
	}()
	for {
		// Ignore inbound payloads; the dashboard is read-only.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// LogMessage is the wire format for one dashboard log line.
type LogMessage struct {
	Type     string                 `json:"type"`
	Source   string                 `json:"source"`
	Level    string                 `json:"level"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SendLog broadcasts a log line to connected dashboard clients.
func SendLog(source, level, message string, metadata map[string]interface{}) {
	if Hub == nil || len(Hub.clients) == 0 {
		return
	}

	msg := LogMessage{
		Type:     "log",
		Source:   source,
		Level:    level,
		Message:  message,
		Metadata: metadata,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case Hub.broadcast <- data:
	default:
		// Channel full, drop the message rather than block a request.
	}
}

// ScrapeStatusMessage reports the upstream scrape health to the dashboard.
type ScrapeStatusMessage struct {
	Type           string `json:"type"`
	Status         string `json:"status"`
	LastRun        int64  `json:"lastRun"`
	PanelsDecoded  int    `json:"panelsDecoded"`
	PackedDecoded  int    `json:"packedDecoded"`
	Errors         int    `json:"errors"`
	UptimeSeconds  int64  `json:"uptime"`
}

var startTime = time.Now()

// SendScrapeStatus broadcasts the latest scrape outcome to the dashboard.
func SendScrapeStatus(status string, lastRun time.Time, panels, packed, errors int) {
	if Hub == nil || len(Hub.clients) == 0 {
		return
	}
	msg := ScrapeStatusMessage{
		Type:          "scrape_status",
		Status:        status,
		LastRun:       lastRun.UnixMilli(),
		PanelsDecoded: panels,
		PackedDecoded: packed,
		Errors:        errors,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case Hub.broadcast <- data:
	default:
	}
}
