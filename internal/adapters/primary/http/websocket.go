package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// createUpgrader creates a WebSocket upgrader with proper origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// Client roles. Presenters may drive navigation over the socket;
// audience connections only follow.
const (
	RolePresenter = "presenter"
	RoleAudience  = "audience"
)

// WebSocketClient represents a WebSocket client connection
type WebSocketClient struct {
	id          string
	role        string
	conn        *websocket.Conn
	send        chan ports.UpdateEvent
	server      *Server
	syncService ports.ViewerSync
	forwardDone chan struct{}
	logger      *HTTPLogger
}

// ClientMessage represents a message received from the client
type ClientMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	role := r.URL.Query().Get("role")
	if role != RolePresenter {
		role = RoleAudience
	}

	client := &WebSocketClient{
		id:     uuid.New().String(),
		role:   role,
		conn:   conn,
		send:   make(chan ports.UpdateEvent, 256),
		server: s,
		logger: s.logger,
	}

	s.connMgr.Register(&Connection{
		ID:   client.id,
		Send: client.send,
	})

	s.mu.RLock()
	syncService := s.syncService
	s.mu.RUnlock()

	// Every client follows the shared navigation state through the sync
	// service; reload notifications still travel the connection manager.
	if syncService != nil {
		client.syncService = syncService
		client.forwardDone = make(chan struct{})
		go client.forwardSyncEvents(syncService.Subscribe(client.id))
	}

	go client.writePump()
	go client.readPump()

	// Send initial connection event with the current navigation state
	event := ports.UpdateEvent{
		Type:      "connected",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": "Connected to promptdeck server",
			"version": "1.0.0",
			"role":    role,
		},
	}

	if syncService != nil {
		event.Data.(map[string]interface{})["state"] = syncService.GetState()
	}

	select {
	case client.send <- event:
	default:
		// Client's send channel is full
	}
}

// readPump pumps messages from the WebSocket connection
func (c *WebSocketClient) readPump() {
	defer func() {
		// Unsubscribe closes the sync channel; wait for the forwarder to
		// drain before the connection manager closes the send channel.
		if c.syncService != nil {
			c.syncService.Unsubscribe(c.id)
			<-c.forwardDone
		}
		c.server.connMgr.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket connection error: %v", err)
			}
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.logger.Error("Failed to parse client message: %v", err)
			continue
		}

		c.handleCommand(clientMsg)
	}
}

// writePump pumps messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The channel has been closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleCommand applies a navigation or timer command from a viewer. The
// sync service fans the accepted event out to every subscribed client.
func (c *WebSocketClient) handleCommand(msg ClientMessage) {
	switch msg.Type {
	case "navigation", "timer":
	default:
		c.logger.Debug("Ignoring message type %q from client %s", msg.Type, c.id)
		return
	}

	if c.role != RolePresenter {
		c.logger.Debug("Ignoring %s command from audience client %s", msg.Type, c.id)
		return
	}

	if c.syncService == nil {
		return
	}

	event := entities.NewSyncEvent(msg.Type, msg.Data)
	if err := c.syncService.Broadcast(event); err != nil {
		c.logger.Warn("Rejected %s command from client %s: %v", msg.Type, c.id, err)
	}
}

// forwardSyncEvents relays shared-state changes to this client's socket.
// The channel closes on Unsubscribe or when the sync service stops.
func (c *WebSocketClient) forwardSyncEvents(events <-chan entities.SyncEvent) {
	defer close(c.forwardDone)

	for event := range events {
		update := ports.UpdateEvent{
			Type:      event.Type,
			Timestamp: event.Timestamp,
			Data: map[string]interface{}{
				"command": event.Data,
				"state":   c.syncService.GetState(),
			},
		}

		select {
		case c.send <- update:
		default:
			// writePump is saturated, drop the update
		}
	}
}

// BroadcastReload sends a reload event to all connected clients
func (s *Server) BroadcastReload() {
	event := ports.UpdateEvent{
		Type:      ports.EventTypeReload,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": "Deck updated",
		},
	}
	_ = s.NotifyClients(event)
}

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (same-origin requests)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid origin %q: %v", origin, err)
		return false
	}

	if s.config.IsDevelopment() {
		return s.isDevelopmentOrigin(originURL)
	}

	return s.isProductionOrigin(originURL)
}

// isDevelopmentOrigin validates origins for development environment
func (s *Server) isDevelopmentOrigin(originURL *url.URL) bool {
	hostname := originURL.Hostname()

	allowedHosts := []string{
		"localhost",
		"127.0.0.1",
		"0.0.0.0",
	}

	for _, allowed := range allowedHosts {
		if hostname == allowed {
			return true
		}
	}

	// Allow private network ranges so a phone on the venue Wi-Fi can follow
	if strings.HasPrefix(hostname, "192.168.") ||
		strings.HasPrefix(hostname, "10.") ||
		isPrivateClassB(hostname) {
		return true
	}

	return false
}

// isProductionOrigin validates origins for production environment
func (s *Server) isProductionOrigin(originURL *url.URL) bool {
	for _, allowedOrigin := range s.config.GetCORSOrigins() {
		if originURL.String() == allowedOrigin {
			return true
		}

		// Support wildcard subdomains (*.example.com)
		if strings.HasPrefix(allowedOrigin, "*.") {
			domain := strings.TrimPrefix(allowedOrigin, "*.")
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}

	s.logger.Warn("WebSocket connection rejected: origin %q not in whitelist", originURL.String())
	return false
}

// isPrivateClassB checks for 172.16.0.0 to 172.31.255.255 range
func isPrivateClassB(hostname string) bool {
	if !strings.HasPrefix(hostname, "172.") {
		return false
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return false
	}

	switch parts[1] {
	case "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "27", "28", "29", "30", "31":
		return true
	default:
		return false
	}
}
