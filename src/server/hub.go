package server

import (
	"encoding/json"
	"net/http"
	"time"

	"deal-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It is the only goroutine touching
// the client set and exits through the done channel, closing every
// subscriber's send channel on the way out.
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case snapshot := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = snapshot
			s.stateMutex.Unlock()

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- snapshot:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a refreshed quotes snapshot for all connected clients.
// After shutdown the snapshot is dropped instead of blocking the caller.
func (s *APIServer) Broadcast(snapshot *models.MLatestQuotes) {
	if snapshot == nil {
		return
	}
	if snapshot.Type == "" {
		snapshot.Type = "UPDATE"
	}
	if snapshot.Timestamp == 0 {
		snapshot.Timestamp = time.Now().Unix()
	}

	select {
	case s.broadcast <- snapshot:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	s.stateMutex.RLock()
	response := s.filteredSnapshot(cmd.GameIDs)
	s.stateMutex.RUnlock()

	// Send response to client without blocking the handler if the client's
	// buffer is full.
	select {
	case client.send <- response:
	default:
	}
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

// filteredSnapshot returns the latest state restricted to the requested game
// ids; an empty filter means everything. Caller holds stateMutex.
func (s *APIServer) filteredSnapshot(gameIDs []string) *models.MLatestQuotes {
	filtered := make(map[string]models.MQuoteData)

	if len(gameIDs) == 0 {
		for id, q := range s.latestState.Quotes {
			filtered[id] = q
		}
	} else {
		for _, id := range gameIDs {
			if q, exists := s.latestState.Quotes[id]; exists {
				filtered[id] = q
			}
		}
	}

	return &models.MLatestQuotes{
		Type:      "INITIAL",
		Quotes:    filtered,
		Timestamp: s.latestState.Timestamp,
	}
}
