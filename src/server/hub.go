package server

import (
	"encoding/json"
	"net/http"

	"xapi-connector/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It alone touches the clients map
// and closes send channels.
func (s *GatewayServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				s.drop(client)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int32(len(s.clients)))
			client.send <- s.snapshotFor(client)

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.drop(client)
			}

		case client := <-s.resync:
			if _, ok := s.clients[client]; !ok {
				continue
			}
			select {
			case client.send <- s.snapshotFor(client):
			default:
				s.drop(client)
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				ticks := client.pick(message.Ticks)
				if len(ticks) == 0 {
					continue
				}
				update := *message
				update.Ticks = ticks
				select {
				case client.send <- &update:
				default:
					// Slow consumers are pruned so the hub never blocks.
					s.drop(client)
				}
			}
		}
	}
}

func (s *GatewayServer) drop(client *Client) {
	delete(s.clients, client)
	close(client.send)
	s.connections.Store(int32(len(s.clients)))
}

func (s *GatewayServer) connectionCount() int {
	return int(s.connections.Load())
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas merges a batch or snapshot into the served state without
// pushing it to clients.
func (s *GatewayServer) UpdateAllDatas(data interface{}) {
	update, ok := toLatestData(data)
	if !ok {
		s.Logger.Warning("UpdateAllDatas: unsupported payload %T", data)
		return
	}
	s.merge(update)
}

// -----------------------------------------------------------------------------

// Broadcast merges the update into the served state and queues it for every
// subscribed client.
func (s *GatewayServer) Broadcast(message interface{}) {
	update, ok := toLatestData(message)
	if !ok {
		s.Logger.Warning("Broadcast: unsupported payload %T", message)
		return
	}
	s.merge(update)
	if len(update.Ticks) == 0 {
		return
	}

	select {
	case s.broadcast <- update:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

func (s *GatewayServer) merge(update *models.MLatestData) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	for sym, t := range update.Ticks {
		s.latestState.Ticks[sym] = t
	}
	if update.Timestamp > s.latestState.Timestamp {
		s.latestState.Timestamp = update.Timestamp
	}
	s.latestState.ProcessingMetrics = update.ProcessingMetrics
	s.latestState.Type = "UPDATE"
}

// LatestState returns a copy of the served snapshot.
func (s *GatewayServer) LatestState() models.MLatestData {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	state := *s.latestState
	state.Ticks = make(map[string]models.MTick, len(s.latestState.Ticks))
	for sym, t := range s.latestState.Ticks {
		state.Ticks[sym] = t
	}
	return state
}

func (s *GatewayServer) snapshotFor(client *Client) *models.MLatestData {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	return &models.MLatestData{
		Type:              "INITIAL",
		Ticks:             client.pick(s.latestState.Ticks),
		Timestamp:         s.latestState.Timestamp,
		ProcessingMetrics: s.latestState.ProcessingMetrics,
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

func (s *GatewayServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)
	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe/unsubscribe command and answers
// with a fresh INITIAL snapshot for the new filter.
func (s *GatewayServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Warning("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "subscribe":
		client.subscribe(cmd.Symbols)
	case "unsubscribe":
		client.unsubscribe(cmd.Symbols)
	default:
		s.Logger.Debug("Ignoring client command %q", cmd.Command)
		return
	}

	select {
	case s.resync <- client:
	case <-s.done:
	}
}
