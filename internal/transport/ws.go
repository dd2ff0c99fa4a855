package transport

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"poker-platform/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans out committed table snapshots to every websocket connection
// subscribed to that table. It owns no table state of its own — it only
// relays what the Gateway already committed, matching the teacher's
// "fraud alert over an existing connection" push pattern generalized to
// state broadcast.
type Hub struct {
	mu      sync.RWMutex
	tables  map[string]map[*websocket.Conn]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{tables: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *Hub) subscribe(tableID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.tables[tableID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.tables[tableID] = conns
	}
	conns[conn] = struct{}{}
}

func (h *Hub) unsubscribe(tableID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.tables[tableID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.tables, tableID)
	}
}

// Broadcast pushes table to every connection subscribed to its table ID.
// A connection whose write fails is dropped silently; the reader loop
// handling that connection will notice the close and unsubscribe it.
func (h *Hub) Broadcast(tableID string, table *engine.Table) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.tables[tableID]))
	for conn := range h.tables[tableID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(table); err != nil {
			h.unsubscribe(tableID, conn)
		}
	}
}

// handleWebSocket upgrades the connection and subscribes it to tableId's
// broadcasts. The connection is otherwise read-only from the client's
// perspective: all mutation still goes through the REST endpoints, and
// this socket exists purely to push state after each commit.
func (s *Server) handleWebSocket(c *gin.Context) {
	tableID := c.Param("tableId")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error for table %s: %v", tableID, err)
		return
	}
	defer conn.Close()

	s.Hub.subscribe(tableID, conn)
	defer s.Hub.unsubscribe(tableID, conn)

	if snapshot, err := s.Engine.GetSnapshot(c.Request.Context(), tableID, ""); err == nil {
		_ = conn.WriteJSON(snapshot.Table)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error for table %s: %v", tableID, err)
			}
			return
		}
	}
}
