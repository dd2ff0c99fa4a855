// Package transport exposes the engine over HTTP: a small set of JSON RPC
// endpoints for table lifecycle and in-hand actions, plus a websocket hub
// that broadcasts the committed table snapshot after every mutation. This
// mirrors the teacher's cmd/game-server/main.go (gin + gorilla/websocket),
// generalized from the teacher's ad-hoc message-type switch to the
// engine's typed operations.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/storage"
)

// Server wires the engine into gin routes and a websocket broadcast hub.
type Server struct {
	Engine *engine.Engine
	Hub    *Hub
	// Publisher and HandHistory are optional: when nil, a resolved hand is
	// still applied and broadcast, it just isn't fanned out to Kafka/
	// ClickHouse. This keeps the server runnable in tests without either
	// dependency available.
	Publisher   *events.HandPublisher
	HandHistory storage.HandHistoryRepository
}

// NewServer builds a Server around an already-wired Engine.
func NewServer(eng *engine.Engine) *Server {
	return &Server{Engine: eng, Hub: NewHub()}
}

// Register attaches every route to router.
func (s *Server) Register(router *gin.Engine) {
	router.POST("/api/tables", s.createTable)
	router.GET("/api/tables/:tableId", s.getSnapshot)
	router.POST("/api/tables/:tableId/join", s.joinTable)
	router.POST("/api/tables/:tableId/leave", s.leaveTable)
	router.POST("/api/tables/:tableId/start", s.startGame)
	router.POST("/api/tables/:tableId/action", s.playerAction)
	router.POST("/api/tables/:tableId/end", s.endHand)
	router.POST("/api/tables/:tableId/terminate", s.terminateTable)
	router.POST("/api/tables/:tableId/host", s.transferHost)
	router.GET("/ws/:tableId", s.handleWebSocket)
}

type createTableRequest struct {
	HostID   string               `json:"hostId" binding:"required"`
	Settings *engine.TableSettings `json:"settings"`
}

func (s *Server) createTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings := engine.DefaultTableSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}
	tableID, err := s.Engine.CreateTable(c.Request.Context(), req.HostID, settings)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tableId": tableID})
}

func (s *Server) getSnapshot(c *gin.Context) {
	tableID := c.Param("tableId")
	playerID := c.Query("playerId")
	snapshot, err := s.Engine.GetSnapshot(c.Request.Context(), tableID, playerID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type joinTableRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	BuyIn    int64  `json:"buyIn" binding:"required"`
}

func (s *Server) joinTable(c *gin.Context) {
	tableID := c.Param("tableId")
	var req joinTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	seat, err := s.Engine.JoinTable(c.Request.Context(), tableID, req.PlayerID, req.BuyIn)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	s.broadcastSnapshot(c, tableID)
	c.JSON(http.StatusOK, gin.H{"seat": seat})
}

type leaveTableRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

func (s *Server) leaveTable(c *gin.Context) {
	tableID := c.Param("tableId")
	var req leaveTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cashedOut, err := s.Engine.LeaveTable(c.Request.Context(), tableID, req.PlayerID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	s.broadcastSnapshot(c, tableID)
	c.JSON(http.StatusOK, gin.H{"cashedOut": cashedOut})
}

type startGameRequest struct {
	CallerID string `json:"callerId" binding:"required"`
}

func (s *Server) startGame(c *gin.Context) {
	tableID := c.Param("tableId")
	var req startGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := s.Engine.StartGame(c.Request.Context(), tableID, req.CallerID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	s.broadcastSnapshot(c, tableID)
	c.JSON(http.StatusOK, doc.Table)
}

type playerActionRequest struct {
	PlayerID string           `json:"playerId" binding:"required"`
	Kind     engine.ActionKind `json:"kind" binding:"required"`
	RaiseTo  int64            `json:"raiseTo"`
}

func (s *Server) playerAction(c *gin.Context) {
	tableID := c.Param("tableId")
	var req playerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.Engine.PlayerAction(c.Request.Context(), tableID, req.PlayerID, req.Kind, req.RaiseTo)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	s.broadcastSnapshot(c, tableID)
	if result != nil {
		go s.publishHandResult(tableID, result)
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// publishHandResult fans a resolved hand out to Kafka and ClickHouse,
// mirroring the teacher's fire-and-forget fraud-detection dispatch after
// every player action: neither failure here should hold up the RPC that
// already committed.
func (s *Server) publishHandResult(tableID string, result *engine.HandResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.Publisher != nil {
		if err := s.Publisher.PublishHandResult(ctx, tableID, result); err != nil {
			log.Printf("publish hand completed event for table %s: %v", tableID, err)
		}
	}

	if s.HandHistory != nil {
		now := time.Now()
		events := make([]storage.HandHistoryEvent, 0, len(result.Payouts))
		for playerID, payout := range result.Payouts {
			category := ""
			if hand, ok := result.Hands[playerID]; ok {
				category = hand.Category.String()
			}
			events = append(events, storage.HandHistoryEvent{
				EventID:      fmt.Sprintf("%s:%d:%s", tableID, result.HandNumber, playerID),
				HandNumber:   result.HandNumber,
				TableID:      tableID,
				PlayerID:     playerID,
				Payout:       payout,
				Uncontested:  result.Uncontested,
				HandCategory: category,
				NumPlayers:   len(result.Payouts),
				Timestamp:    now,
			})
		}
		if err := s.HandHistory.RecordHand(ctx, events); err != nil {
			log.Printf("record hand history for table %s: %v", tableID, err)
		}
	}
}

// endHand resolves a hand that has reached showdown, returning the
// winning seats and their payouts. Calling it again once the hand has
// already resolved returns failed-precondition rather than paying out
// twice — the showdown scheduler relies on that to retry safely.
func (s *Server) endHand(c *gin.Context) {
	tableID := c.Param("tableId")
	result, err := s.Engine.EndHand(c.Request.Context(), tableID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	s.broadcastSnapshot(c, tableID)
	if result != nil {
		go s.publishHandResult(tableID, result)
	}
	winners := make([]string, 0, len(result.Payouts))
	for playerID := range result.Payouts {
		winners = append(winners, playerID)
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners, "payouts": result.Payouts})
}

type terminateTableRequest struct {
	CallerID string `json:"callerId" binding:"required"`
}

// terminateTable ends the table outright, cashing out every remaining
// seat. This is a host action to close a table down between hands, a
// different operation from endHand resolving one hand's showdown.
func (s *Server) terminateTable(c *gin.Context) {
	tableID := c.Param("tableId")
	var req terminateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Engine.TerminateTable(c.Request.Context(), tableID, req.CallerID); err != nil {
		writeEngineError(c, err)
		return
	}
	s.broadcastSnapshot(c, tableID)
	c.Status(http.StatusNoContent)
}

type transferHostRequest struct {
	CallerID  string `json:"callerId" binding:"required"`
	NewHostID string `json:"newHostId" binding:"required"`
}

func (s *Server) transferHost(c *gin.Context) {
	tableID := c.Param("tableId")
	var req transferHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Engine.TransferHost(c.Request.Context(), tableID, req.CallerID, req.NewHostID); err != nil {
		writeEngineError(c, err)
		return
	}
	s.broadcastSnapshot(c, tableID)
	c.Status(http.StatusNoContent)
}

// broadcastSnapshot re-reads the table after a commit and pushes it to
// every websocket subscriber. Best-effort: a broadcast failure never
// fails the RPC that triggered it.
func (s *Server) broadcastSnapshot(c *gin.Context, tableID string) {
	snapshot, err := s.Engine.GetSnapshot(c.Request.Context(), tableID, "")
	if err != nil {
		return
	}
	s.Hub.Broadcast(tableID, snapshot.Table)
}

func writeEngineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var ee *engine.EngineError
	if errors.As(err, &ee) {
		switch ee.Kind {
		case engine.InvalidArgument:
			status = http.StatusBadRequest
		case engine.Unauthenticated:
			status = http.StatusUnauthorized
		case engine.PermissionDenied:
			status = http.StatusForbidden
		case engine.NotFound:
			status = http.StatusNotFound
		case engine.AlreadyExists:
			status = http.StatusConflict
		case engine.FailedPrecondition:
			status = http.StatusPreconditionFailed
		case engine.ResourceExhausted:
			status = http.StatusTooManyRequests
		case engine.Aborted:
			status = http.StatusConflict
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
