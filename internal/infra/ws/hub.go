// Package ws pushes pipeline progress to clients over WebSocket. One logical
// channel exists per user; every live connection of that user receives each
// event, so multiple simultaneous sessions all stay current.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/metrics"
	"go.uber.org/zap"
)

// envelope is the wire frame; the event name matches what the web client
// subscribes to.
type envelope struct {
	Event string               `json:"event"`
	Data  entity.ProgressEvent `json:"data"`
}

const progressEventName = "video-status"

type Hub struct {
	mu     sync.RWMutex
	users  map[int]map[*connection]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		users:  make(map[int]map[*connection]struct{}),
		logger: logger,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.users[c.userID]
	if !ok {
		conns = make(map[*connection]struct{})
		h.users[c.userID] = conns
	}
	conns[c] = struct{}{}
	h.logger.Info("client connected", zap.Int("user_id", c.userID))
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.users[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.users, c.userID)
	}
	h.logger.Info("client disconnected", zap.Int("user_id", c.userID))
}

// Publish fans the event out to every live connection of the user. Slow
// consumers whose send buffer is full skip the event rather than block the
// pipeline.
func (h *Hub) Publish(userID int, event entity.ProgressEvent) {
	data, err := json.Marshal(envelope{Event: progressEventName, Data: event})
	if err != nil {
		h.logger.Error("marshal progress event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	metrics.ProgressEventsTotal.WithLabelValues(string(event.Status)).Inc()

	for c := range h.users[userID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping event for slow consumer", zap.Int("user_id", userID))
		}
	}
}

// ConnectionCount reports live connections for a user.
func (h *Hub) ConnectionCount(userID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
