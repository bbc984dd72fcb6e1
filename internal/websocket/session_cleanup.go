package websocket

import (
	"time"

	"go.uber.org/zap"

	"github.com/danarifki/temani/internal/session"
)

// maxChatDuration caps a single chat so an abandoned tab cannot hold a
// realtime stream open indefinitely.
const maxChatDuration = 2 * time.Hour

// SessionReaper periodically releases sessions that have terminated or run
// past the duration cap while their connection stays open.
type SessionReaper struct {
	hub      *Hub
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewSessionReaper creates a reaper over the hub's clients.
func NewSessionReaper(hub *Hub, logger *zap.Logger) *SessionReaper {
	return &SessionReaper{
		hub:      hub,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background reaping process
func (s *SessionReaper) Start() {
	go s.reapLoop()
	s.logger.Info("Session reaper started")
}

// Stop gracefully stops the reaper
func (s *SessionReaper) Stop() {
	close(s.stopChan)
	s.logger.Info("Session reaper stopped")
}

func (s *SessionReaper) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runReap()
		}
	}
}

// runReap tears down every session that is past recovery. The websocket
// connection itself stays open so the browser can start a fresh chat.
func (s *SessionReaper) runReap() {
	s.hub.mu.RLock()
	clients := make([]*Client, 0, len(s.hub.clients))
	for _, c := range s.hub.clients {
		clients = append(clients, c)
	}
	s.hub.mu.RUnlock()

	for _, c := range clients {
		c.mutex.Lock()
		ctrl := c.controller
		started := c.chatStarted
		c.mutex.Unlock()
		if ctrl == nil {
			continue
		}

		state := ctrl.State()
		expired := time.Since(started) > maxChatDuration
		if state != session.StateFailed && state != session.StateClosed && !expired {
			continue
		}

		s.logger.Info("Reaping session",
			zap.String("clientID", c.clientID),
			zap.String("state", state.String()),
			zap.Bool("expired", expired))
		c.handleEndChat()
	}
}
