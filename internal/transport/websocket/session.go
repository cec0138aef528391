package websocket

import (
	"log/slog"
	"sync"
	"time"

	gorilla "github.com/gorilla/websocket"
)

// session is one connected client. Writes go through send and are flushed
// by writePump; readPump owns the connection's read side.
type session struct {
	id     string
	userID int
	name   string
	figure string
	motto  string

	conn         *gorilla.Conn
	send         chan string
	writeTimeout time.Duration
	logger       *slog.Logger

	// guarded by Gateway.mu
	roomID int

	mu      sync.Mutex
	pinged  bool
	ponged  bool
	closing bool
	done    chan struct{}
}

// push queues payload without blocking. A session whose buffer is full is
// too slow to keep up and gets closed.
func (s *session) push(payload string) bool {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return false
	}
	select {
	case s.send <- payload:
		s.mu.Unlock()
		return true
	default:
		s.mu.Unlock()
		s.logger.Warn("send buffer full, closing session")
		s.close()
		return false
	}
}

// close stops the write pump and the underlying connection. Safe to call
// more than once.
func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return
	}
	s.closing = true
	close(s.done)
	_ = s.conn.Close()
}

// markPonged records a pong for the current ping round
func (s *session) markPonged() {
	s.mu.Lock()
	s.ponged = true
	s.mu.Unlock()
}

// startPingRound reports whether the previous ping went unanswered, and
// otherwise arms a new round.
func (s *session) startPingRound() (stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pinged && !s.ponged {
		return true
	}
	s.pinged = true
	s.ponged = false
	return false
}

func (s *session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(gorilla.TextMessage, []byte(payload)); err != nil {
				s.logger.Debug("write failed", "error", err)
				s.close()
				return
			}
		}
	}
}
