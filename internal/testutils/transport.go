package testutils

import (
	"sync"

	"github.com/KirkDiggler/room-server/internal/transport"
)

// RecordingTransport keeps every packet handed to it. Safe for concurrent
// use.
type RecordingTransport struct {
	mu         sync.Mutex
	sent       map[string][]string
	broadcasts map[int][]string
}

// NewRecordingTransport returns an empty recorder
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{
		sent:       make(map[string][]string),
		broadcasts: make(map[int][]string),
	}
}

// Send records payload for sessionID
func (t *RecordingTransport) Send(sessionID string, payload string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent[sessionID] = append(t.sent[sessionID], payload)
	return nil
}

// Broadcast records payload for roomID
func (t *RecordingTransport) Broadcast(roomID int, payload string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.broadcasts[roomID] = append(t.broadcasts[roomID], payload)
	return nil
}

// Sent returns a copy of everything sent to sessionID
func (t *RecordingTransport) Sent(sessionID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent[sessionID]...)
}

// Broadcasts returns a copy of everything broadcast to roomID
func (t *RecordingTransport) Broadcasts(roomID int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.broadcasts[roomID]...)
}

// BroadcastsWithPrefix returns the broadcasts to roomID starting with
// prefix, usually a packet header
func (t *RecordingTransport) BroadcastsWithPrefix(roomID int, prefix string) []string {
	var out []string
	for _, p := range t.Broadcasts(roomID) {
		if len(p) >= len(prefix) && p[:len(prefix)] == prefix {
			out = append(out, p)
		}
	}
	return out
}

// Reset forgets everything recorded so far
func (t *RecordingTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = make(map[string][]string)
	t.broadcasts = make(map[int][]string)
}

var _ transport.Transport = (*RecordingTransport)(nil)
