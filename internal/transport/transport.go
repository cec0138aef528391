// Package transport defines how rooms reach connected clients. The room
// engine only ever hands finished packet strings to a Transport; framing,
// connection lifecycle and membership live behind it.
package transport

//go:generate mockgen -destination=mock/mock_transport.go -package=transportmock github.com/KirkDiggler/room-server/internal/transport Transport

// Transport delivers outbound packets
type Transport interface {
	// Send delivers payload to one session
	Send(sessionID string, payload string) error

	// Broadcast delivers payload to every session currently in roomID
	Broadcast(roomID int, payload string) error
}
