// Package websocket carries the packet protocol over websocket connections.
// Every text message is one packet. The Gateway keeps the map of which
// session sits in which room from occupant events, so rooms can broadcast
// without knowing about connections.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	gorilla "github.com/gorilla/websocket"

	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/orchestrators/rooms"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	"github.com/KirkDiggler/room-server/internal/pkg/idgen"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/room"
	"github.com/KirkDiggler/room-server/internal/transport"
)

// Defaults applied to zero Config fields
const (
	DefaultPingInterval = 30 * time.Second
	DefaultSendBuffer   = 256
	DefaultWriteTimeout = 10 * time.Second
	DefaultReadLimit    = 4096
)

// Config configures a Gateway
type Config struct {
	EventBus    events.EventBus
	Clock       clock.Clock
	IDGenerator idgen.Generator

	PingInterval time.Duration
	SendBuffer   int
	WriteTimeout time.Duration
	ReadLimit    int64

	// CheckOrigin filters upgrade requests; nil accepts every origin
	CheckOrigin func(r *http.Request) bool
	// Identify resolves the user a connecting client speaks for. Nil makes
	// every client a guest: user 0, which owns no room.
	Identify func(r *http.Request) (int, error)
	Logger      *slog.Logger
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if cfg.PingInterval < 0 {
		vb.InvalidField("PingInterval", "cannot be negative")
	}
	if cfg.SendBuffer < 0 {
		vb.InvalidField("SendBuffer", "cannot be negative")
	}
	return vb.Build()
}

// Gateway accepts websocket clients and implements transport.Transport for
// the rooms they join.
type Gateway struct {
	bus          events.EventBus
	clock        clock.Clock
	ids          idgen.Generator
	upgrader     gorilla.Upgrader
	pingInterval time.Duration
	sendBuffer   int
	writeTimeout time.Duration
	readLimit    int64
	identify     func(r *http.Request) (int, error)
	logger       *slog.Logger
	subs         []string

	mu       sync.RWMutex
	closed   bool
	sessions map[string]*session
	members  map[int]map[string]*session
}

var _ transport.Transport = (*Gateway)(nil)

// NewGateway creates a gateway and subscribes it to occupant events
func NewGateway(cfg *Config) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	g := &Gateway{
		bus:          cfg.EventBus,
		clock:        cfg.Clock,
		ids:          cfg.IDGenerator,
		pingInterval: cfg.PingInterval,
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: cfg.WriteTimeout,
		readLimit:    cfg.ReadLimit,
		identify:     cfg.Identify,
		logger:       cfg.Logger,
		sessions:     make(map[string]*session),
		members:      make(map[int]map[string]*session),
	}
	if g.clock == nil {
		g.clock = clock.New()
	}
	if g.ids == nil {
		g.ids = idgen.NewUUID("session")
	}
	if g.pingInterval == 0 {
		g.pingInterval = DefaultPingInterval
	}
	if g.sendBuffer == 0 {
		g.sendBuffer = DefaultSendBuffer
	}
	if g.writeTimeout == 0 {
		g.writeTimeout = DefaultWriteTimeout
	}
	if g.readLimit == 0 {
		g.readLimit = DefaultReadLimit
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = g.logger.With("component", "websocket_gateway")

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	g.upgrader = gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	g.subs = append(g.subs,
		g.bus.SubscribeFunc(room.EventOccupantEntered, 0, g.onEntered),
		g.bus.SubscribeFunc(room.EventOccupantLeft, 0, g.onLeft),
	)

	return g, nil
}

// Send delivers payload to one session
func (g *Gateway) Send(sessionID string, payload string) error {
	g.mu.RLock()
	s := g.sessions[sessionID]
	g.mu.RUnlock()

	if s == nil {
		return errors.NotFoundf("session %s not found", sessionID)
	}
	if !s.push(payload) {
		return errors.Unavailablef("session %s is closing", sessionID)
	}
	return nil
}

// Broadcast delivers payload to every session in roomID. Sessions that
// cannot take it are closed rather than holding up the room.
func (g *Gateway) Broadcast(roomID int, payload string) error {
	g.mu.RLock()
	targets := make([]*session, 0, len(g.members[roomID]))
	for _, s := range g.members[roomID] {
		targets = append(targets, s)
	}
	g.mu.RUnlock()

	for _, s := range targets {
		s.push(payload)
	}
	return nil
}

// Handler returns the upgrade endpoint. Packets from its clients are routed
// to svc. The query string carries the user's identity: user, name, figure
// and motto.
func (g *Gateway) Handler(svc rooms.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.RLock()
		closed := g.closed
		g.mu.RUnlock()
		if closed {
			http.Error(w, "shutting down", errors.CodeUnavailable.HTTPStatus())
			return
		}

		userID := 0
		if g.identify != nil {
			id, err := g.identify(r)
			if err != nil {
				g.logger.Debug("identify failed", "error", err)
				http.Error(w, errors.GetMessage(err), errors.GetCode(err).HTTPStatus())
				return
			}
			userID = id
		}

		conn, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.logger.Debug("upgrade failed", "error", err)
			return
		}

		s := g.newSession(conn, r, userID)
		if !g.register(s) {
			s.close()
			return
		}
		s.logger.Info("session connected", "user_id", s.userID)

		go s.writePump()
		g.readPump(r.Context(), svc, s)
		g.disconnect(svc, s)
	})
}

// QueryIdentity trusts the ?user= parameter as the client's user id. It
// checks nothing, so use it only behind a proxy that authenticates clients
// and sets the parameter itself.
func QueryIdentity(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("user")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, errors.InvalidArgumentf("bad user id %q", raw)
	}
	return id, nil
}

// Run sends pings every interval and drops sessions that did not answer the
// previous one. Blocks until ctx ends.
func (g *Gateway) Run(ctx context.Context) {
	ticker := g.clock.NewTicker(g.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			g.sweep()
		}
	}
}

// Sessions reports how many clients are connected
func (g *Gateway) Sessions() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

// Close stops accepting connections and closes every session
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	open := make([]*session, 0, len(g.sessions))
	for _, s := range g.sessions {
		open = append(open, s)
	}
	g.mu.Unlock()

	for _, id := range g.subs {
		_ = g.bus.Unsubscribe(id)
	}
	for _, s := range open {
		s.close()
	}
}

func (g *Gateway) newSession(conn *gorilla.Conn, r *http.Request, userID int) *session {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		name = "guest"
	}

	id := g.ids.Generate()
	return &session{
		id:           id,
		userID:       userID,
		name:         name,
		figure:       q.Get("figure"),
		motto:        q.Get("motto"),
		conn:         conn,
		send:         make(chan string, g.sendBuffer),
		writeTimeout: g.writeTimeout,
		logger:       g.logger.With("session_id", id),
		done:         make(chan struct{}),
	}
}

func (g *Gateway) register(s *session) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.sessions[s.id] = s
	return true
}

func (g *Gateway) readPump(ctx context.Context, svc rooms.Service, s *session) {
	s.conn.SetReadLimit(g.readLimit)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseGoingAway, gorilla.CloseNormalClosure) {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}
		g.handle(ctx, svc, s, string(data))
	}
}

func (g *Gateway) handle(ctx context.Context, svc rooms.Service, s *session, payload string) {
	id, body, ok := packet.Split(payload)
	if !ok {
		s.logger.Debug("short packet ignored", "payload", payload)
		return
	}

	switch id {
	case packet.InPong:
		s.markPonged()

	case packet.InEnterRoom:
		roomID, ok := packet.NewReader(body).PopVarInt()
		if !ok || roomID <= 0 {
			s.push(rejection("bad room id"))
			return
		}
		g.enter(ctx, svc, s, roomID)

	default:
		roomID := g.roomOf(s)
		if roomID == 0 {
			s.logger.Debug("packet outside a room ignored", "header", id)
			return
		}
		_, err := svc.HandleInbound(ctx, &rooms.HandleInboundInput{
			RoomID:    roomID,
			SessionID: s.id,
			Payload:   payload,
		})
		if err != nil {
			s.logger.Debug("inbound packet failed", "room_id", roomID, "header", id, "error", err)
		}
	}
}

func (g *Gateway) enter(ctx context.Context, svc rooms.Service, s *session, roomID int) {
	if prev := g.roomOf(s); prev != 0 {
		_, err := svc.LeaveRoom(ctx, &rooms.LeaveRoomInput{RoomID: prev, SessionID: s.id})
		if err != nil && !errors.IsNotFound(err) {
			s.logger.Warn("failed to leave room", "room_id", prev, "error", err)
		}
	}

	_, err := svc.EnterRoom(ctx, &rooms.EnterRoomInput{
		RoomID:    roomID,
		SessionID: s.id,
		UserID:    s.userID,
		Name:      s.name,
		Figure:    s.figure,
		Motto:     s.motto,
	})
	if err != nil {
		s.logger.Info("enter room refused", "room_id", roomID, "error", err)
		s.push(rejection(errors.GetMessage(err)))
	}
}

// disconnect closes s and takes it out of its room
func (g *Gateway) disconnect(svc rooms.Service, s *session) {
	s.close()

	if roomID := g.roomOf(s); roomID != 0 {
		// the request context is already gone
		_, err := svc.LeaveRoom(context.Background(), &rooms.LeaveRoomInput{RoomID: roomID, SessionID: s.id})
		if err != nil && !errors.IsNotFound(err) {
			s.logger.Warn("failed to leave room on disconnect", "room_id", roomID, "error", err)
		}
	}

	g.mu.Lock()
	delete(g.sessions, s.id)
	if members := g.members[s.roomID]; members != nil {
		delete(members, s.id)
		if len(members) == 0 {
			delete(g.members, s.roomID)
		}
	}
	g.mu.Unlock()

	s.logger.Info("session disconnected")
}

func (g *Gateway) sweep() {
	g.mu.RLock()
	open := make([]*session, 0, len(g.sessions))
	for _, s := range g.sessions {
		open = append(open, s)
	}
	g.mu.RUnlock()

	ping := packet.NewWriter(packet.OutPing).Build()
	for _, s := range open {
		if s.startPingRound() {
			s.logger.Info("ping timeout")
			s.close()
			continue
		}
		s.push(ping)
	}
}

func (g *Gateway) roomOf(s *session) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return s.roomID
}

func (g *Gateway) onEntered(_ context.Context, e events.Event) error {
	roomID, ok := room.RoomID(e.Target())
	if !ok || e.Source() == nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sessions[e.Source().GetID()]
	if s == nil {
		return nil
	}
	if s.roomID != 0 && s.roomID != roomID {
		delete(g.members[s.roomID], s.id)
	}
	members := g.members[roomID]
	if members == nil {
		members = make(map[string]*session)
		g.members[roomID] = members
	}
	members[s.id] = s
	s.roomID = roomID
	return nil
}

func (g *Gateway) onLeft(_ context.Context, e events.Event) error {
	roomID, ok := room.RoomID(e.Target())
	if !ok || e.Source() == nil {
		return nil
	}
	id := e.Source().GetID()

	g.mu.Lock()
	defer g.mu.Unlock()

	if members := g.members[roomID]; members != nil {
		delete(members, id)
		if len(members) == 0 {
			delete(g.members, roomID)
		}
	}
	if s := g.sessions[id]; s != nil && s.roomID == roomID {
		s.roomID = 0
	}
	return nil
}

func rejection(reason string) string {
	return packet.NewWriter(packet.OutRejection).Append(reason).Build()
}
