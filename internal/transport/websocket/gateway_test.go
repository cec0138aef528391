package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/orchestrators/rooms"
	roomsmock "github.com/KirkDiggler/room-server/internal/orchestrators/rooms/mock"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	"github.com/KirkDiggler/room-server/internal/pkg/idgen"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/protocol/vl64"
	"github.com/KirkDiggler/room-server/internal/room"
)

const firstSession = "session_1"

type GatewayTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	svc     *roomsmock.MockService
	bus     events.EventBus
	gateway *Gateway
	server  *httptest.Server
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

func (s *GatewayTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.svc = roomsmock.NewMockService(s.ctrl)
	s.bus = events.NewBus()
	s.serve(QueryIdentity)
}

func (s *GatewayTestSuite) TearDownTest() {
	s.stop()
	s.ctrl.Finish()
}

// serve replaces the gateway under test with one using identify
func (s *GatewayTestSuite) serve(identify func(*http.Request) (int, error)) {
	s.stop()
	g, err := NewGateway(&Config{
		EventBus:    s.bus,
		Clock:       clock.NewManual(time.Unix(0, 0)),
		IDGenerator: idgen.NewSequential("session"),
		Identify:    identify,
	})
	s.Require().NoError(err)
	s.gateway = g
	s.server = httptest.NewServer(g.Handler(s.svc))
}

func (s *GatewayTestSuite) stop() {
	if s.gateway != nil {
		s.gateway.Close()
		s.server.Close()
		s.gateway, s.server = nil, nil
	}
}

func (s *GatewayTestSuite) dial(query string) *gorilla.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/?" + query
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	_ = resp.Body.Close()
	s.Require().Eventually(func() bool { return s.gateway.Sessions() > 0 }, time.Second, 5*time.Millisecond)
	return conn
}

func (s *GatewayTestSuite) write(conn *gorilla.Conn, payload string) {
	s.Require().NoError(conn.WriteMessage(gorilla.TextMessage, []byte(payload)))
}

func (s *GatewayTestSuite) read(conn *gorilla.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	return string(data)
}

// enter walks the first session into roomID the way a room would: the
// entered event is published before EnterRoom returns.
func (s *GatewayTestSuite) enter(conn *gorilla.Conn, roomID int) {
	entered := make(chan struct{})
	s.svc.EXPECT().EnterRoom(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, in *rooms.EnterRoomInput) (*rooms.EnterRoomOutput, error) {
			defer close(entered)
			s.NoError(s.bus.Publish(ctx, room.NewOccupantEvent(room.EventOccupantEntered, in.SessionID, in.RoomID)))
			return &rooms.EnterRoomOutput{UnitID: 1, UserCount: 1}, nil
		})

	s.write(conn, vl64.Header(packet.InEnterRoom)+vl64.Encode(roomID))
	select {
	case <-entered:
	case <-time.After(time.Second):
		s.FailNow("enter was not routed")
	}
}

func (s *GatewayTestSuite) expectLeave(roomID int) chan struct{} {
	left := make(chan struct{})
	s.svc.EXPECT().LeaveRoom(gomock.Any(), &rooms.LeaveRoomInput{RoomID: roomID, SessionID: firstSession}).
		DoAndReturn(func(context.Context, *rooms.LeaveRoomInput) (*rooms.LeaveRoomOutput, error) {
			close(left)
			return &rooms.LeaveRoomOutput{}, nil
		})
	return left
}

func (s *GatewayTestSuite) TestConfigValidation() {
	_, err := NewGateway(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = NewGateway(&Config{})
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid config")
}

func (s *GatewayTestSuite) TestEnterCarriesIdentity() {
	entered := make(chan *rooms.EnterRoomInput, 1)
	s.svc.EXPECT().EnterRoom(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *rooms.EnterRoomInput) (*rooms.EnterRoomOutput, error) {
			entered <- in
			return &rooms.EnterRoomOutput{UnitID: 1}, nil
		})

	conn := s.dial("user=7&name=bob&figure=hd-1&motto=hi")
	defer conn.Close()
	s.write(conn, vl64.Header(packet.InEnterRoom)+vl64.Encode(5))

	select {
	case in := <-entered:
		s.Equal(&rooms.EnterRoomInput{
			RoomID:    5,
			SessionID: firstSession,
			UserID:    7,
			Name:      "bob",
			Figure:    "hd-1",
			Motto:     "hi",
		}, in)
	case <-time.After(time.Second):
		s.FailNow("enter was not routed")
	}
}

func (s *GatewayTestSuite) TestClientsAreGuestsWithoutIdentify() {
	s.serve(nil)

	entered := make(chan *rooms.EnterRoomInput, 1)
	s.svc.EXPECT().EnterRoom(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *rooms.EnterRoomInput) (*rooms.EnterRoomOutput, error) {
			entered <- in
			return &rooms.EnterRoomOutput{UnitID: 1}, nil
		})

	// claiming to be the owner in the query buys nothing
	conn := s.dial("user=100&name=bob")
	defer conn.Close()
	s.write(conn, vl64.Header(packet.InEnterRoom)+vl64.Encode(5))

	select {
	case in := <-entered:
		s.Equal(0, in.UserID)
		s.False(in.HasRights)
	case <-time.After(time.Second):
		s.FailNow("enter was not routed")
	}
}

func (s *GatewayTestSuite) TestBadIdentityRefused() {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/?user=abc"
	_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Zero(s.gateway.Sessions())
}

func (s *GatewayTestSuite) TestQueryIdentity() {
	testCases := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "absent", query: "", want: 0},
		{name: "numeric", query: "user=7", want: 7},
		{name: "not a number", query: "user=abc", wantErr: true},
		{name: "negative", query: "user=-3", wantErr: true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			id, err := QueryIdentity(req)
			if tc.wantErr {
				s.True(errors.IsInvalidArgument(err))
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.want, id)
		})
	}
}

func (s *GatewayTestSuite) TestBroadcastFollowsMembership() {
	conn := s.dial("name=bob")
	defer conn.Close()
	s.enter(conn, 5)

	s.Require().NoError(s.gateway.Broadcast(5, "hello"))
	s.Equal("hello", s.read(conn))

	s.Require().NoError(s.bus.Publish(context.Background(), room.NewOccupantEvent(room.EventOccupantLeft, firstSession, 5)))
	s.Require().NoError(s.gateway.Broadcast(5, "nobody hears this"))
	s.Require().NoError(s.gateway.Send(firstSession, "direct"))
	s.Equal("direct", s.read(conn))
}

func (s *GatewayTestSuite) TestInboundGoesToCurrentRoom() {
	conn := s.dial("name=bob")
	s.enter(conn, 5)

	walk := vl64.Header(packet.InWalk) + vl64.EncodeB64(1, 2) + vl64.EncodeB64(2, 2)
	routed := make(chan struct{})
	s.svc.EXPECT().HandleInbound(gomock.Any(), &rooms.HandleInboundInput{RoomID: 5, SessionID: firstSession, Payload: walk}).
		DoAndReturn(func(context.Context, *rooms.HandleInboundInput) (*rooms.HandleInboundOutput, error) {
			close(routed)
			return &rooms.HandleInboundOutput{}, nil
		})
	s.write(conn, walk)
	<-routed

	left := s.expectLeave(5)
	s.Require().NoError(conn.Close())
	select {
	case <-left:
	case <-time.After(time.Second):
		s.FailNow("disconnect did not leave the room")
	}
	s.Eventually(func() bool { return s.gateway.Sessions() == 0 }, time.Second, 5*time.Millisecond)
}

func (s *GatewayTestSuite) TestEnteringAnotherRoomLeavesTheFirst() {
	conn := s.dial("name=bob")
	s.enter(conn, 5)

	s.expectLeave(5)
	s.enter(conn, 6)

	s.Require().NoError(s.gateway.Broadcast(5, "room five"))
	s.Require().NoError(s.gateway.Broadcast(6, "room six"))
	s.Equal("room six", s.read(conn))

	left := s.expectLeave(6)
	s.Require().NoError(conn.Close())
	select {
	case <-left:
	case <-time.After(time.Second):
		s.FailNow("disconnect did not leave the room")
	}
}

func (s *GatewayTestSuite) TestPacketsOutsideRoomIgnored() {
	conn := s.dial("name=bob")
	defer conn.Close()

	// no HandleInbound expectation: the walk must be dropped
	s.write(conn, vl64.Header(packet.InWalk)+"AAAA")
	s.write(conn, "@")
	s.write(conn, vl64.Header(packet.InEnterRoom))

	s.Equal(vl64.Header(packet.OutRejection)+"bad room id", s.read(conn))
}

func (s *GatewayTestSuite) TestRefusedEntryIsRejected() {
	s.svc.EXPECT().EnterRoom(gomock.Any(), gomock.Any()).Return(nil, errors.NotFound("room 9 not found"))

	conn := s.dial("name=bob")
	defer conn.Close()
	s.write(conn, vl64.Header(packet.InEnterRoom)+vl64.Encode(9))

	s.Equal(vl64.Header(packet.OutRejection)+"room 9 not found", s.read(conn))
}

func (s *GatewayTestSuite) TestSendUnknownSession() {
	err := s.gateway.Send("nobody", "x")
	s.True(errors.IsNotFound(err))
}

func (s *GatewayTestSuite) TestPingSweep() {
	conn := s.dial("name=bob")
	defer conn.Close()
	ping := vl64.Header(packet.OutPing)

	s.gateway.sweep()
	s.Equal(ping, s.read(conn))

	s.write(conn, vl64.Header(packet.InPong))
	s.Eventually(func() bool {
		s.gateway.mu.RLock()
		sess := s.gateway.sessions[firstSession]
		s.gateway.mu.RUnlock()
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.ponged
	}, time.Second, 5*time.Millisecond)

	s.gateway.sweep()
	s.Equal(ping, s.read(conn), "answered pings keep the session")

	s.gateway.sweep()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	s.Error(err, "an unanswered ping drops the session")
	s.Eventually(func() bool { return s.gateway.Sessions() == 0 }, time.Second, 5*time.Millisecond)
}

func (s *GatewayTestSuite) TestRunStopsWithContext() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.gateway.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("Run did not return")
	}
}

func (s *GatewayTestSuite) TestCloseDropsSessions() {
	conn := s.dial("name=bob")
	defer conn.Close()

	s.gateway.Close()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	s.Error(err)

	_, resp, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.server.URL, "http"), nil)
	s.Error(err)
	if resp != nil {
		s.Equal(503, resp.StatusCode)
		_ = resp.Body.Close()
	}
}
