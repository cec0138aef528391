package rooms_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/orchestrators/rooms"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/protocol/vl64"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
	itemsmock "github.com/KirkDiggler/room-server/internal/repositories/items/mock"
	roomsrepo "github.com/KirkDiggler/room-server/internal/repositories/rooms"
	roomsrepomock "github.com/KirkDiggler/room-server/internal/repositories/rooms/mock"
	"github.com/KirkDiggler/room-server/internal/room"
	"github.com/KirkDiggler/room-server/internal/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	roomRepo  *roomsrepomock.MockRepository
	itemRepo  *itemsmock.MockRepository
	transport *testutils.RecordingTransport
	bus       events.EventBus
	manager   rooms.Service
	ctx       context.Context

	loaded   atomic.Int32
	unloaded atomic.Int32
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.roomRepo = roomsrepomock.NewMockRepository(s.ctrl)
	s.itemRepo = itemsmock.NewMockRepository(s.ctrl)
	s.transport = testutils.NewRecordingTransport()
	s.bus = events.NewBus()
	s.ctx = context.Background()
	s.loaded.Store(0)
	s.unloaded.Store(0)

	s.bus.SubscribeFunc(room.EventRoomLoaded, 0, func(context.Context, events.Event) error {
		s.loaded.Add(1)
		return nil
	})
	s.bus.SubscribeFunc(room.EventRoomUnloaded, 0, func(context.Context, events.Event) error {
		s.unloaded.Add(1)
		return nil
	})

	manager, err := rooms.NewOrchestrator(&rooms.Config{
		RoomRepo:     s.roomRepo,
		ItemRepo:     s.itemRepo,
		Templates:    testutils.TestTemplates(),
		Transport:    s.transport,
		EventBus:     s.bus,
		Clock:        clock.NewManual(time.Unix(0, 0)),
		TickInterval: time.Hour,
	})
	s.Require().NoError(err)
	s.manager = manager
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.Require().NoError(s.manager.Shutdown(s.ctx))
	s.ctrl.Finish()
}

// expectLoad sets up one load of room id
func (s *OrchestratorTestSuite) expectLoad(id int) {
	info := testutils.CreateTestRoom(id)
	s.roomRepo.EXPECT().Get(gomock.Any(), roomsrepo.GetInput{RoomID: id}).
		Return(&roomsrepo.GetOutput{Room: info}, nil)
	s.roomRepo.EXPECT().LoadHeightmap(gomock.Any(), roomsrepo.LoadHeightmapInput{Model: info.Model}).
		Return(&roomsrepo.LoadHeightmapOutput{Heightmap: testutils.Heightmap3x3}, nil)
	s.itemRepo.EXPECT().LoadRoomItems(gomock.Any(), itemsrepo.LoadRoomItemsInput{RoomID: id}).
		Return(&itemsrepo.LoadRoomItemsOutput{Items: []*entities.ItemRow{
			{ID: 1, RoomID: id, TemplateID: testutils.TemplateTable, X: 2, Y: 2},
		}}, nil)
}

func (s *OrchestratorTestSuite) enter(roomID int, session string) *rooms.EnterRoomOutput {
	out, err := s.manager.EnterRoom(s.ctx, &rooms.EnterRoomInput{RoomID: roomID, SessionID: session, UserID: 1, Name: session})
	s.Require().NoError(err)
	return out
}

func (s *OrchestratorTestSuite) summary(roomID int) *rooms.RoomSummary {
	s.roomRepo.EXPECT().List(gomock.Any(), roomsrepo.ListInput{}).
		Return(&roomsrepo.ListOutput{Rooms: []*entities.Room{testutils.CreateTestRoom(roomID)}}, nil)

	out, err := s.manager.ListRooms(s.ctx, &rooms.ListRoomsInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Rooms, 1)
	return out.Rooms[0]
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := rooms.NewOrchestrator(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = rooms.NewOrchestrator(&rooms.Config{})
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid config")
}

func (s *OrchestratorTestSuite) TestEnterLoadsRoomOnce() {
	s.expectLoad(1)

	first := s.enter(1, "s1")
	second := s.enter(1, "s2")

	s.Equal(1, first.UnitID)
	s.Equal(2, second.UnitID)
	s.Equal(2, second.UserCount)
	s.Equal(int32(1), s.loaded.Load())

	sum := s.summary(1)
	s.True(sum.Loaded)
	s.Equal(2, sum.Users)
	s.Equal(2, sum.Peak)

	// the entering user got the room snapshot, table included
	sent := s.transport.Sent("s1")
	s.Require().NotEmpty(sent)
	s.Contains(sent[2], "table")
}

func (s *OrchestratorTestSuite) TestConcurrentEntriesShareOneLoad() {
	s.expectLoad(2)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.manager.EnterRoom(s.ctx, &rooms.EnterRoomInput{RoomID: 2, SessionID: fmt.Sprintf("s%d", n)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	s.Equal(5, s.summary(2).Users)
}

func (s *OrchestratorTestSuite) TestLastLeaveUnloads() {
	s.expectLoad(1)
	s.enter(1, "s1")

	out, err := s.manager.LeaveRoom(s.ctx, &rooms.LeaveRoomInput{RoomID: 1, SessionID: "s1"})
	s.Require().NoError(err)
	s.Zero(out.UserCount)

	s.Eventually(func() bool { return s.unloaded.Load() == 1 }, time.Second, 5*time.Millisecond)

	sum := s.summary(1)
	s.False(sum.Loaded)
	s.Zero(sum.Users)
	s.Equal(1, sum.Peak, "peaks survive unloading")

	_, err = s.manager.HandleInbound(s.ctx, &rooms.HandleInboundInput{RoomID: 1, SessionID: "s1", Payload: "@@"})
	s.True(errors.IsNotFound(err))

	// the next entry loads it again
	s.expectLoad(1)
	s.enter(1, "s2")
	s.Equal(int32(2), s.loaded.Load())
}

func (s *OrchestratorTestSuite) TestUnknownRoom() {
	s.roomRepo.EXPECT().Get(gomock.Any(), roomsrepo.GetInput{RoomID: 404}).
		Return(nil, errors.NotFound("room 404 not found"))

	_, err := s.manager.EnterRoom(s.ctx, &rooms.EnterRoomInput{RoomID: 404, SessionID: "s1"})
	s.True(errors.IsNotFound(err))

	_, err = s.manager.GetRoom(s.ctx, &rooms.GetRoomInput{RoomID: 404})
	s.True(errors.IsNotFound(err))
	s.Zero(s.loaded.Load())
}

func (s *OrchestratorTestSuite) TestEnterValidation() {
	_, err := s.manager.EnterRoom(s.ctx, &rooms.EnterRoomInput{SessionID: "s1"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.manager.EnterRoom(s.ctx, &rooms.EnterRoomInput{RoomID: 1})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.manager.EnterRoom(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestGetRoomAndKick() {
	s.expectLoad(3)
	s.enter(3, "s1")
	kicked := s.enter(3, "s2").UnitID

	got, err := s.manager.GetRoom(s.ctx, &rooms.GetRoomInput{RoomID: 3})
	s.Require().NoError(err)
	s.Equal(3, got.Snapshot.RoomID)
	s.Len(got.Snapshot.Occupants, 2)
	s.Equal(1, got.Snapshot.FloorItems)
	s.Equal(2, got.Peak)

	out, err := s.manager.KickOccupant(s.ctx, &rooms.KickOccupantInput{RoomID: 3, UnitID: kicked, Reason: "bye"})
	s.Require().NoError(err)
	s.Equal(1, out.UserCount)
	s.Equal(1, s.summary(3).Users, "kicks are counted through room events")
}

func (s *OrchestratorTestSuite) TestInboundRoutesToRoom() {
	s.expectLoad(1)
	s.enter(1, "s1")

	_, err := s.manager.HandleInbound(s.ctx, &rooms.HandleInboundInput{RoomID: 1, SessionID: "s1", Payload: vl64.Header(packet.InRequestObjects)})
	s.Require().NoError(err)

	// asking for the objects again gets a fresh snapshot
	s.Len(s.transport.Sent("s1"), 12)
}

func (s *OrchestratorTestSuite) TestShutdownStopsRooms() {
	s.expectLoad(1)
	s.enter(1, "s1")

	s.Require().NoError(s.manager.Shutdown(s.ctx))
	s.Eventually(func() bool { return s.unloaded.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := s.manager.EnterRoom(s.ctx, &rooms.EnterRoomInput{RoomID: 1, SessionID: "s2"})
	s.True(errors.IsUnavailable(err))
}

func (s *OrchestratorTestSuite) TestGlobalPeak() {
	s.expectLoad(1)
	s.expectLoad(2)
	s.enter(1, "a")
	s.enter(2, "b")
	s.enter(2, "c")

	_, err := s.manager.LeaveRoom(s.ctx, &rooms.LeaveRoomInput{RoomID: 2, SessionID: "b"})
	s.Require().NoError(err)

	s.roomRepo.EXPECT().List(gomock.Any(), roomsrepo.ListInput{}).
		Return(&roomsrepo.ListOutput{Rooms: []*entities.Room{testutils.CreateTestRoom(1), testutils.CreateTestRoom(2)}}, nil)
	out, err := s.manager.ListRooms(s.ctx, &rooms.ListRoomsInput{})
	s.Require().NoError(err)
	s.Equal(3, out.GlobalPeak)
	s.Equal(1, out.Rooms[1].Users)
	s.Equal(2, out.Rooms[1].Peak)
}
