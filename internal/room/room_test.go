package room

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	"github.com/KirkDiggler/room-server/internal/protocol/packet"
	"github.com/KirkDiggler/room-server/internal/protocol/vl64"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
	itemsmock "github.com/KirkDiggler/room-server/internal/repositories/items/mock"
	"github.com/KirkDiggler/room-server/internal/repositories/wallets"
	walletsmock "github.com/KirkDiggler/room-server/internal/repositories/wallets/mock"
	"github.com/KirkDiggler/room-server/internal/room/grid"
	"github.com/KirkDiggler/room-server/internal/testutils"
	transportmock "github.com/KirkDiggler/room-server/internal/transport/mock"
)

// fixedRoller always rolls value, capped at the die size
type fixedRoller struct {
	value int
}

func (f *fixedRoller) Roll(size int) (int, error) {
	return min(max(f.value, 1), size), nil
}

func (f *fixedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i], _ = f.Roll(size)
	}
	return out, nil
}

var statusHeader = vl64.Header(packet.OutStatus)

type RoomTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *itemsmock.MockRepository
	wallets   *walletsmock.MockRepository
	transport *testutils.RecordingTransport
	clock     *clock.Manual
	roller    *fixedRoller
	idle      chan int
	rooms     []*Room
	ctx       context.Context
}

func TestRoomSuite(t *testing.T) {
	suite.Run(t, new(RoomTestSuite))
}

func (s *RoomTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = itemsmock.NewMockRepository(s.ctrl)
	s.wallets = walletsmock.NewMockRepository(s.ctrl)
	s.transport = testutils.NewRecordingTransport()
	s.clock = clock.NewManual(time.Unix(0, 0))
	s.roller = &fixedRoller{value: 6}
	s.idle = make(chan int, 8)
	s.rooms = nil
	s.ctx = context.Background()

	s.store.EXPECT().SaveItemPosition(gomock.Any(), gomock.Any()).Return(&itemsrepo.SaveItemPositionOutput{}, nil).AnyTimes()
	s.store.EXPECT().SaveItemVar(gomock.Any(), gomock.Any()).Return(&itemsrepo.SaveItemVarOutput{}, nil).AnyTimes()
	s.store.EXPECT().DeleteItem(gomock.Any(), gomock.Any()).Return(&itemsrepo.DeleteItemOutput{}, nil).AnyTimes()
}

func (s *RoomTestSuite) TearDownTest() {
	for _, r := range s.rooms {
		r.Stop()
		<-r.Done()
	}
	s.ctrl.Finish()
}

func (s *RoomTestSuite) newRoom(info *entities.Room, heightmap string, items ...*entities.ItemRow) *Room {
	return s.newRoomWith(&Config{Room: info, Heightmap: heightmap, Items: items})
}

func (s *RoomTestSuite) newRoomWith(cfg *Config) *Room {
	cfg.Templates = testutils.TestTemplates()
	cfg.Store = s.store
	cfg.Inventory = s.store
	if cfg.Transport == nil {
		cfg.Transport = s.transport
	}
	cfg.Clock = s.clock
	cfg.Roller = s.roller
	cfg.TickInterval = time.Hour
	cfg.SettleDelay = 500 * time.Millisecond
	cfg.OnIdle = func(id int) { s.idle <- id }

	r, err := New(cfg)
	s.Require().NoError(err)
	r.Start()
	s.rooms = append(s.rooms, r)
	return r
}

func (s *RoomTestSuite) enter(r *Room, session string, userID int) *EnterOutput {
	out, err := r.Enter(s.ctx, &EnterInput{SessionID: session, UserID: userID, Name: session, Figure: "hd-1"})
	s.Require().NoError(err)
	return out
}

func (s *RoomTestSuite) tick(r *Room) {
	s.Require().NoError(r.Do(s.ctx, func() error {
		r.tick()
		return nil
	}))
}

func (s *RoomTestSuite) walk(r *Room, session string, x, y int) {
	payload := vl64.Header(packet.InWalk) + vl64.EncodeB64(x, 2) + vl64.EncodeB64(y, 2)
	s.Require().NoError(r.HandleInbound(s.ctx, session, payload))
}

func (s *RoomTestSuite) occupant(r *Room, unitID int) OccupantView {
	snap, err := r.Snapshot(s.ctx)
	s.Require().NoError(err)
	for _, o := range snap.Occupants {
		if o.UnitID == unitID {
			return o
		}
	}
	s.FailNow("occupant not found", "unit %d", unitID)
	return OccupantView{}
}

func (s *RoomTestSuite) statusBroadcasts(r *Room) []string {
	return s.transport.BroadcastsWithPrefix(r.ID(), statusHeader)
}

func (s *RoomTestSuite) TestConfigValidation() {
	_, err := New(&Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = New(&Config{
		Room:      testutils.CreateTestRoom(1),
		Heightmap: "0a0\r",
		Templates: testutils.TestTemplates(),
		Store:     s.store,
		Transport: s.transport,
	})
	s.True(errors.IsInvalidArgument(err), "bad heightmap")
}

func (s *RoomTestSuite) TestWalkAcrossOpenRoom() {
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3)
	unit := s.enter(r, "s1", 1).UnitID
	s.Equal(grid.Point{}, s.pos(r, unit))

	s.walk(r, "s1", 2, 2)
	s.transport.Reset()

	ticks := 0
	for ; ticks < 4 && s.pos(r, unit) != (grid.Point{X: 2, Y: 2}); ticks++ {
		before := s.pos(r, unit)
		sent := len(s.statusBroadcasts(r))

		s.tick(r)

		if s.pos(r, unit) != before {
			s.Len(s.statusBroadcasts(r), sent+1, "one status packet per moving tick")
		}
	}
	s.Equal(grid.Point{X: 2, Y: 2}, s.pos(r, unit))
	s.LessOrEqual(ticks, 4)

	first := s.statusBroadcasts(r)[0]
	s.Equal(statusHeader+"1 0,0,0.0,3,3/mv 1,1,0.0/\r", first)

	// one more tick finishes the walk, after that the unit is idle
	s.tick(r)
	last := s.statusBroadcasts(r)
	s.Equal(statusHeader+"1 2,2,0.0,3,3/\r", last[len(last)-1])

	count := len(last)
	s.tick(r)
	s.tick(r)
	s.Len(s.statusBroadcasts(r), count, "no packets once the goal is cleared")
}

func (s *RoomTestSuite) pos(r *Room, unitID int) grid.Point {
	o := s.occupant(r, unitID)
	return grid.Point{X: o.X, Y: o.Y}
}

func (s *RoomTestSuite) TestWalkOntoSeat() {
	chair := &entities.ItemRow{ID: 50, RoomID: 1, TemplateID: testutils.TemplateChair, X: 1, Y: 1, Z: 4}
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3, chair)
	unit := s.enter(r, "s1", 1).UnitID

	s.walk(r, "s1", 1, 1)
	s.transport.Reset()
	s.tick(r)
	s.tick(r)

	o := s.occupant(r, unit)
	s.Equal(1, o.X)
	s.Equal(1, o.Y)
	s.Equal(0.0, o.H, "seated units stay at floor height")
	s.Equal("/sit 1.0/", o.Status)

	statuses := s.statusBroadcasts(r)
	s.Require().Len(statuses, 2)
	s.Equal(statusHeader+"1 0,0,0.0,4,4/sit 1.0/mv 1,1,0.0/\r", statuses[0], "facing follows the seat, not the approach")
	s.Equal(statusHeader+"1 1,1,0.0,4,4/sit 1.0/\r", statuses[1])
}

func (s *RoomTestSuite) TestOccupiedSeatIsNotAGoal() {
	chair := &entities.ItemRow{ID: 50, RoomID: 1, TemplateID: testutils.TemplateChair, X: 2, Y: 0, Z: 2}
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3, chair)
	first := s.enter(r, "s1", 1).UnitID

	s.walk(r, "s1", 2, 0)
	for i := 0; i < 3; i++ {
		s.tick(r)
	}
	s.Require().Equal(grid.Point{X: 2, Y: 0}, s.pos(r, first))

	second := s.enter(r, "s2", 2).UnitID
	s.walk(r, "s2", 2, 0)
	for i := 0; i < 4; i++ {
		s.tick(r)
	}
	s.NotEqual(grid.Point{X: 2, Y: 0}, s.pos(r, second))
	s.Equal(grid.Point{X: 2, Y: 0}, s.pos(r, first))
}

func (s *RoomTestSuite) TestOneOccupantPerCell() {
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap5x5)
	for i := 1; i <= 6; i++ {
		s.enter(r, "s"+string(rune('0'+i)), i)
	}

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 40; round++ {
		if round%5 == 0 {
			for i := 1; i <= 6; i++ {
				s.walk(r, "s"+string(rune('0'+i)), rng.Intn(5), rng.Intn(5))
			}
		}
		s.tick(r)

		s.Require().NoError(r.Do(s.ctx, func() error {
			seen := make(map[grid.Point]bool)
			for _, o := range r.registry.All() {
				p := o.Base().Pos
				s.False(seen[p], "two occupants on %v", p)
				seen[p] = true
				s.True(r.grid.At(p).Occupied)
			}

			occupied := 0
			for y := 0; y < r.grid.Height(); y++ {
				for x := 0; x < r.grid.Width(); x++ {
					if r.grid.Cell(x, y).Occupied {
						occupied++
					}
				}
			}
			s.Equal(len(seen), occupied)
			return nil
		}))
	}
}

func (s *RoomTestSuite) TestEnterSendsSnapshot() {
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3)
	s.enter(r, "alice", 1)

	sent := s.transport.Sent("alice")
	s.Require().Len(sent, 6)
	s.Equal(vl64.Header(packet.OutRoomReady)+"model_test 1", sent[0])
	s.Equal(vl64.Header(packet.OutHeightmap)+testutils.Heightmap3x3, sent[1])
	s.True(strings.HasPrefix(sent[2], vl64.Header(packet.OutFloorItems)))
	s.True(strings.HasPrefix(sent[3], vl64.Header(packet.OutWallItems)))
	s.Contains(sent[4], "n:alice\r")
	s.True(strings.HasPrefix(sent[5], statusHeader))

	s.transport.Reset()
	out := s.enter(r, "bob", 2)
	s.Equal(2, out.UnitID)
	s.Equal(2, out.UserCount)

	users := s.transport.BroadcastsWithPrefix(1, vl64.Header(packet.OutUsers))
	s.Require().Len(users, 1)
	s.Contains(users[0], "n:bob\r")
	s.NotContains(users[0], "n:alice")

	_, err := r.Enter(s.ctx, &EnterInput{SessionID: "bob"})
	s.True(errors.IsRejected(err))
}

func (s *RoomTestSuite) TestOwnerGetsRights() {
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3)
	unit := s.enter(r, "owner", 100).UnitID
	s.Equal("/flatctrl/", s.occupant(r, unit).Status)
}

func (s *RoomTestSuite) TestLastLeaveStopsRoom() {
	r := s.newRoom(testutils.CreateTestRoom(4), testutils.Heightmap3x3)
	s.enter(r, "s1", 1)
	s.enter(r, "s2", 2)

	out, err := r.Leave(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(1, out.UserCount)

	_, err = r.Leave(s.ctx, "s1")
	s.True(errors.IsNotFound(err))

	_, err = r.Leave(s.ctx, "s2")
	s.Require().NoError(err)

	select {
	case id := <-s.idle:
		s.Equal(4, id)
	case <-time.After(time.Second):
		s.FailNow("room did not stop")
	}
	<-r.Done()

	err = r.Do(s.ctx, func() error { return nil })
	s.True(errors.Is(err, ErrRoomClosed))

	r.Stop()
	s.Len(s.idle, 0, "the idle callback runs once")
}

func (s *RoomTestSuite) TestStopIfEmpty() {
	busy := s.newRoom(testutils.CreateTestRoom(5), testutils.Heightmap3x3)
	s.enter(busy, "s1", 1)
	s.Require().NoError(busy.StopIfEmpty(s.ctx))
	snap, err := busy.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, snap.UserCount)

	empty := s.newRoom(testutils.CreateTestRoom(6), testutils.Heightmap3x3)
	s.Require().NoError(empty.StopIfEmpty(s.ctx))
	select {
	case id := <-s.idle:
		s.Equal(6, id)
	case <-time.After(time.Second):
		s.FailNow("empty room kept running")
	}
	s.True(errors.Is(empty.StopIfEmpty(s.ctx), ErrRoomClosed))
}

func (s *RoomTestSuite) TestStopBeforeStart() {
	r, err := New(&Config{
		Room:      testutils.CreateTestRoom(1),
		Heightmap: testutils.Heightmap3x3,
		Templates: testutils.TestTemplates(),
		Store:     s.store,
		Transport: s.transport,
	})
	s.Require().NoError(err)

	r.Stop()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		s.FailNow("stop did not finish")
	}
}

func (s *RoomTestSuite) TestDoorTriggerForwards() {
	info := testutils.CreateTestRoom(1)
	info.Triggers = []entities.Trigger{{X: 2, Y: 2, Object: entities.TriggerDoor, RoomID: 9}}
	r := s.newRoom(info, testutils.Heightmap3x3)
	s.enter(r, "s1", 1)

	s.walk(r, "s1", 2, 2)
	for i := 0; i < 3; i++ {
		s.tick(r)
	}
	<-r.Done()

	sent := s.transport.Sent("s1")
	s.Equal(forwardPacket(9), sent[len(sent)-1])
	s.Contains(s.transport.Broadcasts(1), logoutPacket(1))
}

func (s *RoomTestSuite) TestStepTriggerSettlesAfterDelay() {
	info := testutils.CreateTestRoom(1)
	info.Triggers = []entities.Trigger{{X: 1, Y: 0, Object: entities.TriggerStep, StepX: 1}}
	r := s.newRoom(info, testutils.Heightmap3x3)
	unit := s.enter(r, "s1", 1).UnitID

	s.walk(r, "s1", 1, 0)
	s.tick(r)
	s.tick(r)

	s.Equal(grid.Point{X: 2, Y: 0}, s.pos(r, unit))
	s.Equal(1, s.clock.Pending())
	s.Contains(s.occupant(r, unit).Status, "mv 2,0,0.0")

	s.transport.Reset()
	s.tick(r)
	s.Empty(s.statusBroadcasts(r), "a forced step is not advanced by the tick")

	s.clock.Advance(500 * time.Millisecond)
	s.Equal("/", s.occupant(r, unit).Status)
	s.Equal([]string{statusHeader + "1 2,0,0.0,2,2/\r"}, s.statusBroadcasts(r))
}

func (s *RoomTestSuite) TestPoolNeedsTicket() {
	info := testutils.CreateTestRoom(1)
	info.Triggers = []entities.Trigger{{X: 1, Y: 0, Object: entities.TriggerPool, StepX: 1, Flag: true}}
	r := s.newRoomWith(&Config{Room: info, Heightmap: testutils.Heightmap3x3, Wallets: s.wallets})
	unit := s.enter(r, "s1", 7).UnitID

	s.wallets.EXPECT().SpendTicket(gomock.Any(), wallets.SpendTicketInput{UserID: 7}).
		Return(nil, errors.FailedPrecondition("no tickets"))

	s.walk(r, "s1", 1, 0)
	s.tick(r)
	s.tick(r)

	rejection := rejectionPacket(errors.Rejectedf("no pool tickets left"))
	s.Eventually(func() bool {
		for _, p := range s.transport.Sent("s1") {
			if p == rejection {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	s.Equal(grid.Point{X: 1, Y: 0}, s.pos(r, unit))
}

func (s *RoomTestSuite) TestPoolEntry() {
	info := testutils.CreateTestRoom(1)
	info.Triggers = []entities.Trigger{{X: 1, Y: 0, Object: entities.TriggerPool, StepX: 1, Flag: true}}
	r := s.newRoomWith(&Config{Room: info, Heightmap: testutils.Heightmap3x3, Wallets: s.wallets})
	unit := s.enter(r, "s1", 7).UnitID

	s.wallets.EXPECT().SpendTicket(gomock.Any(), wallets.SpendTicketInput{UserID: 7}).
		Return(&wallets.SpendTicketOutput{Remaining: 2}, nil)

	s.walk(r, "s1", 1, 0)
	s.tick(r)
	s.tick(r)

	s.Eventually(func() bool {
		return s.pos(r, unit) == grid.Point{X: 2, Y: 0}
	}, time.Second, 5*time.Millisecond)
	s.Contains(s.occupant(r, unit).Status, "swim")
}

func (s *RoomTestSuite) TestSpecialCast() {
	info := testutils.CreateTestRoom(1)
	info.SpecialCast = &entities.SpecialCast{Emitter: "lamp", Effects: 3}
	s.roller.value = 2
	r := s.newRoomWith(&Config{Room: info, Heightmap: testutils.Heightmap3x3, SpecialCastInterval: 10 * time.Second})

	want := r.castPacket("lamp", 2)
	s.Equal(vl64.Header(packet.OutSpecialCast)+"lamp setfx 2", want)

	s.Eventually(func() bool {
		s.clock.Advance(10 * time.Second)
		return len(s.transport.BroadcastsWithPrefix(1, want)) > 0
	}, time.Second, 5*time.Millisecond)
}

func (s *RoomTestSuite) TestBotsPatrol() {
	info := testutils.CreateTestRoom(1)
	info.Bots = []entities.Bot{{ID: 3, Name: "guard", X: 2, Y: 2, Patrol: []entities.Coord{{X: 2, Y: 0}}}}
	s.roller.value = 1
	r := s.newRoom(info, testutils.Heightmap3x3)
	s.enter(r, "s1", 1)

	for i := 0; i < 4; i++ {
		s.tick(r)
	}

	snap, err := r.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(snap.Occupants, 2)
	s.Equal("room_user", snap.Occupants[0].Type)
	bot := snap.Occupants[1]
	s.Equal("guard", bot.Name)
	s.Equal(2, bot.X)
	s.Equal(0, bot.Y)
}

func (s *RoomTestSuite) TestItemRequestsNeedRights() {
	table := &entities.ItemRow{ID: 5, RoomID: 1, TemplateID: testutils.TemplateTable, OwnerID: 100, X: 1, Y: 1}
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3, table)
	s.enter(r, "guest", 1)
	s.enter(r, "owner", 100)

	pickup := vl64.Header(packet.InPickupItem) + "5"
	s.Require().NoError(r.HandleInbound(s.ctx, "guest", pickup))

	sent := s.transport.Sent("guest")
	s.True(strings.HasPrefix(sent[len(sent)-1], vl64.Header(packet.OutRejection)))

	s.store.EXPECT().TransferItemToOwner(gomock.Any(), itemsrepo.TransferItemToOwnerInput{ItemID: 5, OwnerID: 100}).
		Return(&itemsrepo.TransferItemToOwnerOutput{}, nil)
	s.Require().NoError(r.HandleInbound(s.ctx, "owner", pickup))

	snap, err := r.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, snap.FloorItems)

	err = r.HandleInbound(s.ctx, "stranger", pickup)
	s.True(errors.IsNotFound(err))
}

func (s *RoomTestSuite) TestPlaceFromInventory() {
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3)
	s.enter(r, "owner", 100)

	s.store.EXPECT().GetInventoryItem(gomock.Any(), itemsrepo.GetInventoryItemInput{OwnerID: 100, ItemID: 8}).
		Return(&itemsrepo.GetInventoryItemOutput{
			Item: &entities.ItemRow{ID: 8, TemplateID: testutils.TemplateChair, OwnerID: 100},
		}, nil)
	s.Require().NoError(r.HandleInbound(s.ctx, "owner", vl64.Header(packet.InPlaceItem)+"8 2 1 4"))

	s.store.EXPECT().GetInventoryItem(gomock.Any(), itemsrepo.GetInventoryItemInput{OwnerID: 100, ItemID: 9}).
		Return(&itemsrepo.GetInventoryItemOutput{
			Item: &entities.ItemRow{ID: 9, TemplateID: testutils.TemplateShelf, OwnerID: 100},
		}, nil)
	s.Require().NoError(r.HandleInbound(s.ctx, "owner", vl64.Header(packet.InPlaceItem)+"9 :w=1,2 l=3,4 r"))

	s.Require().NoError(r.Do(s.ctx, func() error {
		chair, ok := r.floor.Get(8)
		s.Require().True(ok)
		s.Equal(2, chair.X)
		s.Equal(1, chair.Y)
		s.Equal(4, chair.Rotation)
		s.Equal(grid.StateSeat, r.grid.Cell(2, 1).State)

		shelf, ok := r.wall.Get(9)
		s.Require().True(ok)
		s.Equal(":w=1,2 l=3,4 r", shelf.WallPosition)
		return nil
	}))
}

func (s *RoomTestSuite) TestKick() {
	r := s.newRoom(testutils.CreateTestRoom(1), testutils.Heightmap3x3)
	s.enter(r, "s1", 1)
	unit := s.enter(r, "s2", 2).UnitID

	out, err := r.Kick(s.ctx, unit, "bye")
	s.Require().NoError(err)
	s.Equal(1, out.UserCount)

	sent := s.transport.Sent("s2")
	s.Equal(vl64.Header(packet.OutRejection)+"bye", sent[len(sent)-1])

	_, err = r.Kick(s.ctx, unit, "")
	s.True(errors.IsNotFound(err))
}

func (s *RoomTestSuite) TestTransportFailuresDoNotStopTheRoom() {
	failing := transportmock.NewMockTransport(s.ctrl)
	failing.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.Unavailable("gone")).AnyTimes()
	failing.EXPECT().Broadcast(1, gomock.Any()).Return(errors.Unavailable("gone")).AnyTimes()

	r := s.newRoomWith(&Config{Room: testutils.CreateTestRoom(1), Heightmap: testutils.Heightmap3x3, Transport: failing})
	unit := s.enter(r, "s1", 1).UnitID

	s.walk(r, "s1", 1, 0)
	s.tick(r)
	s.tick(r)
	s.Equal(grid.Point{X: 1}, s.pos(r, unit))
}
