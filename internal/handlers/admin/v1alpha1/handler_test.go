package v1alpha1_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/handlers/admin/v1alpha1"
	"github.com/KirkDiggler/room-server/internal/orchestrators/rooms"
	roomsmock "github.com/KirkDiggler/room-server/internal/orchestrators/rooms/mock"
	"github.com/KirkDiggler/room-server/internal/room"
	"github.com/KirkDiggler/room-server/internal/room/occupants"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRoom *roomsmock.MockService
	server   *grpc.Server
	conn     *grpc.ClientConn
	client   v1alpha1.AdminServiceClient
	ctx      context.Context
}

func TestAdminHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRoom = roomsmock.NewMockService(s.ctrl)
	s.ctx = context.Background()

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{RoomService: s.mockRoom})
	s.Require().NoError(err)

	lis := bufconn.Listen(1 << 20)
	s.server = grpc.NewServer()
	v1alpha1.RegisterAdminServiceServer(s.server, handler)
	go func() { _ = s.server.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.conn = conn
	s.client = v1alpha1.NewAdminServiceClient(conn)
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	_ = s.conn.Close()
	s.server.Stop()
	s.ctrl.Finish()
}

func (s *AdminHandlerTestSuite) TestNewHandlerRequiresService() {
	_, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{})
	s.True(errors.IsInvalidArgument(err))

	_, err = v1alpha1.NewHandler(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *AdminHandlerTestSuite) TestListRooms() {
	s.mockRoom.EXPECT().ListRooms(gomock.Any(), &rooms.ListRoomsInput{}).
		Return(&rooms.ListRoomsOutput{
			GlobalPeak: 4,
			Rooms: []*rooms.RoomSummary{
				{Room: &entities.Room{ID: 1, Name: "Lobby", OwnerID: 9, Model: "model_a"}, Loaded: true, Users: 2, Peak: 4},
				{Room: &entities.Room{ID: 2, Name: "Pool", Model: "pool_b"}},
			},
		}, nil)

	resp, err := s.client.ListRooms(s.ctx, &emptypb.Empty{})
	s.Require().NoError(err)

	got := resp.AsMap()
	s.Equal(float64(4), got["global_peak"])
	list := got["rooms"].([]interface{})
	s.Require().Len(list, 2)

	lobby := list[0].(map[string]interface{})
	s.Equal("Lobby", lobby["name"])
	s.Equal(float64(9), lobby["owner_id"])
	s.Equal(true, lobby["loaded"])
	s.Equal(float64(2), lobby["users"])
	s.Equal(float64(4), lobby["peak"])

	pool := list[1].(map[string]interface{})
	s.Equal(false, pool["loaded"])
}

func (s *AdminHandlerTestSuite) TestGetRoom() {
	s.mockRoom.EXPECT().GetRoom(gomock.Any(), &rooms.GetRoomInput{RoomID: 3}).
		Return(&rooms.GetRoomOutput{
			Peak: 5,
			Snapshot: &room.Snapshot{
				RoomID:     3,
				Name:       "Cafe",
				Model:      "model_c",
				Rows:       []string{"00", "0x"},
				UserCount:  1,
				FloorItems: 2,
				Occupants: []room.OccupantView{
					{UnitID: 1, Type: occupants.EntityTypeUser, Name: "bob", SessionID: "s1", X: 1, Y: 0, H: 0.5, Status: "/sit 1.0/"},
				},
			},
		}, nil)

	resp, err := s.client.GetRoom(s.ctx, wrapperspb.Int32(3))
	s.Require().NoError(err)

	got := resp.AsMap()
	s.Equal("Cafe", got["name"])
	s.Equal([]interface{}{"00", "0x"}, got["rows"])
	s.Equal(float64(5), got["peak"])
	s.Equal(float64(2), got["floor_items"])

	people := got["occupants"].([]interface{})
	s.Require().Len(people, 1)
	bob := people[0].(map[string]interface{})
	s.Equal("bob", bob["name"])
	s.Equal(0.5, bob["h"])
	s.Equal("/sit 1.0/", bob["status"])
}

func (s *AdminHandlerTestSuite) TestGetRoomNotLoaded() {
	s.mockRoom.EXPECT().GetRoom(gomock.Any(), &rooms.GetRoomInput{RoomID: 8}).
		Return(nil, errors.NotFound("room 8 is not loaded"))

	_, err := s.client.GetRoom(s.ctx, wrapperspb.Int32(8))
	s.Equal(codes.NotFound, status.Code(err))
	s.Equal("room 8 is not loaded", status.Convert(err).Message())
}

func (s *AdminHandlerTestSuite) TestGetRoomRejectsBadID() {
	_, err := s.client.GetRoom(s.ctx, wrapperspb.Int32(0))
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *AdminHandlerTestSuite) TestKickOccupant() {
	s.mockRoom.EXPECT().KickOccupant(gomock.Any(), &rooms.KickOccupantInput{RoomID: 3, UnitID: 2, Reason: "spam"}).
		Return(&rooms.KickOccupantOutput{UserCount: 1}, nil)

	req, err := structpb.NewStruct(map[string]interface{}{"room_id": 3, "unit_id": 2, "reason": "spam"})
	s.Require().NoError(err)

	resp, err := s.client.KickOccupant(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(float64(1), resp.AsMap()["users"])
}

func (s *AdminHandlerTestSuite) TestKickOccupantValidation() {
	req, err := structpb.NewStruct(map[string]interface{}{"room_id": 3})
	s.Require().NoError(err)

	_, err = s.client.KickOccupant(s.ctx, req)
	s.Equal(codes.InvalidArgument, status.Code(err))
	s.Contains(status.Convert(err).Message(), "unit_id")
}
