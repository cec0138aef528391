package items_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/repositories/items"
	itemsmock "github.com/KirkDiggler/room-server/internal/repositories/items/mock"
)

type WriteBehindTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	repo *itemsmock.MockRepository
	ctx  context.Context
}

func TestWriteBehindSuite(t *testing.T) {
	suite.Run(t, new(WriteBehindTestSuite))
}

func (s *WriteBehindTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = itemsmock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()
}

func (s *WriteBehindTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WriteBehindTestSuite) TestValidation() {
	_, err := items.NewWriteBehind(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = items.NewWriteBehind(&items.WriteBehindConfig{})
	s.True(errors.IsInvalidArgument(err))

	_, err = items.NewWriteBehind(&items.WriteBehindConfig{Repository: s.repo, QueueSize: -1})
	s.True(errors.IsInvalidArgument(err))
}

func (s *WriteBehindTestSuite) TestWritesApplyInOrder() {
	var mu sync.Mutex
	var order []string
	record := func(op string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, op)
	}

	gomock.InOrder(
		s.repo.EXPECT().SaveItemPosition(gomock.Any(), items.SaveItemPositionInput{ItemID: 1, RoomID: 2, X: 3}).
			DoAndReturn(func(context.Context, items.SaveItemPositionInput) (*items.SaveItemPositionOutput, error) {
				record("position")
				return &items.SaveItemPositionOutput{}, nil
			}),
		s.repo.EXPECT().SaveItemVar(gomock.Any(), items.SaveItemVarInput{ItemID: 1, Var: "O"}).
			DoAndReturn(func(context.Context, items.SaveItemVarInput) (*items.SaveItemVarOutput, error) {
				record("var")
				return nil, errors.Internal("disk on fire")
			}),
		s.repo.EXPECT().TransferItemToOwner(gomock.Any(), items.TransferItemToOwnerInput{ItemID: 1, OwnerID: 4}).
			DoAndReturn(func(context.Context, items.TransferItemToOwnerInput) (*items.TransferItemToOwnerOutput, error) {
				record("transfer")
				return &items.TransferItemToOwnerOutput{}, nil
			}),
		s.repo.EXPECT().DeleteItem(gomock.Any(), items.DeleteItemInput{ItemID: 1}).
			DoAndReturn(func(context.Context, items.DeleteItemInput) (*items.DeleteItemOutput, error) {
				record("delete")
				return &items.DeleteItemOutput{}, nil
			}),
	)

	w, err := items.NewWriteBehind(&items.WriteBehindConfig{Repository: s.repo, WriteTimeout: time.Second})
	s.Require().NoError(err)

	_, err = w.SaveItemPosition(s.ctx, items.SaveItemPositionInput{ItemID: 1, RoomID: 2, X: 3})
	s.Require().NoError(err)
	_, err = w.SaveItemVar(s.ctx, items.SaveItemVarInput{ItemID: 1, Var: "O"})
	s.Require().NoError(err, "failures are not reported to the caller")
	_, err = w.TransferItemToOwner(s.ctx, items.TransferItemToOwnerInput{ItemID: 1, OwnerID: 4})
	s.Require().NoError(err)
	_, err = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 1})
	s.Require().NoError(err)

	s.Require().NoError(w.Close(s.ctx))
	s.Equal([]string{"position", "var", "transfer", "delete"}, order)

	// writes after close are dropped
	_, err = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 2})
	s.NoError(err)
	s.NoError(w.Close(s.ctx), "close is idempotent")
}

func (s *WriteBehindTestSuite) TestReadsPassThrough() {
	s.repo.EXPECT().LoadRoomItems(gomock.Any(), items.LoadRoomItemsInput{RoomID: 3}).
		Return(&items.LoadRoomItemsOutput{Items: []*entities.ItemRow{{ID: 1}}}, nil)

	w, err := items.NewWriteBehind(&items.WriteBehindConfig{Repository: s.repo})
	s.Require().NoError(err)
	defer func() { _ = w.Close(s.ctx) }()

	out, err := w.LoadRoomItems(s.ctx, items.LoadRoomItemsInput{RoomID: 3})
	s.Require().NoError(err)
	s.Len(out.Items, 1)
}

func (s *WriteBehindTestSuite) TestInventoryReadWaitsForQueuedWrite() {
	release := make(chan struct{})
	s.repo.EXPECT().SaveItemPosition(gomock.Any(), items.SaveItemPositionInput{ItemID: 7, RoomID: 2}).
		DoAndReturn(func(context.Context, items.SaveItemPositionInput) (*items.SaveItemPositionOutput, error) {
			<-release
			return &items.SaveItemPositionOutput{}, nil
		})
	s.repo.EXPECT().GetInventoryItem(gomock.Any(), items.GetInventoryItemInput{OwnerID: 4, ItemID: 8}).
		Return(&items.GetInventoryItemOutput{Item: &entities.ItemRow{ID: 8}}, nil)
	s.repo.EXPECT().GetInventoryItem(gomock.Any(), items.GetInventoryItemInput{OwnerID: 4, ItemID: 7}).
		Return(nil, errors.NotFoundf("item 7 is not in inventory"))

	w, err := items.NewWriteBehind(&items.WriteBehindConfig{Repository: s.repo})
	s.Require().NoError(err)

	_, _ = w.SaveItemPosition(s.ctx, items.SaveItemPositionInput{ItemID: 7, RoomID: 2})

	_, err = w.GetInventoryItem(s.ctx, items.GetInventoryItemInput{OwnerID: 4, ItemID: 7})
	s.True(errors.IsUnavailable(err), "item 7 is still being placed")

	out, err := w.GetInventoryItem(s.ctx, items.GetInventoryItemInput{OwnerID: 4, ItemID: 8})
	s.Require().NoError(err)
	s.Equal(8, out.Item.ID)

	close(release)
	s.Require().NoError(w.Close(s.ctx))

	_, err = w.GetInventoryItem(s.ctx, items.GetInventoryItemInput{OwnerID: 4, ItemID: 7})
	s.True(errors.IsNotFound(err), "once applied the read reaches the store")
}

func (s *WriteBehindTestSuite) TestDroppedWriteDoesNotBlockReads() {
	release := make(chan struct{})
	s.repo.EXPECT().DeleteItem(gomock.Any(), items.DeleteItemInput{ItemID: 1}).
		DoAndReturn(func(context.Context, items.DeleteItemInput) (*items.DeleteItemOutput, error) {
			<-release
			return &items.DeleteItemOutput{}, nil
		})
	s.repo.EXPECT().DeleteItem(gomock.Any(), items.DeleteItemInput{ItemID: 2}).
		Return(&items.DeleteItemOutput{}, nil)
	s.repo.EXPECT().GetInventoryItem(gomock.Any(), items.GetInventoryItemInput{OwnerID: 1, ItemID: 3}).
		Return(&items.GetInventoryItemOutput{Item: &entities.ItemRow{ID: 3}}, nil)

	w, err := items.NewWriteBehind(&items.WriteBehindConfig{Repository: s.repo, QueueSize: 1})
	s.Require().NoError(err)

	_, _ = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 1})
	s.Eventually(func() bool { return w.Pending() == 0 }, time.Second, time.Millisecond)
	_, _ = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 2})
	_, _ = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 3})

	_, err = w.GetInventoryItem(s.ctx, items.GetInventoryItemInput{OwnerID: 1, ItemID: 3})
	s.NoError(err)

	close(release)
	s.Require().NoError(w.Close(s.ctx))
}

func (s *WriteBehindTestSuite) TestFullQueueDrops() {
	release := make(chan struct{})
	s.repo.EXPECT().DeleteItem(gomock.Any(), items.DeleteItemInput{ItemID: 1}).
		DoAndReturn(func(context.Context, items.DeleteItemInput) (*items.DeleteItemOutput, error) {
			<-release
			return &items.DeleteItemOutput{}, nil
		})
	s.repo.EXPECT().DeleteItem(gomock.Any(), items.DeleteItemInput{ItemID: 2}).
		Return(&items.DeleteItemOutput{}, nil)

	w, err := items.NewWriteBehind(&items.WriteBehindConfig{Repository: s.repo, QueueSize: 1})
	s.Require().NoError(err)

	_, _ = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 1})
	// the worker holds item 1; item 2 fills the queue
	s.Eventually(func() bool { return w.Pending() == 0 }, time.Second, time.Millisecond)
	_, _ = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 2})
	_, _ = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 3})
	s.Equal(1, w.Pending())

	close(release)
	s.Require().NoError(w.Close(s.ctx))
}

func (s *WriteBehindTestSuite) TestCloseHonoursContext() {
	release := make(chan struct{})
	s.repo.EXPECT().DeleteItem(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, items.DeleteItemInput) (*items.DeleteItemOutput, error) {
			<-release
			return &items.DeleteItemOutput{}, nil
		})

	w, err := items.NewWriteBehind(&items.WriteBehindConfig{Repository: s.repo})
	s.Require().NoError(err)
	_, _ = w.DeleteItem(s.ctx, items.DeleteItemInput{ItemID: 1})

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Millisecond)
	defer cancel()
	s.Error(w.Close(ctx))

	close(release)
	s.NoError(w.Close(s.ctx))
}
