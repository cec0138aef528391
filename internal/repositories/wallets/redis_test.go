package wallets_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/repositories/wallets"
	"github.com/KirkDiggler/room-server/internal/testutils"
)

type RedisWalletsTestSuite struct {
	suite.Suite
	cleanup func()
	repo    wallets.Repository
	ctx     context.Context
}

func TestRedisWalletsSuite(t *testing.T) {
	suite.Run(t, new(RedisWalletsTestSuite))
}

func (s *RedisWalletsTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()

	repo, err := wallets.NewRedis(&wallets.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisWalletsTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisWalletsTestSuite) TestSpendWithoutTickets() {
	_, err := s.repo.SpendTicket(s.ctx, wallets.SpendTicketInput{UserID: 1})
	s.True(errors.IsFailedPrecondition(err))

	out, err := s.repo.GetBalance(s.ctx, wallets.GetBalanceInput{UserID: 1})
	s.Require().NoError(err)
	s.Zero(out.Tickets, "a failed spend never goes negative")
}

func (s *RedisWalletsTestSuite) TestAddAndSpend() {
	added, err := s.repo.AddTickets(s.ctx, wallets.AddTicketsInput{UserID: 2, Count: 2})
	s.Require().NoError(err)
	s.Equal(2, added.Balance)

	spent, err := s.repo.SpendTicket(s.ctx, wallets.SpendTicketInput{UserID: 2})
	s.Require().NoError(err)
	s.Equal(1, spent.Remaining)

	spent, err = s.repo.SpendTicket(s.ctx, wallets.SpendTicketInput{UserID: 2})
	s.Require().NoError(err)
	s.Equal(0, spent.Remaining)

	_, err = s.repo.SpendTicket(s.ctx, wallets.SpendTicketInput{UserID: 2})
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.repo.AddTickets(s.ctx, wallets.AddTicketsInput{UserID: 2})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisWalletsTestSuite) TestConcurrentSpendsNeverOverdraw() {
	_, err := s.repo.AddTickets(s.ctx, wallets.AddTicketsInput{UserID: 3, Count: 5})
	s.Require().NoError(err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.repo.SpendTicket(s.ctx, wallets.SpendTicketInput{UserID: 3}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(5, succeeded)
	out, err := s.repo.GetBalance(s.ctx, wallets.GetBalanceInput{UserID: 3})
	s.Require().NoError(err)
	s.Zero(out.Tickets)
}
