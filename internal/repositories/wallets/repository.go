// Package wallets stores the small per-user balances the room engine spends,
// currently pool tickets
package wallets

import "context"

//go:generate mockgen -destination=mock/mock_repository.go -package=walletsmock github.com/KirkDiggler/room-server/internal/repositories/wallets Repository

// SpendTicketInput identifies whose ticket to spend
type SpendTicketInput struct {
	UserID int
}

// SpendTicketOutput contains the balance left after spending
type SpendTicketOutput struct {
	Remaining int
}

// AddTicketsInput credits tickets to a user
type AddTicketsInput struct {
	UserID int
	Count  int
}

// AddTicketsOutput contains the new balance
type AddTicketsOutput struct {
	Balance int
}

// GetBalanceInput identifies the wallet to read
type GetBalanceInput struct {
	UserID int
}

// GetBalanceOutput contains the current balance
type GetBalanceOutput struct {
	Tickets int
}

// Repository defines the interface for wallet storage operations
type Repository interface {
	// SpendTicket takes one ticket atomically. It returns a
	// FailedPrecondition error when the user has none.
	SpendTicket(ctx context.Context, input SpendTicketInput) (*SpendTicketOutput, error)

	AddTickets(ctx context.Context, input AddTicketsInput) (*AddTicketsOutput, error)

	GetBalance(ctx context.Context, input GetBalanceInput) (*GetBalanceOutput, error)
}
