package wallets

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/KirkDiggler/room-server/internal/errors"
)

// Schema creates the wallets table used by the Postgres repository
const Schema = `
CREATE TABLE IF NOT EXISTS wallets (
	user_id INTEGER PRIMARY KEY,
	tickets INTEGER NOT NULL DEFAULT 0 CHECK (tickets >= 0)
);
`

type postgresRepository struct {
	db *sql.DB
}

// PostgresConfig contains configuration for the Postgres wallet repository.
type PostgresConfig struct {
	DB         *sql.DB
	InitSchema bool
}

// Validate validates the PostgresConfig.
func (cfg *PostgresConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DB == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	return nil
}

// NewPostgres creates a new Postgres-backed wallet repository
func NewPostgres(ctx context.Context, cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.InitSchema {
		if _, err := cfg.DB.ExecContext(ctx, Schema); err != nil {
			return nil, errors.Wrap(err, "failed to initialize wallets schema")
		}
	}

	return &postgresRepository{db: cfg.DB}, nil
}

func (r *postgresRepository) SpendTicket(ctx context.Context, input SpendTicketInput) (*SpendTicketOutput, error) {
	var left int
	err := r.db.QueryRowContext(ctx,
		`UPDATE wallets SET tickets = tickets - 1 WHERE user_id = $1 AND tickets > 0 RETURNING tickets`,
		input.UserID).Scan(&left)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.FailedPrecondition(fmt.Sprintf("user %d has no tickets", input.UserID))
		}
		return nil, errors.Wrapf(err, "failed to spend ticket of user %d", input.UserID)
	}
	return &SpendTicketOutput{Remaining: left}, nil
}

func (r *postgresRepository) AddTickets(ctx context.Context, input AddTicketsInput) (*AddTicketsOutput, error) {
	if input.Count <= 0 {
		return nil, errors.InvalidArgument("count must be positive")
	}

	var balance int
	err := r.db.QueryRowContext(ctx, `
	INSERT INTO wallets (user_id, tickets) VALUES ($1, $2)
	ON CONFLICT (user_id) DO UPDATE SET tickets = wallets.tickets + $2
	RETURNING tickets
	`, input.UserID, input.Count).Scan(&balance)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to add tickets for user %d", input.UserID)
	}
	return &AddTicketsOutput{Balance: balance}, nil
}

func (r *postgresRepository) GetBalance(ctx context.Context, input GetBalanceInput) (*GetBalanceOutput, error) {
	var tickets int
	err := r.db.QueryRowContext(ctx, `SELECT tickets FROM wallets WHERE user_id = $1`, input.UserID).Scan(&tickets)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return &GetBalanceOutput{}, nil
		}
		return nil, errors.Wrapf(err, "failed to get balance of user %d", input.UserID)
	}
	return &GetBalanceOutput{Tickets: tickets}, nil
}
