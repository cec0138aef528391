package items

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
)

// Schema creates the items table used by the Postgres repository
const Schema = `
CREATE TABLE IF NOT EXISTS items (
	id            SERIAL PRIMARY KEY,
	room_id       INTEGER NOT NULL DEFAULT 0,
	template_id   INTEGER NOT NULL,
	owner_id      INTEGER NOT NULL,
	x             INTEGER NOT NULL DEFAULT 0,
	y             INTEGER NOT NULL DEFAULT 0,
	z             INTEGER NOT NULL DEFAULT 0,
	h             DOUBLE PRECISION NOT NULL DEFAULT 0,
	wall_position TEXT NOT NULL DEFAULT '',
	var           TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS items_room_id ON items (room_id);
CREATE INDEX IF NOT EXISTS items_owner_id ON items (owner_id) WHERE room_id = 0;
`

const itemColumns = `id, room_id, template_id, owner_id, x, y, z, h, wall_position, var`

// pgUniqueViolation is the Postgres error code for duplicate keys
const pgUniqueViolation = "23505"

type postgresRepository struct {
	db *sql.DB
}

// PostgresConfig contains configuration for the Postgres item repository.
type PostgresConfig struct {
	DB *sql.DB
	// InitSchema runs Schema before the repository is returned
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

// NewPostgres creates a new Postgres-backed item repository
func NewPostgres(ctx context.Context, cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.InitSchema {
		if _, err := cfg.DB.ExecContext(ctx, Schema); err != nil {
			return nil, errors.Wrap(err, "failed to initialize items schema")
		}
	}

	return &postgresRepository{db: cfg.DB}, nil
}

func (r *postgresRepository) LoadRoomItems(ctx context.Context, input LoadRoomItemsInput) (*LoadRoomItemsOutput, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE room_id = $1 ORDER BY h, id`, input.RoomID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load items of room %d", input.RoomID)
	}
	defer func() { _ = rows.Close() }()

	var out []*entities.ItemRow
	for rows.Next() {
		row, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan item of room %d", input.RoomID)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to load items of room %d", input.RoomID)
	}

	return &LoadRoomItemsOutput{Items: out}, nil
}

func (r *postgresRepository) GetInventoryItem(ctx context.Context, input GetInventoryItemInput) (*GetInventoryItemOutput, error) {
	if input.ItemID <= 0 {
		return nil, errors.InvalidArgument(errItemIDInvalid)
	}

	row, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1 AND owner_id = $2 AND room_id = 0`,
		input.ItemID, input.OwnerID))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("item %d is not in the inventory of user %d", input.ItemID, input.OwnerID)
		}
		return nil, errors.Wrapf(err, "failed to get item %d", input.ItemID)
	}
	return &GetInventoryItemOutput{Item: row}, nil
}

func (r *postgresRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Item == nil {
		return nil, errors.InvalidArgument("item cannot be nil")
	}
	row := *input.Item

	var err error
	if row.ID == 0 {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO items (room_id, template_id, owner_id, x, y, z, h, wall_position, var)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			row.RoomID, row.TemplateID, row.OwnerID, row.X, row.Y, row.Z, row.H, row.WallPosition, row.Var,
		).Scan(&row.ID)
	} else {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			row.ID, row.RoomID, row.TemplateID, row.OwnerID, row.X, row.Y, row.Z, row.H, row.WallPosition, row.Var)
	}
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, errors.WrapWithCode(err, errors.CodeAlreadyExists, "item already exists")
		}
		return nil, errors.Wrap(err, "failed to create item")
	}

	return &CreateOutput{Item: &row}, nil
}

func (r *postgresRepository) SaveItemPosition(ctx context.Context, input SaveItemPositionInput) (*SaveItemPositionOutput, error) {
	err := r.update(ctx, input.ItemID,
		`UPDATE items SET room_id = $2, x = $3, y = $4, z = $5, h = $6, wall_position = $7 WHERE id = $1`,
		input.ItemID, input.RoomID, input.X, input.Y, input.Z, input.H, input.WallPosition)
	if err != nil {
		return nil, err
	}
	return &SaveItemPositionOutput{}, nil
}

func (r *postgresRepository) SaveItemVar(ctx context.Context, input SaveItemVarInput) (*SaveItemVarOutput, error) {
	err := r.update(ctx, input.ItemID, `UPDATE items SET var = $2 WHERE id = $1`, input.ItemID, input.Var)
	if err != nil {
		return nil, err
	}
	return &SaveItemVarOutput{}, nil
}

func (r *postgresRepository) DeleteItem(ctx context.Context, input DeleteItemInput) (*DeleteItemOutput, error) {
	err := r.update(ctx, input.ItemID, `DELETE FROM items WHERE id = $1`, input.ItemID)
	if err != nil {
		return nil, err
	}
	return &DeleteItemOutput{}, nil
}

func (r *postgresRepository) TransferItemToOwner(ctx context.Context, input TransferItemToOwnerInput) (*TransferItemToOwnerOutput, error) {
	err := r.update(ctx, input.ItemID,
		`UPDATE items SET room_id = 0, owner_id = $2, x = 0, y = 0, z = 0, h = 0, wall_position = '' WHERE id = $1`,
		input.ItemID, input.OwnerID)
	if err != nil {
		return nil, err
	}
	return &TransferItemToOwnerOutput{}, nil
}

// update runs a single-row statement and reports a missing row as NotFound
func (r *postgresRepository) update(ctx context.Context, itemID int, query string, args ...interface{}) error {
	if itemID <= 0 {
		return errors.InvalidArgument(errItemIDInvalid)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "failed to write item %d", itemID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "failed to write item %d", itemID)
	}
	if n == 0 {
		return errors.NotFoundf("item %d not found", itemID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(s scanner) (*entities.ItemRow, error) {
	var row entities.ItemRow
	err := s.Scan(&row.ID, &row.RoomID, &row.TemplateID, &row.OwnerID,
		&row.X, &row.Y, &row.Z, &row.H, &row.WallPosition, &row.Var)
	if err != nil {
		return nil, err
	}
	return &row, nil
}
