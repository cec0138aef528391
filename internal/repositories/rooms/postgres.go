package rooms

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
)

// Schema creates the tables used by the Postgres repository. Triggers, bots
// and the cast emitter are kept as one JSONB document per room.
const Schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	owner_id   INTEGER NOT NULL,
	model      TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS room_models (
	name      TEXT PRIMARY KEY,
	heightmap TEXT NOT NULL
);
`

type postgresRepository struct {
	db *sql.DB
}

// PostgresConfig contains configuration for the Postgres room repository.
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

// NewPostgres creates a new Postgres-backed room repository
func NewPostgres(ctx context.Context, cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.InitSchema {
		if _, err := cfg.DB.ExecContext(ctx, Schema); err != nil {
			return nil, errors.Wrap(err, "failed to initialize rooms schema")
		}
	}

	return &postgresRepository{db: cfg.DB}, nil
}

func (r *postgresRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.RoomID <= 0 {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM rooms WHERE id = $1`, input.RoomID).Scan(&data)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("room %d not found", input.RoomID)
		}
		return nil, errors.Wrapf(err, "failed to get room %d", input.RoomID)
	}

	var room entities.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal room %d", input.RoomID)
	}
	return &GetOutput{Room: &room}, nil
}

func (r *postgresRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Room == nil {
		return nil, errors.InvalidArgument(errRoomNil)
	}
	if input.Room.ID <= 0 {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	data, err := json.Marshal(input.Room)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal room %d", input.Room.ID)
	}

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO rooms (id, name, owner_id, model, data)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id)
	DO UPDATE SET
		name = $2, owner_id = $3, model = $4, data = $5,
		updated_at = NOW()
	`, input.Room.ID, input.Room.Name, input.Room.OwnerID, input.Room.Model, string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save room %d", input.Room.ID)
	}
	return &SaveOutput{}, nil
}

func (r *postgresRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM rooms ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}
	defer func() { _ = rows.Close() }()

	var out []*entities.Room
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "failed to scan room")
		}
		var room entities.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal room")
		}
		out = append(out, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}

	return &ListOutput{Rooms: out}, nil
}

func (r *postgresRepository) LoadHeightmap(ctx context.Context, input LoadHeightmapInput) (*LoadHeightmapOutput, error) {
	if input.Model == "" {
		return nil, errors.InvalidArgument(errModelEmpty)
	}

	var heightmap string
	err := r.db.QueryRowContext(ctx, `SELECT heightmap FROM room_models WHERE name = $1`, input.Model).Scan(&heightmap)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("heightmap model %s not found", input.Model)
		}
		return nil, errors.Wrapf(err, "failed to get heightmap model %s", input.Model)
	}
	return &LoadHeightmapOutput{Heightmap: heightmap}, nil
}

func (r *postgresRepository) SaveHeightmap(ctx context.Context, input SaveHeightmapInput) (*SaveHeightmapOutput, error) {
	if input.Model == "" {
		return nil, errors.InvalidArgument(errModelEmpty)
	}

	_, err := r.db.ExecContext(ctx, `
	INSERT INTO room_models (name, heightmap) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET heightmap = $2
	`, input.Model, input.Heightmap)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save heightmap model %s", input.Model)
	}
	return &SaveHeightmapOutput{}, nil
}
