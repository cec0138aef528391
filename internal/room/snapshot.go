package room

import (
	"context"

	"github.com/KirkDiggler/room-server/internal/room/occupants"
)

// OccupantView is a read-only copy of one occupant
type OccupantView struct {
	UnitID    int
	Type      string
	Name      string
	SessionID string
	X         int
	Y         int
	H         float64
	Status    string
}

// Snapshot is a read-only copy of a room's live state
type Snapshot struct {
	RoomID     int
	Name       string
	Model      string
	Rows       []string
	Occupants  []OccupantView
	UserCount  int
	FloorItems int
	WallItems  int
}

// Snapshot copies the room's current state
func (r *Room) Snapshot(ctx context.Context) (*Snapshot, error) {
	var out *Snapshot
	err := r.Do(ctx, func() error {
		out = &Snapshot{
			RoomID:     r.id,
			Name:       r.info.Name,
			Model:      r.info.Model,
			Rows:       r.grid.Rows(),
			UserCount:  r.registry.UserCount(),
			FloorItems: r.floor.Count(),
			WallItems:  len(r.wall.Items()),
		}
		for _, o := range r.registry.All() {
			u := o.Base()
			view := OccupantView{
				UnitID: u.ID,
				Type:   o.GetType(),
				Name:   u.Name,
				X:      u.Pos.X,
				Y:      u.Pos.Y,
				H:      u.H,
				Status: u.Statuses.String(),
			}
			if user, ok := o.(*occupants.User); ok {
				view.SessionID = user.SessionID
			}
			out.Occupants = append(out.Occupants, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
