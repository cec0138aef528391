// Package entities provides the persisted data structures of the room server.
package entities

// Room is the static description of one room as stored.
type Room struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	OwnerID     int          `json:"owner_id"`
	Model       string       `json:"model"` // heightmap model name
	Door        Door         `json:"door"`
	Triggers    []Trigger    `json:"triggers,omitempty"`
	Bots        []Bot        `json:"bots,omitempty"`
	SpecialCast *SpecialCast `json:"special_cast,omitempty"`
}

// Door is where entering users spawn
type Door struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	H        float64 `json:"h"`
	Rotation int     `json:"rotation"`
}

// Trigger object names
const (
	TriggerDoor     = "door"
	TriggerTeleport = "teleport"
	TriggerStep     = "step"
	TriggerPool     = "pool"
)

// Trigger is a static behavior attached to one cell. It fires when an
// occupant's walk ends on that cell.
type Trigger struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Object  string `json:"object"`
	HasGoal bool   `json:"has_goal,omitempty"`
	GoalX   int    `json:"goal_x,omitempty"`
	GoalY   int    `json:"goal_y,omitempty"`
	StepX   int    `json:"step_x,omitempty"`
	StepY   int    `json:"step_y,omitempty"`
	RoomID  int    `json:"room_id,omitempty"` // door: room to forward to
	Flag    bool   `json:"flag,omitempty"`    // pool: true enters the water, false leaves it
}

// Bot is a server-driven occupant loaded with the room
type Bot struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Figure   string  `json:"figure,omitempty"`
	Motto    string  `json:"motto,omitempty"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Rotation int     `json:"rotation"`
	Patrol   []Coord `json:"patrol,omitempty"`
}

// Coord is a cell position
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SpecialCast describes the ambient effect a room plays on an interval.
// Effects is the number of effect variants the emitter supports.
type SpecialCast struct {
	Emitter string `json:"emitter"`
	Effects int    `json:"effects"`
}
