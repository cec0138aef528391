// Package room runs one active room: a single goroutine owns the room's
// grid, furniture and occupants, advances every walking occupant on a fixed
// tick and serializes every request that touches room state.
package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
	"github.com/KirkDiggler/room-server/internal/repositories/wallets"
	"github.com/KirkDiggler/room-server/internal/room/furniture"
	"github.com/KirkDiggler/room-server/internal/room/grid"
	"github.com/KirkDiggler/room-server/internal/room/occupants"
	"github.com/KirkDiggler/room-server/internal/transport"
)

// ErrRoomClosed is returned for work submitted to a room that has stopped
var ErrRoomClosed = errors.Unavailable("room is closed")

const inboxSize = 64

// Room is one active room. All exported methods are safe for concurrent use;
// they hand their work to the room's goroutine and wait for it.
type Room struct {
	id   int
	info *entities.Room

	grid     *grid.Grid
	floor    *furniture.FloorPlacer
	wall     *furniture.WallPlacer
	registry *occupants.Registry

	inventory itemsrepo.Loader
	wallets   wallets.Repository
	transport transport.Transport
	bus       events.EventBus
	clock     clock.Clock
	roller    dice.Roller
	logger    *slog.Logger
	onIdle    func(int)

	tickInterval time.Duration
	castInterval time.Duration
	settleDelay  time.Duration
	wanderChance int

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan func()
	done   chan struct{}
	wg     sync.WaitGroup
	start  sync.Once

	// owned by the room goroutine
	stopping bool
	timers   map[clock.Timer]struct{}
	forced   map[*occupants.Unit]bool
}

// New builds a room from its stored state. Items and bots that no longer
// fit the heightmap are logged and skipped. The room does nothing until
// Start is called.
func New(cfg *Config) (*Room, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := *cfg
	c.withDefaults()

	g, err := grid.Parse(c.Heightmap)
	if err != nil {
		return nil, errors.Wrapf(err, "room %d", c.Room.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		id:           c.Room.ID,
		info:         c.Room,
		grid:         g,
		registry:     occupants.NewRegistry(g),
		inventory:    c.Inventory,
		wallets:      c.Wallets,
		transport:    c.Transport,
		bus:          c.EventBus,
		clock:        c.Clock,
		roller:       c.Roller,
		logger:       c.Logger.With("room_id", c.Room.ID),
		onIdle:       c.OnIdle,
		tickInterval: c.TickInterval,
		castInterval: c.SpecialCastInterval,
		settleDelay:  c.SettleDelay,
		wanderChance: c.BotWanderChance,
		ctx:          ctx,
		cancel:       cancel,
		inbox:        make(chan func(), inboxSize),
		done:         make(chan struct{}),
		timers:       make(map[clock.Timer]struct{}),
		forced:       make(map[*occupants.Unit]bool),
	}

	r.floor, err = furniture.NewFloorPlacer(&furniture.FloorConfig{
		RoomID:         r.id,
		Grid:           g,
		Templates:      c.Templates,
		Store:          c.Store,
		Broadcast:      r.broadcast,
		Refresh:        r.refresh,
		MaxStackHeight: c.MaxStackHeight,
		Logger:         r.logger,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	r.wall, err = furniture.NewWallPlacer(&furniture.WallConfig{
		RoomID:    r.id,
		Templates: c.Templates,
		Store:     c.Store,
		Broadcast: r.broadcast,
		Logger:    r.logger,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	r.load(c.Items)
	return r, nil
}

func (r *Room) load(rows []*entities.ItemRow) {
	for i := range r.info.Triggers {
		t := &r.info.Triggers[i]
		if err := r.grid.SetTrigger(t); err != nil {
			r.logger.Warn("skipping trigger", "error", err)
		}
	}

	for _, row := range rows {
		var err error
		if row.IsWall() {
			err = r.wall.Restore(row.WallItem())
		} else {
			err = r.floor.Restore(row.FloorItem())
		}
		if err != nil {
			r.logger.Warn("skipping stored item", "item_id", row.ID, "error", err)
		}
	}

	for _, b := range r.info.Bots {
		bot := &occupants.Bot{
			Unit: occupants.Unit{
				Name:   b.Name,
				Figure: b.Figure,
				Motto:  b.Motto,
			},
			BotID: b.ID,
		}
		for _, p := range b.Patrol {
			if r.grid.InBounds(p.X, p.Y) {
				bot.Patrol = append(bot.Patrol, grid.Point{X: p.X, Y: p.Y})
			}
		}

		at, ok := r.grid.NearestFree(grid.Point{X: b.X, Y: b.Y})
		if !ok {
			r.logger.Warn("no room for bot", "bot_id", b.ID)
			continue
		}
		if err := r.registry.AddBot(bot, at); err != nil {
			r.logger.Warn("skipping bot", "bot_id", b.ID, "error", err)
			continue
		}
		if !r.grid.At(at).Sittable() {
			bot.Face(b.Rotation)
		}
	}
}

// ID returns the room id
func (r *Room) ID() int {
	return r.id
}

// Info returns the room's static description
func (r *Room) Info() *entities.Room {
	return r.info
}

// Start launches the room goroutine. Calling it again has no effect.
func (r *Room) Start() {
	r.start.Do(func() {
		if cast := r.info.SpecialCast; cast != nil && cast.Effects > 0 {
			r.wg.Add(1)
			go r.castLoop(cast)
		}
		go r.run()
	})
}

// Stop asks the room to shut down. Pending work is dropped and callers
// waiting on it get ErrRoomClosed.
func (r *Room) Stop() {
	r.cancel()
	r.start.Do(func() { go r.run() })
}

// StopIfEmpty stops the room when no user is inside. The check runs on the
// room goroutine, so an entry queued before it keeps the room alive.
func (r *Room) StopIfEmpty(ctx context.Context) error {
	return r.Do(ctx, func() error {
		r.idleCheck()
		return nil
	})
}

// Done is closed once the room goroutine has exited
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Do runs fn on the room goroutine and returns its error
func (r *Room) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() { result <- fn() }

	select {
	case r.inbox <- task:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-r.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrRoomClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn for the room goroutine without waiting for it. It reports
// false if the room has stopped.
func (r *Room) Post(fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	case <-r.done:
		return false
	}
}

// postBack is Post for goroutines the room waits on during shutdown
func (r *Room) postBack(fn func()) {
	select {
	case r.inbox <- fn:
	case <-r.ctx.Done():
	}
}

func (r *Room) run() {
	ticker := r.clock.NewTicker(r.tickInterval)
	r.logger.Info("room started")

	for !r.stopping {
		select {
		case <-r.ctx.Done():
			r.stopping = true
		case fn := <-r.inbox:
			fn()
		case <-ticker.C():
			r.tick()
		}
	}

	ticker.Stop()
	r.shutdown()
}

func (r *Room) shutdown() {
	r.cancel()
	for t := range r.timers {
		t.Stop()
	}
	r.timers = nil
	r.wg.Wait()
	close(r.done)

	r.logger.Info("room stopped")
	if r.onIdle != nil {
		r.onIdle(r.id)
	}
}

// idleCheck stops the room once the last user is gone. Bots do not keep a
// room alive.
func (r *Room) idleCheck() {
	if r.registry.UserCount() == 0 {
		r.stopping = true
	}
}

func (r *Room) broadcast(payload string) {
	if err := r.transport.Broadcast(r.id, payload); err != nil {
		r.logger.Warn("broadcast failed", "error", err)
	}
}

func (r *Room) send(sessionID, payload string) {
	if err := r.transport.Send(sessionID, payload); err != nil {
		r.logger.Warn("send failed", "session_id", sessionID, "error", err)
	}
}

func (r *Room) publish(e events.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(r.ctx, e); err != nil {
		r.logger.Warn("event publish failed", "event", e.Type(), "error", err)
	}
}

// refresh re-seats whoever stands on p after the items under them changed
func (r *Room) refresh(p grid.Point) {
	o, ok := r.registry.At(p)
	if !ok {
		return
	}
	r.registry.Settle(o.Base())
	r.broadcast(statusPacket(o))
}
