// Package rooms owns the set of live rooms: it loads a room on first entry,
// routes client packets to it and forgets it once it goes idle
package rooms

//go:generate mockgen -destination=mock/mock_service.go -package=roomsmock github.com/KirkDiggler/room-server/internal/orchestrators/rooms Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
	roomsrepo "github.com/KirkDiggler/room-server/internal/repositories/rooms"
	"github.com/KirkDiggler/room-server/internal/repositories/wallets"
	"github.com/KirkDiggler/room-server/internal/room"
	"github.com/KirkDiggler/room-server/internal/room/furniture"
	"github.com/KirkDiggler/room-server/internal/transport"
)

// enterAttempts bounds retries when a room stops between lookup and entry
const enterAttempts = 3

// Service defines the interface for room management
type Service interface {
	EnterRoom(ctx context.Context, input *EnterRoomInput) (*EnterRoomOutput, error)
	LeaveRoom(ctx context.Context, input *LeaveRoomInput) (*LeaveRoomOutput, error)
	HandleInbound(ctx context.Context, input *HandleInboundInput) (*HandleInboundOutput, error)

	// Admin surface
	ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error)
	GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error)
	KickOccupant(ctx context.Context, input *KickOccupantInput) (*KickOccupantOutput, error)

	// Shutdown stops every live room and waits for them
	Shutdown(ctx context.Context) error
}

// Config holds the dependencies for the room manager
type Config struct {
	RoomRepo  roomsrepo.Repository
	ItemRepo  itemsrepo.Repository
	Templates furniture.TemplateSource
	Transport transport.Transport
	EventBus  events.EventBus

	// Wallets pays for pool entry; optional
	Wallets wallets.Repository
	Clock   clock.Clock
	Roller  dice.Roller

	// Engine tunables passed to every room; zero values use the room
	// defaults
	TickInterval        time.Duration
	SpecialCastInterval time.Duration
	SettleDelay         time.Duration
	MaxStackHeight      float64
	BotWanderChance     int

	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.RoomRepo == nil {
		vb.RequiredField("RoomRepo")
	}
	if c.ItemRepo == nil {
		vb.RequiredField("ItemRepo")
	}
	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	if c.Transport == nil {
		vb.RequiredField("Transport")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}

	return vb.Build()
}

type orchestrator struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	live       map[int]*room.Room
	loading    map[int]chan struct{}
	users      map[int]int
	peaks      map[int]int
	globalPeak int
	closed     bool
}

// NewOrchestrator creates a new room manager with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	o := &orchestrator{
		cfg:     *cfg,
		logger:  logger.With("component", "room_manager"),
		live:    make(map[int]*room.Room),
		loading: make(map[int]chan struct{}),
		users:   make(map[int]int),
		peaks:   make(map[int]int),
	}

	// rooms publish occupant events from their own goroutine; counting
	// here keeps users who leave through a door or a kick accounted for
	cfg.EventBus.SubscribeFunc(room.EventOccupantEntered, 0, o.onOccupantEvent)
	cfg.EventBus.SubscribeFunc(room.EventOccupantLeft, 0, o.onOccupantEvent)

	return o, nil
}

func (o *orchestrator) EnterRoom(ctx context.Context, input *EnterRoomInput) (*EnterRoomOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidatePositive("RoomID", input.RoomID, vb)
	errors.ValidateRequired("SessionID", input.SessionID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < enterAttempts; attempt++ {
		r, err := o.acquire(ctx, input.RoomID)
		if err != nil {
			return nil, err
		}

		out, err := r.Enter(ctx, &room.EnterInput{
			SessionID: input.SessionID,
			UserID:    input.UserID,
			Name:      input.Name,
			Figure:    input.Figure,
			Motto:     input.Motto,
			HasRights: input.HasRights,
		})
		if errors.Is(err, room.ErrRoomClosed) {
			// stopped after we found it; the next attempt loads a fresh one
			o.forget(input.RoomID, r)
			lastErr = err
			continue
		}
		if err != nil {
			o.stopIfEmpty(r)
			return nil, err
		}

		return &EnterRoomOutput{UnitID: out.UnitID, UserCount: out.UserCount}, nil
	}

	return nil, errors.Wrapf(lastErr, "room %d kept closing", input.RoomID)
}

func (o *orchestrator) LeaveRoom(ctx context.Context, input *LeaveRoomInput) (*LeaveRoomOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	r, err := o.lookup(input.RoomID)
	if err != nil {
		return nil, err
	}

	out, err := r.Leave(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	return &LeaveRoomOutput{UserCount: out.UserCount}, nil
}

func (o *orchestrator) HandleInbound(ctx context.Context, input *HandleInboundInput) (*HandleInboundOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	r, err := o.lookup(input.RoomID)
	if err != nil {
		return nil, err
	}

	if err := r.HandleInbound(ctx, input.SessionID, input.Payload); err != nil {
		return nil, err
	}
	return &HandleInboundOutput{}, nil
}

func (o *orchestrator) ListRooms(ctx context.Context, _ *ListRoomsInput) (*ListRoomsOutput, error) {
	stored, err := o.cfg.RoomRepo.List(ctx, roomsrepo.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	out := &ListRoomsOutput{GlobalPeak: o.globalPeak}
	for _, info := range stored.Rooms {
		_, loaded := o.live[info.ID]
		out.Rooms = append(out.Rooms, &RoomSummary{
			Room:   info,
			Loaded: loaded,
			Users:  o.users[info.ID],
			Peak:   o.peaks[info.ID],
		})
	}
	return out, nil
}

func (o *orchestrator) GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	r, err := o.lookup(input.RoomID)
	if err != nil {
		return nil, err
	}

	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	peak := o.peaks[input.RoomID]
	o.mu.Unlock()

	return &GetRoomOutput{Snapshot: snap, Peak: peak}, nil
}

func (o *orchestrator) KickOccupant(ctx context.Context, input *KickOccupantInput) (*KickOccupantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	r, err := o.lookup(input.RoomID)
	if err != nil {
		return nil, err
	}

	out, err := r.Kick(ctx, input.UnitID, input.Reason)
	if err != nil {
		return nil, err
	}

	o.logger.Info("occupant kicked", "room_id", input.RoomID, "unit_id", input.UnitID)
	return &KickOccupantOutput{UserCount: out.UserCount}, nil
}

func (o *orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	live := make([]*room.Room, 0, len(o.live))
	for _, r := range o.live {
		live = append(live, r)
	}
	o.mu.Unlock()

	for _, r := range live {
		r.Stop()
	}
	for _, r := range live {
		select {
		case <-r.Done():
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "rooms did not stop in time")
		}
	}
	return nil
}

// acquire returns the live room with id, loading it if nobody has yet.
// Concurrent callers for the same room wait for a single load.
func (o *orchestrator) acquire(ctx context.Context, id int) (*room.Room, error) {
	for {
		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return nil, errors.Unavailable("room manager is shutting down")
		}
		if r, ok := o.live[id]; ok {
			o.mu.Unlock()
			return r, nil
		}
		if wait, ok := o.loading[id]; ok {
			o.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "waiting for room load")
			}
		}

		done := make(chan struct{})
		o.loading[id] = done
		o.mu.Unlock()

		r, err := o.load(ctx, id)

		o.mu.Lock()
		delete(o.loading, id)
		if err == nil {
			o.live[id] = r
		}
		o.mu.Unlock()
		close(done)

		if err != nil {
			return nil, err
		}

		r.Start()
		o.publish(ctx, room.NewRoomEvent(room.EventRoomLoaded, id))
		o.logger.Info("room loaded", "room_id", id)
		return r, nil
	}
}

func (o *orchestrator) load(ctx context.Context, id int) (*room.Room, error) {
	info, err := o.cfg.RoomRepo.Get(ctx, roomsrepo.GetInput{RoomID: id})
	if err != nil {
		return nil, err
	}

	model, err := o.cfg.RoomRepo.LoadHeightmap(ctx, roomsrepo.LoadHeightmapInput{Model: info.Room.Model})
	if err != nil {
		return nil, errors.Wrapf(err, "room %d", id)
	}

	stored, err := o.cfg.ItemRepo.LoadRoomItems(ctx, itemsrepo.LoadRoomItemsInput{RoomID: id})
	if err != nil {
		return nil, errors.Wrapf(err, "room %d", id)
	}

	var r *room.Room
	r, err = room.New(&room.Config{
		Room:                info.Room,
		Heightmap:           model.Heightmap,
		Items:               stored.Items,
		Templates:           o.cfg.Templates,
		Store:               o.cfg.ItemRepo,
		Inventory:           o.cfg.ItemRepo,
		Wallets:             o.cfg.Wallets,
		Transport:           o.cfg.Transport,
		EventBus:            o.cfg.EventBus,
		Clock:               o.cfg.Clock,
		Roller:              o.cfg.Roller,
		TickInterval:        o.cfg.TickInterval,
		SpecialCastInterval: o.cfg.SpecialCastInterval,
		SettleDelay:         o.cfg.SettleDelay,
		MaxStackHeight:      o.cfg.MaxStackHeight,
		BotWanderChance:     o.cfg.BotWanderChance,
		OnIdle:              func(int) { o.unloaded(id, r) },
		Logger:              o.logger,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "room %d", id)
	}
	return r, nil
}

func (o *orchestrator) lookup(id int) (*room.Room, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	r, ok := o.live[id]
	if !ok {
		return nil, errors.NotFoundf("room %d is not loaded", id)
	}
	return r, nil
}

// stopIfEmpty stops a room nobody managed to enter, so a failed first
// entry does not leave it loaded with no users. The caller's ctx may
// already be done, so the check gets its own.
func (o *orchestrator) stopIfEmpty(r *room.Room) {
	if err := r.StopIfEmpty(context.Background()); err != nil && !errors.Is(err, room.ErrRoomClosed) {
		o.logger.Warn("idle check failed", "room_id", r.ID(), "error", err)
	}
}

// forget drops r if it is still the live room for id
func (o *orchestrator) forget(id int, r *room.Room) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.live[id] != r {
		return false
	}
	delete(o.live, id)
	return true
}

// unloaded runs on the stopping room's goroutine
func (o *orchestrator) unloaded(id int, r *room.Room) {
	o.mu.Lock()
	if cur, ok := o.live[id]; ok && cur != r {
		// a fresh instance already took over; its counts are not ours to reset
		o.mu.Unlock()
		return
	}
	delete(o.live, id)
	o.users[id] = 0
	o.mu.Unlock()

	o.publish(context.Background(), room.NewRoomEvent(room.EventRoomUnloaded, id))
	o.logger.Info("room unloaded", "room_id", id)
}

func (o *orchestrator) onOccupantEvent(_ context.Context, e events.Event) error {
	id, ok := room.RoomID(e.Target())
	if !ok {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch e.Type() {
	case room.EventOccupantEntered:
		o.users[id]++
		if o.users[id] > o.peaks[id] {
			o.peaks[id] = o.users[id]
		}
		total := 0
		for _, n := range o.users {
			total += n
		}
		if total > o.globalPeak {
			o.globalPeak = total
		}
	case room.EventOccupantLeft:
		if o.users[id] > 0 {
			o.users[id]--
		}
	}
	return nil
}

func (o *orchestrator) publish(ctx context.Context, e events.Event) {
	if err := o.cfg.EventBus.Publish(ctx, e); err != nil {
		o.logger.Warn("event publish failed", "type", e.Type(), "error", err)
	}
}
