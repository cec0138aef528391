package room

import (
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
	"github.com/KirkDiggler/room-server/internal/repositories/wallets"
	"github.com/KirkDiggler/room-server/internal/room/furniture"
	"github.com/KirkDiggler/room-server/internal/transport"
)

// Engine defaults
const (
	DefaultTickInterval        = 400 * time.Millisecond
	DefaultSpecialCastInterval = 10 * time.Second
	DefaultSettleDelay         = 500 * time.Millisecond
	DefaultMaxStackHeight      = 9.9
	DefaultBotWanderChance     = 8
)

// Config holds everything needed to bring one room to life
type Config struct {
	Room      *entities.Room
	Heightmap string

	// Items are the room's stored items, lowest first
	Items []*entities.ItemRow

	Templates furniture.TemplateSource
	Store     itemsrepo.Writer

	// Inventory resolves items users place from their inventory. Without it
	// placement requests are ignored.
	Inventory itemsrepo.Loader

	// Wallets pays for pool entry. Without it pools are free.
	Wallets wallets.Repository

	Transport transport.Transport
	EventBus  events.EventBus
	Clock     clock.Clock
	Roller    dice.Roller

	TickInterval        time.Duration
	SpecialCastInterval time.Duration
	SettleDelay         time.Duration
	MaxStackHeight      float64

	// BotWanderChance makes an idle bot pick a patrol cell on a 1 in N roll
	// each tick. Zero uses the default; a negative value disables wandering.
	BotWanderChance int

	// OnIdle is called once, from the room's goroutine, after the room stops
	OnIdle func(roomID int)

	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Room == nil {
		vb.RequiredField("Room")
	}
	errors.ValidateRequired("Heightmap", c.Heightmap, vb)
	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.Transport == nil {
		vb.RequiredField("Transport")
	}
	if c.TickInterval < 0 {
		vb.InvalidField("TickInterval", "must not be negative")
	}
	if c.SettleDelay < 0 {
		vb.InvalidField("SettleDelay", "must not be negative")
	}
	if c.MaxStackHeight < 0 {
		vb.InvalidField("MaxStackHeight", "must not be negative")
	}

	return vb.Build()
}

func (c *Config) withDefaults() {
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.SpecialCastInterval <= 0 {
		c.SpecialCastInterval = DefaultSpecialCastInterval
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.MaxStackHeight == 0 {
		c.MaxStackHeight = DefaultMaxStackHeight
	}
	if c.BotWanderChance == 0 {
		c.BotWanderChance = DefaultBotWanderChance
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Roller == nil {
		c.Roller = dice.DefaultRoller
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
