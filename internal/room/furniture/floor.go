package furniture

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
	"github.com/KirkDiggler/room-server/internal/room/grid"
)

// FloorConfig holds the dependencies of a FloorPlacer
type FloorConfig struct {
	RoomID    int
	Grid      *grid.Grid
	Templates TemplateSource
	Store     itemsrepo.Writer

	// Broadcast sends one packet to everyone in the room
	Broadcast func(payload string)

	// Refresh is called for every occupied cell whose items changed
	Refresh func(p grid.Point)

	MaxStackHeight float64
	Logger         *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *FloorConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Grid == nil {
		vb.RequiredField("Grid")
	}
	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.Broadcast == nil {
		vb.RequiredField("Broadcast")
	}
	if c.MaxStackHeight <= 0 {
		vb.InvalidField("MaxStackHeight", "must be positive")
	}

	return vb.Build()
}

// FloorPlacer owns a room's floor items and the grid cells they cover. Not
// safe for concurrent use; the room serializes every call.
type FloorPlacer struct {
	roomID    int
	grid      *grid.Grid
	templates TemplateSource
	store     itemsrepo.Writer
	broadcast func(string)
	refresh   func(grid.Point)
	maxHeight float64
	logger    *slog.Logger

	items map[int]*entities.FloorItem
}

// NewFloorPlacer creates an empty placer over cfg.Grid
func NewFloorPlacer(cfg *FloorConfig) (*FloorPlacer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &FloorPlacer{
		roomID:    cfg.RoomID,
		grid:      cfg.Grid,
		templates: cfg.Templates,
		store:     cfg.Store,
		broadcast: cfg.Broadcast,
		refresh:   cfg.Refresh,
		maxHeight: cfg.MaxStackHeight,
		logger:    logger,
		items:     make(map[int]*entities.FloorItem),
	}, nil
}

// Get returns the placed item with id
func (p *FloorPlacer) Get(id int) (*entities.FloorItem, bool) {
	item, ok := p.items[id]
	return item, ok
}

// Count returns the number of placed items
func (p *FloorPlacer) Count() int {
	return len(p.items)
}

// Items returns every placed item, lowest first
func (p *FloorPlacer) Items() []*entities.FloorItem {
	out := make([]*entities.FloorItem, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].H != out[j].H {
			return out[i].H < out[j].H
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Restore puts a stored item back on the grid at its stored height without
// persisting or broadcasting. Items must be restored lowest first.
func (p *FloorPlacer) Restore(item *entities.FloorItem) error {
	if _, exists := p.items[item.ID]; exists {
		return errors.Invariantf("floor item %d is already placed", item.ID)
	}

	tmpl, err := p.template(item.TemplateID)
	if err != nil {
		return err
	}

	cells := p.cells(tmpl, item.X, item.Y, item.Rotation)
	for _, pt := range cells {
		if !p.grid.InBounds(pt.X, pt.Y) {
			return errors.InvalidArgumentf("floor item %d covers %d,%d outside the grid", item.ID, pt.X, pt.Y)
		}
		c := p.grid.At(pt)
		if c.Wall() || c.Blocker != 0 || c.Stack.Full() {
			return errors.InvalidArgumentf("floor item %d cannot rest on %d,%d", item.ID, pt.X, pt.Y)
		}
	}

	p.items[item.ID] = item
	p.attach(item, tmpl, cells)
	p.settle(cells)
	return nil
}

// Place puts a new item on the grid. Its height is computed from whatever
// already sits under its footprint.
func (p *FloorPlacer) Place(ctx context.Context, item *entities.FloorItem) error {
	if _, exists := p.items[item.ID]; exists {
		return errors.Invariantf("floor item %d is already placed", item.ID)
	}

	tmpl, err := p.template(item.TemplateID)
	if err != nil {
		return err
	}

	cells := p.cells(tmpl, item.X, item.Y, item.Rotation)
	if err := p.check(tmpl, cells, item.ID); err != nil {
		return err
	}

	item.H = p.restingHeight(cells, item.ID)
	p.items[item.ID] = item
	p.attach(item, tmpl, cells)
	p.settle(cells)

	p.savePosition(ctx, item)
	p.broadcast(AddFloorItemPacket(item, tmpl))

	p.logger.Debug("floor item placed",
		"room_id", p.roomID,
		"item_id", item.ID,
		"x", item.X,
		"y", item.Y,
		"h", item.H,
	)
	return nil
}

// Remove takes an item off the grid. With returnToOwner the item goes back
// to its owner's inventory; otherwise it is destroyed.
func (p *FloorPlacer) Remove(ctx context.Context, id int, returnToOwner bool) error {
	item, ok := p.items[id]
	if !ok {
		return errors.NotFoundf("floor item %d is not in the room", id)
	}

	tmpl, err := p.template(item.TemplateID)
	if err != nil {
		return err
	}

	cells := p.cells(tmpl, item.X, item.Y, item.Rotation)
	p.detach(id, cells)
	delete(p.items, id)
	p.settle(cells)

	if returnToOwner {
		_, err = p.store.TransferItemToOwner(ctx, itemsrepo.TransferItemToOwnerInput{ItemID: id, OwnerID: item.OwnerID})
	} else {
		_, err = p.store.DeleteItem(ctx, itemsrepo.DeleteItemInput{ItemID: id})
	}
	p.logStoreError(err, "remove", id)

	p.broadcast(RemoveFloorItemPacket(id))
	return nil
}

// Relocate moves and rotates an item in one step. The destination is
// validated as a whole before anything changes, and the item's own cells do
// not count against it.
func (p *FloorPlacer) Relocate(ctx context.Context, id, x, y, rot int) error {
	item, ok := p.items[id]
	if !ok {
		return errors.NotFoundf("floor item %d is not in the room", id)
	}

	tmpl, err := p.template(item.TemplateID)
	if err != nil {
		return err
	}

	from := p.cells(tmpl, item.X, item.Y, item.Rotation)
	to := p.cells(tmpl, x, y, rot)
	if err := p.check(tmpl, to, id); err != nil {
		return err
	}

	h := p.restingHeight(to, id)

	p.detach(id, from)
	item.X, item.Y, item.Rotation, item.H = x, y, rot, h
	p.attach(item, tmpl, to)
	p.settle(append(from, to...))

	p.savePosition(ctx, item)
	p.broadcast(UpdateFloorItemPacket(item, tmpl))
	return nil
}

// ToggleStatus stores a new variable value for an item. Closing a gate with
// someone standing in it is refused.
func (p *FloorPlacer) ToggleStatus(ctx context.Context, id int, value string) error {
	item, ok := p.items[id]
	if !ok {
		return errors.NotFoundf("floor item %d is not in the room", id)
	}

	tmpl, err := p.template(item.TemplateID)
	if err != nil {
		return err
	}

	cells := p.cells(tmpl, item.X, item.Y, item.Rotation)
	if tmpl.Kind == entities.KindGate && value != entities.GateOpen {
		for _, pt := range cells {
			if p.grid.At(pt).Occupied {
				return errors.Rejectedf("gate %d is blocked by an occupant at %d,%d", id, pt.X, pt.Y)
			}
		}
	}

	item.Var = value
	p.settle(cells)

	_, err = p.store.SaveItemVar(ctx, itemsrepo.SaveItemVarInput{ItemID: id, Var: value})
	p.logStoreError(err, "save var", id)

	p.broadcast(FloorItemVarPacket(id, value))
	return nil
}

// Template resolves the template of a placed item
func (p *FloorPlacer) Template(item *entities.FloorItem) (*entities.Template, bool) {
	return p.templates.Template(item.TemplateID)
}

func (p *FloorPlacer) template(id int) (*entities.Template, error) {
	tmpl, ok := p.templates.Template(id)
	if !ok {
		return nil, errors.NotFoundf("template %d not found", id)
	}
	return tmpl, nil
}

func (p *FloorPlacer) cells(tmpl *entities.Template, x, y, rot int) []grid.Point {
	sizeX, sizeY := Footprint(tmpl, rot)
	out := make([]grid.Point, 0, sizeX*sizeY)
	for dx := 0; dx < sizeX; dx++ {
		for dy := 0; dy < sizeY; dy++ {
			out = append(out, grid.Point{X: x + dx, Y: y + dy})
		}
	}
	return out
}

// check validates that an item of tmpl may rest on every cell, ignoring the
// item self wherever it already is.
func (p *FloorPlacer) check(tmpl *entities.Template, cells []grid.Point, self int) error {
	for _, pt := range cells {
		if !p.grid.InBounds(pt.X, pt.Y) {
			return errors.Rejectedf("%d,%d is outside the room", pt.X, pt.Y)
		}

		c := p.grid.At(pt)
		switch {
		case c.Wall():
			return errors.Rejectedf("%d,%d is a wall", pt.X, pt.Y)
		case c.Trigger != nil:
			return errors.Rejectedf("%d,%d holds a %s trigger", pt.X, pt.Y, c.Trigger.Object)
		case c.Blocker != 0 && c.Blocker != self:
			return errors.Rejectedf("%d,%d is taken by item %d", pt.X, pt.Y, c.Blocker)
		}

		count := c.Stack.Count()
		if c.Stack.Contains(self) {
			count--
		}
		if count >= grid.StackCapacity {
			return errors.Rejectedf("stack at %d,%d is full", pt.X, pt.Y)
		}

		top, hasTop := c.Stack.TopExcluding(self)
		if hasTop {
			topTmpl, ok := p.templateOf(top)
			if !ok || !topTmpl.CarriesStack() {
				return errors.Rejectedf("item %d at %d,%d cannot carry anything", top, pt.X, pt.Y)
			}
		}

		if c.Occupied && (hasTop || !tmpl.AllowsOccupant()) {
			return errors.Rejectedf("%d,%d is occupied", pt.X, pt.Y)
		}
	}
	return nil
}

func (p *FloorPlacer) restingHeight(cells []grid.Point, self int) float64 {
	var h float64
	for i, pt := range cells {
		c := p.grid.At(pt)

		v := float64(c.FloorHeight)
		if top, ok := c.Stack.TopExcluding(self); ok {
			if item, ok := p.items[top]; ok {
				if tmpl, ok := p.templateOf(top); ok {
					v = item.H + tmpl.TopH
				}
			}
		}

		if i == 0 || v > h {
			h = v
		}
	}

	if h > p.maxHeight {
		h = p.maxHeight
	}
	return h
}

// attach records the item on each cell: on the stack when the cell already
// has one or the item can carry others, as the cell's blocker otherwise.
func (p *FloorPlacer) attach(item *entities.FloorItem, tmpl *entities.Template, cells []grid.Point) {
	for _, pt := range cells {
		c := p.grid.At(pt)
		if c.Stack.Count() == 0 && !tmpl.CarriesStack() {
			c.Blocker = item.ID
			continue
		}
		if !c.Stack.Push(item.ID) {
			p.logger.Error("stack overflow",
				"room_id", p.roomID, "item_id", item.ID, "x", pt.X, "y", pt.Y,
				"error", errors.Invariantf("stack at %d,%d is full", pt.X, pt.Y))
		}
	}
}

func (p *FloorPlacer) detach(id int, cells []grid.Point) {
	for _, pt := range cells {
		c := p.grid.At(pt)
		if !c.Stack.Remove(id) && c.Blocker == id {
			c.Blocker = 0
		}
	}
}

// settle recomputes each cell from its owning item and refreshes anyone
// standing on a changed cell
func (p *FloorPlacer) settle(cells []grid.Point) {
	seen := make(map[grid.Point]bool, len(cells))
	for _, pt := range cells {
		if seen[pt] {
			continue
		}
		seen[pt] = true

		c := p.grid.At(pt)
		p.derive(c)
		if c.Occupied && p.refresh != nil {
			p.refresh(pt)
		}
	}
}

func (p *FloorPlacer) derive(c *grid.Cell) {
	id, ok := c.Owner()
	if !ok {
		c.Reset()
		return
	}

	item, ok := p.items[id]
	if !ok {
		c.Reset()
		return
	}
	tmpl, ok := p.templateOf(id)
	if !ok {
		c.Reset()
		c.State = grid.StateBlocked
		return
	}

	c.ItemHeight = item.H + tmpl.TopH
	c.ItemRotation = item.Rotation

	switch tmpl.Kind {
	case entities.KindSeat:
		c.State = grid.StateSeat
	case entities.KindBed:
		c.State = grid.StateBed
	case entities.KindRug:
		c.State = grid.StateRug
	case entities.KindGate:
		if item.Var == entities.GateOpen {
			c.State = grid.StateOpen
		} else {
			c.State = grid.StateBlocked
		}
	default:
		c.State = grid.StateBlocked
	}
}

func (p *FloorPlacer) templateOf(id int) (*entities.Template, bool) {
	item, ok := p.items[id]
	if !ok {
		return nil, false
	}
	return p.templates.Template(item.TemplateID)
}

func (p *FloorPlacer) savePosition(ctx context.Context, item *entities.FloorItem) {
	_, err := p.store.SaveItemPosition(ctx, itemsrepo.SaveItemPositionInput{
		ItemID: item.ID,
		RoomID: p.roomID,
		X:      item.X,
		Y:      item.Y,
		Z:      item.Rotation,
		H:      item.H,
	})
	p.logStoreError(err, "save position", item.ID)
}

func (p *FloorPlacer) logStoreError(err error, op string, id int) {
	if err == nil {
		return
	}
	p.logger.Warn("item write failed",
		"room_id", p.roomID,
		"item_id", id,
		"op", op,
		"error", err,
	)
}
