package furniture

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	itemsrepo "github.com/KirkDiggler/room-server/internal/repositories/items"
)

// untoggleable lists wall sprites whose variable is only ever changed by the
// server
var untoggleable = map[string]bool{
	"post.it":    true,
	"post.it.vd": true,
	"poster":     true,
	"photo":      true,
	"roomdimmer": true,
}

// WallConfig holds the dependencies of a WallPlacer
type WallConfig struct {
	RoomID    int
	Templates TemplateSource
	Store     itemsrepo.Writer
	Broadcast func(payload string)
	Logger    *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *WallConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.Broadcast == nil {
		vb.RequiredField("Broadcast")
	}

	return vb.Build()
}

// WallPlacer keeps a room's wall items. Wall items have no footprint on the
// grid.
type WallPlacer struct {
	roomID    int
	templates TemplateSource
	store     itemsrepo.Writer
	broadcast func(string)
	logger    *slog.Logger

	items map[int]*entities.WallItem
}

// NewWallPlacer creates an empty wall placer
func NewWallPlacer(cfg *WallConfig) (*WallPlacer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WallPlacer{
		roomID:    cfg.RoomID,
		templates: cfg.Templates,
		store:     cfg.Store,
		broadcast: cfg.Broadcast,
		logger:    logger,
		items:     make(map[int]*entities.WallItem),
	}, nil
}

// Get returns the wall item with id
func (p *WallPlacer) Get(id int) (*entities.WallItem, bool) {
	item, ok := p.items[id]
	return item, ok
}

// Items returns every wall item ordered by id
func (p *WallPlacer) Items() []*entities.WallItem {
	out := make([]*entities.WallItem, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore adds a stored item without persisting or broadcasting
func (p *WallPlacer) Restore(item *entities.WallItem) error {
	if _, exists := p.items[item.ID]; exists {
		return errors.Invariantf("wall item %d is already placed", item.ID)
	}
	if _, ok := p.templates.Template(item.TemplateID); !ok {
		return errors.NotFoundf("template %d not found", item.TemplateID)
	}
	p.items[item.ID] = item
	return nil
}

// Add hangs a new item on the wall
func (p *WallPlacer) Add(ctx context.Context, item *entities.WallItem) error {
	if item.WallPosition == "" {
		return errors.Rejectedf("wall item %d has no wall position", item.ID)
	}
	if err := p.Restore(item); err != nil {
		return err
	}

	tmpl, _ := p.templates.Template(item.TemplateID)

	_, err := p.store.SaveItemPosition(ctx, itemsrepo.SaveItemPositionInput{
		ItemID:       item.ID,
		RoomID:       p.roomID,
		WallPosition: item.WallPosition,
	})
	p.logStoreError(err, "save position", item.ID)

	p.broadcast(AddWallItemPacket(item, tmpl))
	return nil
}

// Remove takes an item off the wall, back to its owner or destroyed
func (p *WallPlacer) Remove(ctx context.Context, id int, returnToOwner bool) error {
	item, ok := p.items[id]
	if !ok {
		return errors.NotFoundf("wall item %d is not in the room", id)
	}
	delete(p.items, id)

	var err error
	if returnToOwner {
		_, err = p.store.TransferItemToOwner(ctx, itemsrepo.TransferItemToOwnerInput{ItemID: id, OwnerID: item.OwnerID})
	} else {
		_, err = p.store.DeleteItem(ctx, itemsrepo.DeleteItemInput{ItemID: id})
	}
	p.logStoreError(err, "remove", id)

	p.broadcast(RemoveWallItemPacket(id))
	return nil
}

// ToggleStatus stores a new variable for a wall item. Items on the denylist
// are refused.
func (p *WallPlacer) ToggleStatus(ctx context.Context, id int, value string) error {
	item, ok := p.items[id]
	if !ok {
		return errors.NotFoundf("wall item %d is not in the room", id)
	}

	tmpl, ok := p.templates.Template(item.TemplateID)
	if !ok {
		return errors.NotFoundf("template %d not found", item.TemplateID)
	}
	if untoggleable[tmpl.Sprite] {
		return errors.Rejectedf("wall item %s cannot be toggled", tmpl.Sprite)
	}

	item.Var = value

	_, err := p.store.SaveItemVar(ctx, itemsrepo.SaveItemVarInput{ItemID: id, Var: value})
	p.logStoreError(err, "save var", id)

	p.broadcast(UpdateWallItemPacket(item, tmpl))
	return nil
}

func (p *WallPlacer) logStoreError(err error, op string, id int) {
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
