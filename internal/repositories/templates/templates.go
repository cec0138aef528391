// Package templates loads the furniture catalogue rooms resolve items
// against
package templates

import (
	"encoding/json"
	"io"
	"os"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/errors"
	"github.com/KirkDiggler/room-server/internal/room/furniture"
)

var knownKinds = map[entities.ItemKind]bool{
	entities.KindBlocking: true,
	entities.KindSolid:    true,
	entities.KindSeat:     true,
	entities.KindBed:      true,
	entities.KindRug:      true,
	entities.KindGate:     true,
	entities.KindWall:     true,
}

// Load reads a JSON array of templates
func Load(r io.Reader) (furniture.TemplateSet, error) {
	var list []*entities.Template
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode templates")
	}

	set := make(furniture.TemplateSet, len(list))
	for i, t := range list {
		if err := validate(t); err != nil {
			return nil, errors.Wrapf(err, "template %d", i)
		}
		if _, dup := set[t.ID]; dup {
			return nil, errors.InvalidArgumentf("template id %d is defined twice", t.ID)
		}
		set[t.ID] = t
	}
	return set, nil
}

// LoadFile reads the catalogue stored at path
func LoadFile(path string) (furniture.TemplateSet, error) {
	f, err := os.Open(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open templates %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

func validate(t *entities.Template) error {
	if t == nil {
		return errors.InvalidArgument("template cannot be null")
	}

	vb := errors.NewValidationBuilder()
	if t.ID <= 0 {
		vb.InvalidField("id", "must be positive")
	}
	if t.Sprite == "" {
		vb.RequiredField("sprite")
	}
	if !knownKinds[t.Kind] {
		vb.InvalidField("kind", "unknown kind "+string(t.Kind))
	}
	if t.Length < 0 || t.Width < 0 {
		vb.InvalidField("size", "cannot be negative")
	}
	if t.TopH < 0 {
		vb.InvalidField("top_h", "cannot be negative")
	}
	return vb.Build()
}
