// Package furniture places, moves and removes a room's floor and wall items,
// keeping every covered grid cell's stack, state and height consistent with
// the items on it.
package furniture

import "github.com/KirkDiggler/room-server/internal/entities"

// TemplateSource resolves item templates
type TemplateSource interface {
	Template(id int) (*entities.Template, bool)
}

// TemplateSet is an in-memory TemplateSource
type TemplateSet map[int]*entities.Template

// Template returns the template with id
func (s TemplateSet) Template(id int) (*entities.Template, bool) {
	t, ok := s[id]
	return t, ok
}

// Footprint returns how many cells an item of template t covers along x and
// y at rotation rot. Rotations 2 and 6 use length along x and width along y;
// every other rotation swaps them.
func Footprint(t *entities.Template, rot int) (sizeX, sizeY int) {
	length, width := max(t.Length, 1), max(t.Width, 1)
	if rot == 2 || rot == 6 {
		return length, width
	}
	return width, length
}
