package grid

import "strings"

// Heightmap renders the static floor the way Parse reads it, including the
// trailing record separator.
func (g *Grid) Heightmap() string {
	var b strings.Builder
	b.Grow((g.width + 1) * g.height)

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.Cell(x, y)
			if c.wall {
				b.WriteByte('x')
			} else {
				b.WriteByte('0' + c.FloorHeight)
			}
		}
		b.WriteByte('\r')
	}

	return b.String()
}

// Glyphs used by Rows
const (
	GlyphWall     = 'x'
	GlyphBlocked  = '#'
	GlyphSeat     = 'h'
	GlyphBed      = 'b'
	GlyphRug      = '_'
	GlyphOccupied = '@'
)

// Rows renders the live grid one string per row for operators: occupants,
// then item state, then the floor height digit.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.width)

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			buf[x] = g.Cell(x, y).glyph()
		}
		rows[y] = string(buf)
	}

	return rows
}

func (c *Cell) glyph() byte {
	switch {
	case c.Occupied:
		return GlyphOccupied
	case c.wall:
		return GlyphWall
	case c.State == StateBlocked:
		return GlyphBlocked
	case c.State == StateSeat:
		return GlyphSeat
	case c.State == StateBed:
		return GlyphBed
	case c.State == StateRug:
		return GlyphRug
	default:
		return '0' + c.FloorHeight
	}
}
