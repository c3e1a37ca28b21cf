package render

import (
	"image/color"

	"github.com/milk9111/systematic/common"
	"github.com/milk9111/systematic/level"
)

// Palette maps sprite indices and tile ids to colours.
type Palette []color.RGBA

// NewPalette parses colour strings. Unparseable entries become white.
func NewPalette(colors []string) Palette {
	p := make(Palette, 0, len(colors))
	for _, s := range colors {
		c, _ := common.ParseColor(s)
		p = append(p, c)
	}
	return p
}

// Index returns entry i, wrapping around. ok is false for negative
// (transparent) indices or an empty palette.
func (p Palette) Index(i int) (color.RGBA, bool) {
	if i < 0 || len(p) == 0 {
		return color.RGBA{}, false
	}
	return p[i%len(p)], true
}

// Tile is the flat colour of a tile id. Background tiles are drawn at half
// brightness.
func (p Palette) Tile(id level.TileID, layer int) color.RGBA {
	c, ok := p.Index(int(id))
	if !ok {
		return color.RGBA{}
	}
	return shade(c, layer)
}

func shade(c color.RGBA, layer int) color.RGBA {
	if layer == level.LayerBackground {
		return color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
	}
	return c
}

// Sky is the clear colour behind the level.
func (p Palette) Sky() color.RGBA {
	c, _ := p.Index(0)
	return c
}
