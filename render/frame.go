package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/milk9111/systematic/common"
	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/level"
)

// Rect is one filled rectangle in screen pixels. Text, when set, is drawn
// centred on the rectangle in white.
type Rect struct {
	X, Y, W, H float64
	Color      color.RGBA
	Text       string
}

var (
	labelFace font.Face = basicfont.Face7x13

	plateColor = color.RGBA{0x22, 0x22, 0x22, 0xff}
)

// Frame appends the rectangles for the visible tiles, the player and the
// particles to dst, back to front.
func Frame(dst []Rect, eng *engine.Engine, pal Palette) []Rect {
	view := eng.View()
	ts := eng.TileSize()
	g := eng.Grid()
	spike := eng.SpikeFrame()

	c0 := max(common.FloorDiv(view.X, ts), 0)
	r0 := max(common.FloorDiv(view.Y, ts), 0)
	c1 := min(common.FloorDiv(view.X+view.W, ts), g.Cols()-1)
	r1 := min(common.FloorDiv(view.Y+view.H, ts), g.Rows()-1)

	for layer := range level.LayerCount {
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				id := g.Cell(col, row, layer)
				if id == level.TileEmpty {
					continue
				}
				if id == level.TileSpike {
					id = spike
				}
				x := float64(col)*ts - view.X
				y := float64(row)*ts - view.Y
				if id == level.TileText {
					dst = append(dst, label(eng, col, row, layer, x, y, ts))
					continue
				}
				if def, ok := eng.TileDef(id); ok && len(def.Sprite) > 0 {
					dst = sprite(dst, def.Sprite, x, y, ts, pal, layer)
					continue
				}
				dst = append(dst, Rect{X: x, Y: y, W: ts, H: ts, Color: pal.Tile(id, layer)})
			}
		}
	}

	p := eng.Player()
	dst = sprite(dst, p.Sprite, p.X-view.X, p.Y-view.Y, p.Width, pal, level.LayerForeground)

	for _, pt := range eng.Particles() {
		dst = append(dst, Rect{X: pt.X - view.X, Y: pt.Y - view.Y, W: pt.Size, H: pt.Size, Color: pt.Color})
	}
	return dst
}

// label is the dark plate of a text tile, widened to fit its text.
func label(eng *engine.Engine, col, row, layer int, x, y, ts float64) Rect {
	txt := eng.Tiles().StringOr(level.TileText, eng.TileProperties(col, row, layer), "text", "")
	w := float64(font.MeasureString(labelFace, txt).Ceil())
	extra := max(0, w+8-ts)
	return Rect{X: x - extra/2, Y: y, W: ts + extra, H: ts, Color: plateColor, Text: txt}
}

// sprite scales a palette-index sprite into a size x size box.
func sprite(dst []Rect, px [][]int, x, y, size float64, pal Palette, layer int) []Rect {
	if len(px) == 0 {
		return dst
	}
	cell := size / float64(len(px))
	for r, row := range px {
		for c, idx := range row {
			clr, ok := pal.Index(idx)
			if !ok {
				continue
			}
			dst = append(dst, Rect{X: x + float64(c)*cell, Y: y + float64(r)*cell, W: cell, H: cell, Color: shade(clr, layer)})
		}
	}
	return dst
}

// Paint rasterises rects and their labels onto img without blending.
func Paint(img *image.RGBA, rects []Rect) {
	for _, r := range rects {
		b := image.Rect(
			int(math.Floor(r.X)), int(math.Floor(r.Y)),
			int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
		)
		draw.Draw(img, b.Intersect(img.Bounds()), image.NewUniform(r.Color), image.Point{}, draw.Src)
		if r.Text != "" {
			drawLabel(img, r)
		}
	}
}

func drawLabel(img *image.RGBA, r Rect) {
	d := &font.Drawer{Dst: img, Src: image.White, Face: labelFace}
	m := labelFace.Metrics()
	w := d.MeasureString(r.Text).Ceil()
	x := int(math.Round(r.X+r.W/2)) - w/2
	y := int(math.Round(r.Y+r.H/2)) + (m.Ascent-m.Descent).Round()/2
	d.Dot = fixed.P(x, y)
	d.DrawString(r.Text)
}
