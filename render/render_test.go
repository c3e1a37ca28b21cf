package render

import (
	"bytes"
	"image"
	"image/color"
	"log"
	"testing"

	"github.com/milk9111/systematic/config"
	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/level"
)

func TestPalette(t *testing.T) {
	pal := NewPalette([]string{"#000000", "#ff8040", "nope"})
	cases := []struct {
		name  string
		id    level.TileID
		layer int
		want  color.RGBA
	}{
		{"foreground", 1, level.LayerForeground, color.RGBA{0xff, 0x80, 0x40, 0xff}},
		{"background is dimmed", 1, level.LayerBackground, color.RGBA{0x7f, 0x40, 0x20, 0xff}},
		{"wraps", 4, level.LayerForeground, color.RGBA{0xff, 0x80, 0x40, 0xff}},
		{"bad entry is white", 2, level.LayerForeground, color.RGBA{0xff, 0xff, 0xff, 0xff}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := pal.Tile(c.id, c.layer); got != c.want {
				t.Fatalf("Tile(%d,%d) = %v, want %v", c.id, c.layer, got, c.want)
			}
		})
	}
	if _, ok := pal.Index(-1); ok {
		t.Fatalf("negative index must be transparent")
	}
}

func TestFrameAndPaint(t *testing.T) {
	cfg := config.Default()
	cfg.Lighting.Enabled = false
	eng := engine.New(cfg, log.New(&bytes.Buffer{}, "", 0))
	eng.ScreenSize(300, 200)
	eng.SetTileAt(0, 0, level.LayerForeground, 1)

	pal := NewPalette([]string{"#000000", "#ff0000", "#00ff00", "#0000ff"})
	rects := Frame(nil, eng, pal)
	if len(rects) == 0 || rects[0] != (Rect{X: 0, Y: 0, W: 30, H: 30, Color: color.RGBA{0xff, 0, 0, 0xff}}) {
		t.Fatalf("first rect should be the tile at (0,0), got %+v", rects[:1])
	}

	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	Paint(img, rects)
	if got := img.RGBAAt(15, 15); got != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Fatalf("tile pixel = %v", got)
	}
	// Player sprite corner at spawn (100,100) is palette index 1.
	if got := img.RGBAAt(101, 101); got != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Fatalf("player pixel = %v", got)
	}
}

func TestTextTileLabel(t *testing.T) {
	cfg := config.Default()
	cfg.Lighting.Enabled = false
	eng := engine.New(cfg, log.New(&bytes.Buffer{}, "", 0))
	eng.ScreenSize(300, 200)
	eng.SetTileAt(4, 2, level.LayerForeground, level.TileText)
	eng.SetTileProperties(4, 2, level.LayerForeground, level.Props{"text": "Hello world"})

	pal := NewPalette([]string{"#000000", "#ff0000"})
	var plate Rect
	for _, r := range Frame(nil, eng, pal) {
		if r.Text != "" {
			plate = r
		}
	}
	// 11 glyphs of 7px plus 8px padding is 55px wider than the tile.
	want := Rect{X: 120 - 27.5, Y: 60, W: 85, H: 30, Color: plateColor, Text: "Hello world"}
	if plate != want {
		t.Fatalf("plate = %+v, want %+v", plate, want)
	}

	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	Paint(img, []Rect{plate})
	white := 0
	for y := 60; y < 90; y++ {
		for x := 92; x < 178; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
				white++
			}
		}
	}
	if white == 0 {
		t.Fatalf("label text was not painted")
	}
	if got := img.RGBAAt(93, 61); got != plateColor {
		t.Fatalf("plate corner = %v, want %v", got, plateColor)
	}

	t.Run("empty label", func(t *testing.T) {
		eng.SetTileProperties(4, 2, level.LayerForeground, level.Props{})
		for _, r := range Frame(nil, eng, pal) {
			if r.X == 120 && r.Y == 60 && r.Color == plateColor && r.W == 30 {
				return
			}
		}
		t.Fatalf("text tile without text should still draw its plate")
	})
}
