package lighting

import (
	"image/color"
	"slices"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/systematic/camera"
	"github.com/milk9111/systematic/common"
	"github.com/milk9111/systematic/config"
)

// SunID is the ID of the per-frame sun light.
const SunID = "sun"

// Light is a point light in world pixels. Intensity scales the alpha of
// the gradient centre and is clamped to 1 when drawn.
type Light struct {
	ID        string
	X, Y      float64
	Radius    float64
	Color     color.RGBA
	Intensity float64
}

func (l Light) pos() cp.Vector {
	return cp.Vector{X: l.X, Y: l.Y}
}

// Sun returns the fixed overhead light for view.
func Sun(v camera.View, cfg config.Sun) Light {
	c, _ := common.ParseColor(cfg.Color)
	return Light{
		ID:        SunID,
		X:         v.X + v.W/2,
		Y:         v.Y - cfg.Offset,
		Radius:    cfg.Radius,
		Color:     c,
		Intensity: cfg.Intensity,
	}
}

// Visible reports whether the light's circle overlaps the view. Lights
// with no radius are never visible.
func Visible(l Light, v camera.View) bool {
	if l.Radius <= 0 {
		return false
	}
	view := cp.BB{L: v.X, B: v.Y, R: v.X + v.W, T: v.Y + v.H}
	return cp.NewBBForCircle(l.pos(), l.Radius).Intersects(view)
}

// Lights is the ordered list of mod-owned lights.
type Lights struct {
	list []Light
}

// Add appends l, assigning a fresh ID when it has none, and returns the
// stored light.
func (ls *Lights) Add(l Light) Light {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	ls.list = append(ls.list, l)
	return l
}

func (ls *Lights) Remove(id string) bool {
	i := slices.IndexFunc(ls.list, func(l Light) bool { return l.ID == id })
	if i < 0 {
		return false
	}
	ls.list = slices.Delete(ls.list, i, i+1)
	return true
}

// Move repositions the light with the given ID.
func (ls *Lights) Move(id string, x, y float64) bool {
	for i := range ls.list {
		if ls.list[i].ID == id {
			ls.list[i].X, ls.list[i].Y = x, y
			return true
		}
	}
	return false
}

func (ls *Lights) Clear() {
	ls.list = nil
}

// All returns a copy of the lights in insertion order.
func (ls *Lights) All() []Light {
	return slices.Clone(ls.list)
}

func (ls *Lights) Len() int {
	return len(ls.list)
}
