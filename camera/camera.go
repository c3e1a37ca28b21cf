package camera

import (
	"math"

	"github.com/milk9111/systematic/common"
)

// View is the visible world rectangle in pixels.
type View struct {
	X, Y float64
	W, H float64
}

// Camera tracks a target with linear smoothing and keeps the view inside
// the world.
type Camera struct {
	X, Y float64

	screenW float64
	screenH float64

	// smoothing factor (0..1). higher -> faster follow.
	smooth float64
	// world bounds in pixels (0 means unbounded)
	worldW float64
	worldH float64
}

func New(screenW, screenH, smooth float64) *Camera {
	return &Camera{screenW: screenW, screenH: screenH, smooth: smooth}
}

// SetScreenSize updates the logical screen size used by the camera.
func (c *Camera) SetScreenSize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	c.screenW = w
	c.screenH = h
}

// SetWorldBounds sets the world pixel dimensions for clamping.
func (c *Camera) SetWorldBounds(w, h float64) {
	c.worldW = w
	c.worldH = h
}

// Follow eases the view so that the box (x,y,w,h) ends up centred.
func (c *Camera) Follow(x, y, w, h float64) {
	tx := x - c.screenW/2 + w/2
	ty := y - c.screenH/2 + h/2
	tx, ty = c.clamp(tx, ty)
	if c.smooth <= 0 {
		c.X, c.Y = tx, ty
		return
	}
	c.X = common.Lerp(c.X, tx, c.smooth)
	c.Y = common.Lerp(c.Y, ty, c.smooth)
}

// Pan moves the view by (dx,dy) without smoothing.
func (c *Camera) Pan(dx, dy float64) {
	c.X, c.Y = c.clamp(c.X+dx, c.Y+dy)
}

func (c *Camera) clamp(x, y float64) (float64, float64) {
	if c.worldW > 0 {
		x = common.Clamp(x, 0, math.Max(0, c.worldW-c.screenW))
	}
	if c.worldH > 0 {
		y = common.Clamp(y, 0, math.Max(0, c.worldH-c.screenH))
	}
	return x, y
}

func (c *Camera) View() View {
	return View{X: c.X, Y: c.Y, W: c.screenW, H: c.screenH}
}
