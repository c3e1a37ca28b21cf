package level

import (
	"slices"
	"time"
)

type animKey struct {
	layer, x, y int
}

type animation struct {
	frames []TileID
	fps    float64
	start  time.Duration
	shown  int
}

// Animator plays short tile sequences by writing frames into a grid. At
// most one animation runs per coordinate.
type Animator struct {
	active map[animKey]*animation
}

func NewAnimator() *Animator {
	return &Animator{active: make(map[animKey]*animation)}
}

// Play starts frames at (x,y,layer) and writes the first frame immediately.
// It returns false if an animation is already running there.
func (a *Animator) Play(g *Grid, layer, x, y int, frames []TileID, fps float64, now time.Duration) bool {
	if len(frames) == 0 || fps <= 0 || !g.InBounds(x, y) {
		return false
	}
	k := animKey{layer, x, y}
	if _, busy := a.active[k]; busy {
		return false
	}
	a.active[k] = &animation{frames: slices.Clone(frames), fps: fps, start: now}
	g.SetCell(x, y, layer, frames[0])
	return true
}

// Update advances every animation to now. Finished sequences leave their
// last frame in the grid and are dropped.
func (a *Animator) Update(g *Grid, now time.Duration) {
	for k, anim := range a.active {
		idx := int((now - anim.start).Seconds() * anim.fps)
		if idx < 0 {
			idx = 0
		}
		if idx >= len(anim.frames) {
			g.SetCell(k.x, k.y, k.layer, anim.frames[len(anim.frames)-1])
			delete(a.active, k)
			continue
		}
		if idx != anim.shown {
			anim.shown = idx
			g.SetCell(k.x, k.y, k.layer, anim.frames[idx])
		}
	}
}

func (a *Animator) Active(layer, x, y int) bool {
	_, ok := a.active[animKey{layer, x, y}]
	return ok
}

func (a *Animator) Len() int {
	return len(a.active)
}

// Finish jumps every running animation to its last frame in g and drops
// it. Used before g stops being the grid that Update is called with.
func (a *Animator) Finish(g *Grid) {
	for k, anim := range a.active {
		g.SetCell(k.x, k.y, k.layer, anim.frames[len(anim.frames)-1])
	}
	clear(a.active)
}
