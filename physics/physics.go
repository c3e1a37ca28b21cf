package physics

import (
	"math"

	"github.com/milk9111/systematic/config"
	"github.com/milk9111/systematic/entity"
	"github.com/milk9111/systematic/event"
	"github.com/milk9111/systematic/level"
)

type Mode int

const (
	ModeEdit Mode = iota
	ModePlay
)

func (m Mode) String() string {
	if m == ModePlay {
		return "play"
	}
	return "edit"
}

// World is the slice of simulation state the stepper reads and writes.
type World interface {
	TileSize() float64
	Cell(col, row, layer int) level.TileID
	Props(col, row, layer int) level.Props
	Tiles() *level.Registry
	// PlayBounce starts the bounce animation for the tile at (col,row).
	PlayBounce(col, row int, id level.TileID)
}

// Params are the per-tick constants in pixels, scaled from tile units.
type Params struct {
	Gravity          float64
	Jump             float64
	Move             float64
	BounceMultiplier float64
	Inset            float64
}

func ParamsFor(cfg config.Physics, tileSize float64) Params {
	return Params{
		Gravity:          cfg.GravityTiles * tileSize,
		Jump:             cfg.JumpTiles * tileSize,
		Move:             cfg.MoveTiles * tileSize,
		BounceMultiplier: cfg.BounceMultiplier,
		Inset:            cfg.SampleInset,
	}
}

// Stepper advances the player one fixed tick and raises the movement hooks
// on hub. Velocities are per tick; dt is not applied.
type Stepper struct {
	cfg config.Physics
	hub *event.Hub
}

func NewStepper(cfg config.Physics, hub *event.Hub) *Stepper {
	return &Stepper{cfg: cfg, hub: hub}
}

type sampler struct {
	w  World
	ts float64
}

func (p sampler) tile(x, y float64) (int, int) {
	return int(math.Floor(x / p.ts)), int(math.Floor(y / p.ts))
}

func (p sampler) id(x, y float64) level.TileID {
	col, row := p.tile(x, y)
	return p.w.Cell(col, row, level.LayerForeground)
}

func (p sampler) solid(x, y float64) bool {
	return p.w.Tiles().SolidForCollision(p.id(x, y))
}

// oneWayBlocks reports whether a one-way tile at (x,y) holds the player. It
// lets the player through only while drop is held and the instance allows
// dropping.
func (p sampler) oneWayBlocks(x, y float64, drop bool) bool {
	reg := p.w.Tiles()
	id := p.id(x, y)
	if !reg.OneWay(id) {
		return false
	}
	if !drop {
		return true
	}
	col, row := p.tile(x, y)
	props := p.w.Props(col, row, level.LayerForeground)
	return !reg.BoolOr(id, props, "allowDrop", false)
}

// Step runs one tick of movement for pl.
func (s *Stepper) Step(w World, pl *entity.Player, keys entity.Keys) {
	ts := w.TileSize()
	if ts <= 0 || pl == nil {
		return
	}
	prm := ParamsFor(s.cfg, ts)
	pr := sampler{w: w, ts: ts}
	in := prm.Inset

	pl.WasOnWallLeft, pl.WasOnWallRight = pl.OnWallLeft, pl.OnWallRight
	pl.OnWallLeft, pl.OnWallRight = false, false
	pl.OnGround = false

	switch {
	case keys.Left():
		pl.VX = -prm.Move
	case keys.Right():
		pl.VX = prm.Move
	default:
		pl.VX = 0
	}
	s.hub.Trigger(event.InputEvent{Type: event.PostInput, Player: pl, Keys: keys})

	pl.X += pl.VX
	s.resolveHorizontal(pr, pl, in)
	s.detectWalls(pr, pl, in)

	pl.VY += prm.Gravity
	pl.Y += pl.VY

	s.resolveCeiling(pr, pl, in)
	s.hub.Trigger(event.PlayerEvent{Type: event.PostPhysicsCollision, Player: pl})

	s.resolveGround(pr, pl, in, keys)

	if keys.Up() && pl.OnGround {
		pl.VY = prm.Jump
		pl.OnGround = false
		s.hub.Trigger(event.PlayerEvent{Type: event.PlayerJump, Player: pl})
	}

	s.resolveBounce(pr, pl, prm)
	s.hub.Trigger(event.InputEvent{Type: event.PostSpecialPhysicsCollide, Player: pl, Keys: keys})
}

func (s *Stepper) resolveHorizontal(pr sampler, pl *entity.Player, in float64) {
	top, bottom := pl.Y+in, pl.Y+pl.Height-in
	switch {
	case pl.VX > 0:
		edge := pl.X + pl.Width
		row, hit := hitRow(pr, edge, top, bottom)
		if !hit {
			return
		}
		col, _ := pr.tile(edge, top)
		if s.hub.TriggerCancelable(event.WallEvent{Type: event.PrePlayerTouchWallRight, Player: pl, TileX: col, TileY: row}) {
			pl.X = float64(col)*pr.ts - pl.Width
			pl.VX = 0
		}
	case pl.VX < 0:
		edge := pl.X
		row, hit := hitRow(pr, edge, top, bottom)
		if !hit {
			return
		}
		col, _ := pr.tile(edge, top)
		if s.hub.TriggerCancelable(event.WallEvent{Type: event.PrePlayerTouchWallLeft, Player: pl, TileX: col, TileY: row}) {
			pl.X = float64(col+1) * pr.ts
			pl.VX = 0
		}
	}
}

// hitRow samples x at the two vertical insets and returns the row of the
// first solid sample.
func hitRow(pr sampler, x, top, bottom float64) (int, bool) {
	for _, y := range [2]float64{top, bottom} {
		if pr.solid(x, y) {
			_, row := pr.tile(x, y)
			return row, true
		}
	}
	return 0, false
}

func (s *Stepper) detectWalls(pr sampler, pl *entity.Player, in float64) {
	top, bottom := pl.Y+in, pl.Y+pl.Height-in
	if _, hit := hitRow(pr, pl.X+pl.Width+1, top, bottom); hit {
		pl.OnWallRight = true
		s.hub.Trigger(event.PlayerEvent{Type: event.PlayerTouchWallRight, Player: pl})
	}
	if _, hit := hitRow(pr, pl.X-1, top, bottom); hit {
		pl.OnWallLeft = true
		s.hub.Trigger(event.PlayerEvent{Type: event.PlayerTouchWallLeft, Player: pl})
	}
	if pl.WasOnWallLeft && !pl.OnWallLeft {
		s.hub.Trigger(event.PlayerEvent{Type: event.PlayerStopTouchWallLeft, Player: pl})
	}
	if pl.WasOnWallRight && !pl.OnWallRight {
		s.hub.Trigger(event.PlayerEvent{Type: event.PlayerStopTouchWallRight, Player: pl})
	}
}

func (s *Stepper) resolveCeiling(pr sampler, pl *entity.Player, in float64) {
	if pl.VY >= 0 {
		return
	}
	var hitX float64
	switch {
	case pr.solid(pl.X+in, pl.Y):
		hitX = pl.X + in
	case pr.solid(pl.X+pl.Width-in, pl.Y):
		hitX = pl.X + pl.Width - in
	default:
		return
	}
	col, row := pr.tile(hitX, pl.Y)
	if !s.hub.TriggerCancelable(event.CeilingEvent{Player: pl, TileX: col, TileY: row}) {
		return
	}
	pl.VY = 0
	pl.Y = float64(row+1) * pr.ts
	s.hub.Trigger(event.PlayerEvent{Type: event.PlayerTouchCeiling, Player: pl})
}

func (s *Stepper) resolveGround(pr sampler, pl *entity.Player, in float64, keys entity.Keys) {
	if pl.VY < 0 {
		return
	}
	feet := pl.Y + pl.Height
	drop := keys.Drop()
	for _, x := range [2]float64{pl.X + in, pl.X + pl.Width - in} {
		if !pr.solid(x, feet) && !pr.oneWayBlocks(x, feet, drop) {
			continue
		}
		col, row := pr.tile(x, feet)
		pl.Y = float64(row)*pr.ts - pl.Height
		pl.VY = 0
		pl.OnGround = true
		s.hub.Trigger(event.GroundEvent{
			Player: pl,
			TileX:  col,
			TileY:  row,
			Layer:  level.LayerForeground,
			Tile:   pr.w.Cell(col, row, level.LayerForeground),
		})
		return
	}
}

func (s *Stepper) resolveBounce(pr sampler, pl *entity.Player, prm Params) {
	x, y := pl.CenterX(), pl.Bottom()+1
	id := pr.id(x, y)
	reg := pr.w.Tiles()
	if !reg.Bounce(id) {
		return
	}
	col, row := pr.tile(x, y)
	strength := reg.NumberOr(id, pr.w.Props(col, row, level.LayerForeground), "jumpStrength", prm.BounceMultiplier)
	pl.VY = prm.Jump * strength
	pl.OnGround = false
	pr.w.PlayBounce(col, row, id)
	s.hub.Trigger(event.BounceEvent{Player: pl, TileX: col, TileY: row, Tile: id, Strength: strength})
}
