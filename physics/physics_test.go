package physics

import (
	"bytes"
	"log"
	"testing"

	"github.com/milk9111/systematic/config"
	"github.com/milk9111/systematic/entity"
	"github.com/milk9111/systematic/event"
	"github.com/milk9111/systematic/level"
)

type bounceCall struct {
	col, row int
	id       level.TileID
}

type testWorld struct {
	grid    *level.Grid
	reg     *level.Registry
	props   *level.Properties
	ts      float64
	bounces []bounceCall
}

func newTestWorld(cols, rows int) *testWorld {
	return &testWorld{
		grid:  level.NewGrid(cols, rows),
		reg:   level.NewRegistry(log.New(&bytes.Buffer{}, "", 0)),
		props: level.NewProperties(),
		ts:    30,
	}
}

func (w *testWorld) TileSize() float64 { return w.ts }

func (w *testWorld) Cell(col, row, layer int) level.TileID { return w.grid.Cell(col, row, layer) }

func (w *testWorld) Props(col, row, layer int) level.Props {
	return w.props.Get(level.PropKey{X: col, Y: row, Layer: layer})
}

func (w *testWorld) Tiles() *level.Registry { return w.reg }

func (w *testWorld) PlayBounce(col, row int, id level.TileID) {
	w.bounces = append(w.bounces, bounceCall{col, row, id})
}

func (w *testWorld) solid(col, row int) {
	w.grid.SetCell(col, row, level.LayerForeground, 1)
}

func newTestStepper() (*Stepper, *event.Hub, config.Physics) {
	cfg := config.Default().Physics
	hub := event.NewHub(log.New(&bytes.Buffer{}, "", 0), nil)
	return NewStepper(cfg, hub), hub, cfg
}

func newTestPlayer(x, y float64) *entity.Player {
	p := entity.NewPlayer(x, y, 8)
	p.Resize(30)
	return p
}

func TestFallOntoTile(t *testing.T) {
	w := newTestWorld(60, 30)
	w.solid(3, 5)
	s, hub, _ := newTestStepper()
	grounded := 0
	hub.On(event.PlayerTouchGround, func(ev event.Event) event.Result {
		g := ev.(event.GroundEvent)
		if g.TileX != 3 || g.TileY != 5 {
			t.Fatalf("ground event for tile (%d,%d)", g.TileX, g.TileY)
		}
		grounded++
		return event.Continue
	})

	p := newTestPlayer(100, 100)
	for i := 0; i < 200; i++ {
		s.Step(w, p, entity.Keys{})
	}
	if p.Y+p.Height != 5*30 {
		t.Fatalf("feet should rest exactly on row 5 top, got %g", p.Y+p.Height)
	}
	if !p.OnGround || p.VY != 0 {
		t.Fatalf("expected grounded with zero vy, got onGround=%v vy=%g", p.OnGround, p.VY)
	}
	if grounded == 0 {
		t.Fatalf("onPlayerTouchGround never fired")
	}
}

func TestHorizontalSnapIdempotent(t *testing.T) {
	cases := []struct {
		name   string
		wall   int
		startX float64
		key    string
		wantX  float64
		onWall func(p *entity.Player) bool
	}{
		{"right_wall", 10, 269, "d", 270, func(p *entity.Player) bool { return p.OnWallRight }},
		{"left_wall", 3, 122, "a", 120, func(p *entity.Player) bool { return p.OnWallLeft }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(20, 25)
			w.grid.Fill(0, 20, 19, 20, level.LayerForeground, 1)
			w.grid.Fill(c.wall, 0, c.wall, 19, level.LayerForeground, 1)
			s, _, _ := newTestStepper()
			p := newTestPlayer(c.startX, 20*30-30)
			keys := entity.Keys{c.key: true}

			s.Step(w, p, keys)
			if p.X != c.wantX {
				t.Fatalf("first step snapped to %g, want %g", p.X, c.wantX)
			}
			for i := 0; i < 10; i++ {
				s.Step(w, p, keys)
				if p.X != c.wantX || p.Y != 570 {
					t.Fatalf("step %d moved snapped player to (%g,%g)", i, p.X, p.Y)
				}
			}
			if !c.onWall(p) {
				t.Fatalf("expected wall contact flag")
			}
		})
	}
}

func TestWallHooks(t *testing.T) {
	w := newTestWorld(20, 25)
	w.grid.Fill(0, 20, 19, 20, level.LayerForeground, 1)
	w.grid.Fill(10, 0, 10, 19, level.LayerForeground, 1)
	s, hub, _ := newTestStepper()
	counts := map[event.Kind]int{}
	for _, k := range []event.Kind{event.PlayerTouchWallRight, event.PlayerStopTouchWallRight} {
		hub.On(k, func(ev event.Event) event.Result {
			counts[ev.Kind()]++
			return event.Continue
		})
	}

	p := newTestPlayer(270, 570)
	s.Step(w, p, entity.Keys{})
	if !p.OnWallRight || counts[event.PlayerTouchWallRight] != 1 {
		t.Fatalf("flush player should touch right wall, counts=%v", counts)
	}
	s.Step(w, p, entity.Keys{"a": true})
	s.Step(w, p, entity.Keys{"a": true})
	if p.OnWallRight {
		t.Fatalf("player moved away but still on wall")
	}
	if counts[event.PlayerStopTouchWallRight] != 1 {
		t.Fatalf("stop hook should fire exactly once on the transition, got %d", counts[event.PlayerStopTouchWallRight])
	}
}

func TestCancelWallLetsPlayerThrough(t *testing.T) {
	w := newTestWorld(20, 25)
	w.grid.Fill(0, 20, 19, 20, level.LayerForeground, 1)
	w.grid.Fill(10, 0, 10, 19, level.LayerForeground, 1)
	s, hub, _ := newTestStepper()
	hub.On(event.PrePlayerTouchWallRight, func(ev event.Event) event.Result {
		if ev.(event.WallEvent).TileX != 10 {
			t.Fatalf("unexpected wall tile %+v", ev)
		}
		return event.Cancel
	})
	p := newTestPlayer(269, 570)
	s.Step(w, p, entity.Keys{"d": true})
	if p.X != 272 || p.VX != 3 {
		t.Fatalf("canceled wall check should leave x=272 vx=3, got x=%g vx=%g", p.X, p.VX)
	}
}

func TestCeiling(t *testing.T) {
	cases := []struct {
		name   string
		cancel bool
	}{
		{"snaps", false},
		{"always_cancel_passes_through", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(20, 20)
			w.solid(3, 5)
			w.solid(4, 5)
			s, hub, cfg := newTestStepper()
			touched := 0
			hub.On(event.PrePlayerTouchCeiling, func(event.Event) event.Result {
				if c.cancel {
					return event.Cancel
				}
				return event.Continue
			})
			hub.On(event.PlayerTouchCeiling, func(event.Event) event.Result {
				touched++
				return event.Continue
			})

			p := newTestPlayer(100, 181)
			p.VY = -6
			s.Step(w, p, entity.Keys{})

			wantVY := -6 + cfg.GravityTiles*30
			if c.cancel {
				if p.VY != wantVY {
					t.Fatalf("canceled ceiling must keep vy=%g, got %g", wantVY, p.VY)
				}
				if p.Y >= 180 {
					t.Fatalf("player should pass the tile bottom, y=%g", p.Y)
				}
				if touched != 0 {
					t.Fatalf("onPlayerTouchCeiling must not fire when canceled")
				}
				return
			}
			if p.VY != 0 || p.Y != 180 || touched != 1 {
				t.Fatalf("expected snap to y=180 vy=0 touched=1, got y=%g vy=%g touched=%d", p.Y, p.VY, touched)
			}
		})
	}
}

func TestOneWayPlatform(t *testing.T) {
	cases := []struct {
		name      string
		drop      bool
		allowDrop any
		wantHeld  bool
	}{
		{"no_drop_key", false, true, true},
		{"drop_allowed", true, true, false},
		{"drop_not_allowed", true, false, true},
		{"drop_no_props", true, nil, true},
		{"drop_bad_value", true, "yes", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(20, 20)
			w.grid.Fill(3, 10, 4, 10, level.LayerForeground, level.TileOneWay)
			if c.allowDrop != nil {
				for _, col := range []int{3, 4} {
					w.props.Set(level.PropKey{X: col, Y: 10, Layer: level.LayerForeground}, level.Props{"allowDrop": c.allowDrop})
				}
			}
			s, _, _ := newTestStepper()
			p := newTestPlayer(100, 270)
			keys := entity.Keys{}
			if c.drop {
				keys.Press("s")
			}
			s.Step(w, p, keys)
			if p.OnGround != c.wantHeld {
				t.Fatalf("onGround = %v, want %v (y=%g)", p.OnGround, c.wantHeld, p.Y)
			}
			if c.wantHeld && p.Y != 270 {
				t.Fatalf("held player should snap to 270, got %g", p.Y)
			}
		})
	}
}

func TestOneWayPassFromBelow(t *testing.T) {
	w := newTestWorld(20, 20)
	w.grid.Fill(3, 10, 4, 10, level.LayerForeground, level.TileOneWay)
	s, _, _ := newTestStepper()
	p := newTestPlayer(100, 315)
	p.VY = -6
	s.Step(w, p, entity.Keys{})
	if p.VY >= 0 || p.Y >= 315 {
		t.Fatalf("rising player should pass through a one-way tile, y=%g vy=%g", p.Y, p.VY)
	}
}

func TestOneWaySnapsFeetInsideAtApex(t *testing.T) {
	w := newTestWorld(20, 20)
	w.grid.Fill(3, 10, 4, 10, level.LayerForeground, level.TileOneWay)
	s, _, _ := newTestStepper()
	// Top of a jump with the feet already 15px into the platform.
	p := newTestPlayer(100, 285)
	p.VY = 0
	s.Step(w, p, entity.Keys{})
	if !p.OnGround || p.Y != 270 || p.VY != 0 {
		t.Fatalf("player should be snapped on top, y=%g vy=%g onGround=%v", p.Y, p.VY, p.OnGround)
	}
}

func TestJump(t *testing.T) {
	w := newTestWorld(20, 20)
	w.grid.Fill(0, 10, 19, 10, level.LayerForeground, 1)
	s, hub, cfg := newTestStepper()
	jumps := 0
	hub.On(event.PlayerJump, func(event.Event) event.Result {
		jumps++
		return event.Continue
	})
	p := newTestPlayer(100, 270)
	s.Step(w, p, entity.Keys{"w": true})
	if p.VY != cfg.JumpTiles*30 || p.OnGround || jumps != 1 {
		t.Fatalf("expected jump vy=%g, got vy=%g onGround=%v jumps=%d", cfg.JumpTiles*30, p.VY, p.OnGround, jumps)
	}
	s.Step(w, p, entity.Keys{"w": true})
	if jumps != 1 {
		t.Fatalf("airborne player must not jump again")
	}
}

func TestBounce(t *testing.T) {
	cases := []struct {
		name     string
		tile     level.TileID
		props    level.Props
		strength float64
	}{
		{"builtin_default", level.TileBounce, nil, 1.2},
		{"builtin_overlay", level.TileBounce, level.Props{"jumpStrength": 1.5}, 1.5},
		{"custom_99_overlay", 99, level.Props{"jumpStrength": 2.0}, 2.0},
		{"custom_99_schema_default", 99, nil, 1.0},
		{"custom_99_invalid", 99, level.Props{"jumpStrength": "high"}, 1.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(20, 20)
			if err := w.reg.Register(&level.TileDef{ID: 99, Name: "spring", Properties: map[string]any{level.PropBounce: true}}); err != nil {
				t.Fatalf("Register: %v", err)
			}
			w.reg.RegisterSchema(99, []level.Field{{Key: "jumpStrength", Label: "Jump Strength", Type: level.FieldNumber, Default: 1.0}})
			w.grid.SetCell(3, 10, level.LayerForeground, c.tile)
			if c.props != nil {
				w.props.Set(level.PropKey{X: 3, Y: 10, Layer: level.LayerForeground}, c.props)
			}
			s, hub, cfg := newTestStepper()
			bounced := 0
			hub.On(event.PlayerBounce, func(event.Event) event.Result {
				bounced++
				return event.Continue
			})

			p := newTestPlayer(100, 270)
			s.Step(w, p, entity.Keys{})

			want := cfg.JumpTiles * 30 * c.strength
			if p.VY != want {
				t.Fatalf("vy = %g, want %g", p.VY, want)
			}
			if bounced != 1 || len(w.bounces) != 1 || w.bounces[0] != (bounceCall{3, 10, c.tile}) {
				t.Fatalf("expected one bounce at (3,10), events=%d calls=%v", bounced, w.bounces)
			}
		})
	}
}

func TestStepOrder(t *testing.T) {
	w := newTestWorld(20, 20)
	w.grid.Fill(0, 10, 19, 10, level.LayerForeground, 1)
	s, hub, _ := newTestStepper()
	var order []event.Kind
	for _, k := range []event.Kind{event.PostInput, event.PostPhysicsCollision, event.PlayerTouchGround, event.PlayerJump, event.PostSpecialPhysicsCollide} {
		hub.On(k, func(ev event.Event) event.Result {
			order = append(order, ev.Kind())
			return event.Continue
		})
	}
	s.Step(w, newTestPlayer(100, 270), entity.Keys{"w": true})
	want := []event.Kind{event.PostInput, event.PostPhysicsCollision, event.PlayerTouchGround, event.PlayerJump, event.PostSpecialPhysicsCollide}
	if len(order) != len(want) {
		t.Fatalf("hook order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hook order %v, want %v", order, want)
		}
	}
}

func TestPostInputOverridesVelocity(t *testing.T) {
	w := newTestWorld(20, 20)
	s, hub, _ := newTestStepper()
	hub.On(event.PostInput, func(ev event.Event) event.Result {
		ev.(event.InputEvent).Player.VX = 10
		return event.Continue
	})
	p := newTestPlayer(100, 100)
	s.Step(w, p, entity.Keys{})
	if p.X != 110 {
		t.Fatalf("onPostInput override should be applied this tick, x=%g", p.X)
	}
}
