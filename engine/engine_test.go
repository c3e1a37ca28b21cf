package engine

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/milk9111/systematic/config"
	"github.com/milk9111/systematic/event"
	"github.com/milk9111/systematic/fx"
	"github.com/milk9111/systematic/level"
	"github.com/milk9111/systematic/lighting"
	"github.com/milk9111/systematic/physics"
)

const frame = time.Second / 60

func newTestEngine(t *testing.T, lightingOn bool) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Lighting.Enabled = lightingOn
	e := New(cfg, log.New(&bytes.Buffer{}, "", 0))
	e.ScreenSize(300, 200)
	return e
}

func run(e *Engine, ticks int) {
	start := time.Duration(e.TickCount()) * frame
	for i := 0; i < ticks; i++ {
		e.Tick(start + time.Duration(i)*frame)
	}
}

func TestEndToEndFallOntoTile(t *testing.T) {
	e := newTestEngine(t, false)
	if e.Grid().Cols() != 60 || e.Grid().Rows() != 30 {
		t.Fatalf("expected a 60x30 grid, got %dx%d", e.Grid().Cols(), e.Grid().Rows())
	}
	e.SetTileAt(3, 5, level.LayerForeground, 1)
	if e.TogglePlay() != physics.ModePlay {
		t.Fatalf("TogglePlay should enter play mode")
	}
	run(e, 200)

	p := e.Player()
	if p.Y+p.Height != 150 || !p.OnGround {
		t.Fatalf("player should rest on row 5, got feet=%g onGround=%v", p.Y+p.Height, p.OnGround)
	}
}

func TestTickOrder(t *testing.T) {
	cases := []struct {
		name string
		mode physics.Mode
		want []event.Kind
	}{
		{"play", physics.ModePlay, []event.Kind{event.PreInput, event.PostInput, event.Update}},
		{"edit", physics.ModeEdit, []event.Kind{event.PreInput, event.Update}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := newTestEngine(t, false)
			e.SetMode(c.mode)
			var got []event.Kind
			for _, k := range []event.Kind{event.PreInput, event.PostInput, event.Update} {
				e.On(k, func(ev event.Event) event.Result {
					got = append(got, ev.Kind())
					return event.Continue
				})
			}
			e.Tick(0)
			if len(got) != len(c.want) {
				t.Fatalf("hooks %v, want %v", got, c.want)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("hooks %v, want %v", got, c.want)
				}
			}
		})
	}
}

func TestTogglePlayRespawns(t *testing.T) {
	e := newTestEngine(t, false)
	e.TogglePlay()
	run(e, 30)
	e.Player().VX = 5
	e.TogglePlay()
	if e.Mode() != physics.ModeEdit {
		t.Fatalf("expected edit mode")
	}
	e.TogglePlay()
	p := e.Player()
	if p.X != 100 || p.Y != 100 || p.VX != 0 || p.VY != 0 {
		t.Fatalf("entering play should respawn at (100,100) at rest, got %+v", p)
	}
}

func TestEditModeFreezesPlayer(t *testing.T) {
	e := newTestEngine(t, false)
	run(e, 10)
	if x, y := e.PlayerPosition(); x != 100 || y != 100 {
		t.Fatalf("player should not move in edit mode, got (%g,%g)", x, y)
	}
}

func TestCustomBounceTile(t *testing.T) {
	e := newTestEngine(t, false)
	if err := e.RegisterTile(&level.TileDef{ID: 99, Name: "spring", Properties: map[string]any{level.PropBounce: true}}); err != nil {
		t.Fatalf("RegisterTile: %v", err)
	}
	e.RegisterTilePropertySchema(99, []level.Field{{Key: "jumpStrength", Label: "Jump Strength", Type: level.FieldNumber, Default: 1.0}})
	e.SetTileAt(3, 10, level.LayerForeground, 99)
	e.SetTileProperties(3, 10, level.LayerForeground, level.Props{"jumpStrength": 2.0})

	e.TogglePlay()
	e.SetPlayerPosition(100, 270)
	e.Tick(0)

	want := e.Config().Physics.JumpTiles * 30 * 2.0
	if got := e.Player().VY; got != want {
		t.Fatalf("vy = %g, want %g", got, want)
	}
	if e.TileAt(3, 10, level.LayerForeground) != level.TileBounceB {
		t.Fatalf("bounce animation should show its first frame")
	}
	e.Tick(time.Second)
	if got := e.TileAt(3, 10, level.LayerForeground); got != 99 {
		t.Fatalf("bounce animation should settle back on the custom tile, got %d", got)
	}
}

func TestAnimateTileRetrigger(t *testing.T) {
	e := newTestEngine(t, false)
	frames := []level.TileID{5, 6, 7}
	if !e.AnimateTile(2, 2, level.LayerForeground, frames, 10) {
		t.Fatalf("first AnimateTile should start")
	}
	if e.AnimateTile(2, 2, level.LayerForeground, frames, 10) {
		t.Fatalf("second AnimateTile on the same cell must be a no-op")
	}
}

func TestLevelSwitchFinishesAnimations(t *testing.T) {
	e := newTestEngine(t, false)
	e.SetTileAt(3, 10, level.LayerForeground, level.TileBounce)
	e.TogglePlay()
	e.SetPlayerPosition(100, 270)
	e.Tick(0)
	if e.TileAt(3, 10, level.LayerForeground) != level.TileBounceB {
		t.Fatalf("bounce should be mid animation")
	}

	e.RegisterEmitter("dust", fx.Emitter{Max: 4, Lifetime: fx.Range{1, 1}})
	if !e.EmitParticles("dust", 100, 270) || len(e.Particles()) != 4 {
		t.Fatalf("expected 4 particles before the switch, got %d", len(e.Particles()))
	}

	next := e.AddLevel(level.NewGrid(10, 10))
	if !e.SetCurrentLevel(next) {
		t.Fatalf("SetCurrentLevel(%d) failed", next)
	}
	if n := len(e.Particles()); n != 0 {
		t.Fatalf("level switch kept %d particles", n)
	}
	e.Tick(time.Second)
	if got := e.LevelAt(0).Cell(3, 10, level.LayerForeground); got != level.TileBounce {
		t.Fatalf("left level kept frame %d, want %d", got, level.TileBounce)
	}
	if e.LevelAt(next).Cell(3, 10, level.LayerForeground) != level.TileEmpty {
		t.Fatalf("animation leaked into the new level")
	}

	e.SetCurrentLevel(0)
	if !e.Tiles().Bounce(e.TileAt(3, 10, level.LayerForeground)) {
		t.Fatalf("tile should bounce again after switching back")
	}

	t.Run("replace", func(t *testing.T) {
		old := e.Grid()
		if !e.AnimateTile(1, 1, level.LayerForeground, []level.TileID{5, 6, 7}, 10) {
			t.Fatalf("AnimateTile should start")
		}
		e.ReplaceLevel(e.CurrentLevel(), level.NewGrid(10, 10))
		if old.Cell(1, 1, level.LayerForeground) != 7 {
			t.Fatalf("replaced grid should hold the last frame")
		}
		if e.AnimateTile(1, 1, level.LayerForeground, []level.TileID{5}, 10) == false {
			t.Fatalf("animation should be free to start on the new grid")
		}
	})
}

func TestPlaceTileEvent(t *testing.T) {
	e := newTestEngine(t, false)
	var got event.TilePlacedEvent
	e.On(event.TilePlaced, func(ev event.Event) event.Result {
		got = ev.(event.TilePlacedEvent)
		return event.Continue
	})
	if !e.PlaceTile(4, 2, level.LayerForeground, 7) {
		t.Fatalf("PlaceTile in bounds should succeed")
	}
	if got.X != 120 || got.Y != 60 || got.Tile != 7 || got.Layer != level.LayerForeground {
		t.Fatalf("unexpected onTilePlaced payload %+v", got)
	}
	if e.PlaceTile(-1, 0, level.LayerForeground, 7) {
		t.Fatalf("PlaceTile out of bounds should fail")
	}
}

func TestTileUtilities(t *testing.T) {
	e := newTestEngine(t, false)
	e.FillRect(1, 1, 3, 2, level.LayerForeground, 9)
	if got := len(e.FindTiles(9, level.LayerForeground)); got != 6 {
		t.Fatalf("FillRect 3x2 should write 6 cells, found %d", got)
	}
	e.FillRect(0, 0, 0, 5, level.LayerForeground, 9)
	if got := len(e.FindTiles(9, level.LayerForeground)); got != 6 {
		t.Fatalf("zero-width FillRect should be a no-op")
	}
	count := 0
	e.ForEachTile(func(x, y, layer int, id level.TileID) {
		if id == 9 {
			count++
		}
	})
	if count != 6 {
		t.Fatalf("ForEachTile saw %d filled cells", count)
	}
	if e.TileAt(100, 100, level.LayerForeground) != level.TileEmpty {
		t.Fatalf("out of range TileAt should be empty")
	}
}

func TestPropertiesPerLevel(t *testing.T) {
	e := newTestEngine(t, false)
	e.SetTileProperties(1, 1, level.LayerForeground, level.Props{"text": "first"})
	i := e.AddLevel(level.NewGrid(10, 10))
	if !e.SetCurrentLevel(i) || e.CurrentLevel() != 1 {
		t.Fatalf("SetCurrentLevel failed")
	}
	if len(e.TileProperties(1, 1, level.LayerForeground)) != 0 {
		t.Fatalf("properties must be keyed per level")
	}
	if e.SetCurrentLevel(7) {
		t.Fatalf("out of range level should be rejected")
	}
	e.SetCurrentLevel(0)
	if e.TileProperties(1, 1, level.LayerForeground)["text"] != "first" {
		t.Fatalf("level 0 properties lost")
	}
}

func TestKeysAndMouseEvents(t *testing.T) {
	e := newTestEngine(t, false)
	var kinds []event.Kind
	for _, k := range []event.Kind{event.KeyDown, event.KeyUp, event.MouseDown, event.MouseUp} {
		e.On(k, func(ev event.Event) event.Result {
			kinds = append(kinds, ev.Kind())
			return event.Continue
		})
	}
	e.KeyDown("d")
	if !e.Keys().Right() {
		t.Fatalf("KeyDown should hold the key")
	}
	e.KeyUp("d")
	if e.Keys().Right() {
		t.Fatalf("KeyUp should release the key")
	}
	e.MouseDown(10, 20, 0)
	e.MouseUp(10, 20, 0)
	if len(kinds) != 4 {
		t.Fatalf("expected 4 input events, got %v", kinds)
	}
}

func TestParticlesUseClampedDelta(t *testing.T) {
	e := newTestEngine(t, false)
	e.RegisterEmitter("dust", fx.Emitter{Max: 1, Lifetime: fx.Range{10, 10}, VelX: fx.Range{60, 60}})
	e.Tick(0)
	e.EmitParticles("dust", 0, 0)
	e.Tick(5 * time.Second)
	ps := e.Particles()
	if len(ps) != 1 {
		t.Fatalf("expected one particle, got %d", len(ps))
	}
	want := 60 * e.Config().MaxStep
	if d := ps[0].X - want; d > 1e-9 || d < -1e-9 {
		t.Fatalf("long frame should be clamped, x=%g want %g", ps[0].X, want)
	}
}

func TestLightingRunsInPlay(t *testing.T) {
	e := newTestEngine(t, true)
	e.AddLight(lighting.Light{X: 150, Y: 100, Radius: 100, Intensity: 1})
	e.AddLight(lighting.Light{X: 5000, Y: 5000, Radius: 10, Intensity: 1})
	e.Tick(0)
	if e.Renderer().Lightmap() != nil {
		t.Fatalf("lighting should not run in edit mode")
	}
	e.TogglePlay()
	e.Tick(frame)
	st := e.LightingStats()
	if st.Drawn != 2 || st.Culled != 1 {
		t.Fatalf("expected player-area light and sun drawn, far light culled, got %+v", st)
	}
	if len(e.Lights()) != 2 {
		t.Fatalf("the sun must not be stored with mod lights")
	}
	e.ClearLights()
	if len(e.Lights()) != 0 {
		t.Fatalf("ClearLights should drop all lights")
	}
}

func TestMetricsGathered(t *testing.T) {
	e := newTestEngine(t, false)
	e.On(event.Update, func(event.Event) event.Result { return event.Continue })
	run(e, 3)

	mfs, err := e.Metrics().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				found[mf.GetName()] += c.GetValue()
			}
		}
	}
	if found["systematic_ticks_total"] != 3 {
		t.Fatalf("ticks_total = %g, want 3", found["systematic_ticks_total"])
	}
	if found["systematic_event_dispatched_total"] == 0 {
		t.Fatalf("hub counters should share the engine registry")
	}
}

func TestImportExportLevel(t *testing.T) {
	e := newTestEngine(t, false)
	e.SetTileAt(2, 3, level.LayerForeground, 27)
	data, err := e.ExportLevelJSON()
	if err != nil {
		t.Fatalf("ExportLevelJSON: %v", err)
	}

	e.SetTileAt(2, 3, level.LayerForeground, 0)
	if err := e.ImportLevelJSON([]byte(`[[[0]]]`)); err == nil {
		t.Fatalf("malformed level should be rejected")
	}
	if e.Grid().Cols() != 60 {
		t.Fatalf("failed import must keep the current level")
	}
	if err := e.ImportLevelJSON(data); err != nil {
		t.Fatalf("ImportLevelJSON: %v", err)
	}
	if e.TileAt(2, 3, level.LayerForeground) != 27 {
		t.Fatalf("imported level lost its tiles")
	}
}
