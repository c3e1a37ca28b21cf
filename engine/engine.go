package engine

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/milk9111/systematic/camera"
	"github.com/milk9111/systematic/config"
	"github.com/milk9111/systematic/entity"
	"github.com/milk9111/systematic/event"
	"github.com/milk9111/systematic/fx"
	"github.com/milk9111/systematic/level"
	"github.com/milk9111/systematic/lighting"
	"github.com/milk9111/systematic/physics"
)

// Engine is the simulation context: every component reads and writes its
// state through it, and mods see it only through the methods in api.go.
// It is driven from a single goroutine.
type Engine struct {
	cfg    *config.Config
	logger *log.Logger

	hub       *event.Hub
	tiles     *level.Registry
	props     *level.Properties
	levels    *level.Levels
	animator  *level.Animator
	player    *entity.Player
	keys      entity.Keys
	lights    lighting.Lights
	particles *fx.System
	camera    *camera.Camera
	renderer  *lighting.Renderer
	stepper   *physics.Stepper
	metrics   *metrics

	mode     physics.Mode
	tileSize float64
	tick     int
	now      time.Duration
	started  bool
	stats    lighting.Stats
}

// New builds an engine around an empty grid of the configured size. A nil
// cfg uses config.Default and a nil logger uses log.Default.
func New(cfg *config.Config, logger *log.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	m := newMetrics()
	hub := event.NewHub(logger, m.reg)
	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		hub:       hub,
		tiles:     level.NewRegistry(logger),
		props:     level.NewProperties(),
		levels:    level.NewLevels(level.NewGrid(cfg.MapCols, cfg.MapRows)),
		animator:  level.NewAnimator(),
		player:    entity.NewPlayer(cfg.Spawn.X, cfg.Spawn.Y, cfg.SpriteDim),
		keys:      entity.Keys{},
		particles: fx.NewSystem(nil, uint64(time.Now().UnixNano())),
		camera:    camera.New(float64(cfg.MapCols)*cfg.TileSize, float64(cfg.MapRows)*cfg.TileSize, cfg.Camera.Lerp),
		renderer:  lighting.NewRenderer(cfg.Lighting),
		stepper:   physics.NewStepper(cfg.Physics, hub),
		metrics:   m,
		tileSize:  cfg.TileSize,
	}
	e.player.Resize(e.tileSize)
	e.updateWorldBounds()
	return e
}

func (e *Engine) Config() *config.Config { return e.cfg }
func (e *Engine) Logger() *log.Logger { return e.logger }
func (e *Engine) Hub() *event.Hub { return e.hub }
func (e *Engine) Tiles() *level.Registry { return e.tiles }
func (e *Engine) Player() *entity.Player { return e.player }
func (e *Engine) Keys() entity.Keys { return e.keys }
func (e *Engine) Camera() *camera.Camera { return e.camera }
func (e *Engine) Renderer() *lighting.Renderer { return e.renderer }
func (e *Engine) Particles() []fx.Particle { return e.particles.Particles() }
func (e *Engine) Grid() *level.Grid { return e.levels.Current() }
func (e *Engine) Mode() physics.Mode { return e.mode }
func (e *Engine) TileSize() float64 { return e.tileSize }
func (e *Engine) TickCount() int { return e.tick }
func (e *Engine) LightingStats() lighting.Stats { return e.stats }
func (e *Engine) Metrics() *prometheus.Registry { return e.metrics.reg }
func (e *Engine) View() camera.View { return e.camera.View() }
func (e *Engine) SpikeFrame() level.TileID { return level.SpikeFrame(e.tick, e.cfg.Animation.SpikeHold) }
func (e *Engine) LevelCount() int { return e.levels.Len() }
func (e *Engine) LevelAt(i int) *level.Grid { return e.levels.At(i) }
func (e *Engine) ScreenSize(w, h float64) { e.camera.SetScreenSize(w, h) }

// SetTileSize changes the pixel size of a tile. The player box follows on
// the next tick.
func (e *Engine) SetTileSize(ts float64) {
	if ts <= 0 {
		return
	}
	e.tileSize = ts
	e.updateWorldBounds()
}

func (e *Engine) updateWorldBounds() {
	g := e.levels.Current()
	e.camera.SetWorldBounds(float64(g.Cols())*e.tileSize, float64(g.Rows())*e.tileSize)
}

// SetMode switches between edit and play. Entering play respawns the
// player.
func (e *Engine) SetMode(m physics.Mode) {
	if m == e.mode {
		return
	}
	e.mode = m
	if m == physics.ModePlay {
		e.player.Reset(e.cfg.Spawn.X, e.cfg.Spawn.Y)
		e.player.Resize(e.tileSize)
	}
}

func (e *Engine) TogglePlay() physics.Mode {
	if e.mode == physics.ModePlay {
		e.SetMode(physics.ModeEdit)
	} else {
		e.SetMode(physics.ModePlay)
	}
	return e.mode
}

// Tick runs one frame. now is the monotonic frame time; the delta to the
// previous tick is clamped to MaxStep and only drives time-scaled effects.
func (e *Engine) Tick(now time.Duration) {
	start := time.Now()
	dt := 0.0
	if e.started {
		dt = min(max((now-e.now).Seconds(), 0), e.cfg.MaxStep)
	}
	e.now, e.started = now, true
	e.tick++

	e.hub.Trigger(event.InputEvent{Type: event.PreInput, Player: e.player, Keys: e.keys})

	e.particles.Update(dt)
	e.player.Resize(e.tileSize)

	if e.mode == physics.ModePlay {
		e.stepper.Step(world{e}, e.player, e.keys)
		p := e.player
		e.camera.Follow(p.X, p.Y, p.Width, p.Height)
	}
	e.animator.Update(e.levels.Current(), now)

	if e.mode == physics.ModePlay && e.cfg.Lighting.Enabled {
		e.renderLighting()
	}

	e.hub.Trigger(event.InputEvent{Type: event.Update, Player: e.player, Keys: e.keys})

	e.metrics.ticks.Inc()
	e.metrics.particles.Set(float64(e.particles.Len()))
	e.metrics.animations.Set(float64(e.animator.Len()))
	e.metrics.tickSeconds.Observe(time.Since(start).Seconds())
}

func (e *Engine) renderLighting() {
	e.stats = e.renderer.Render(lighting.Scene{
		View:      e.camera.View(),
		TileSize:  e.tileSize,
		Occluders: level.View{Grid: e.levels.Current(), Registry: e.tiles},
		Lights:    e.lights.All(),
	})
	e.metrics.lightsDrawn.Add(float64(e.stats.Drawn))
	e.metrics.lightsCulled.Add(float64(e.stats.Culled))
}

// world adapts the engine to physics.World.
type world struct {
	e *Engine
}

func (w world) TileSize() float64 { return w.e.tileSize }

func (w world) Cell(col, row, layer int) level.TileID {
	return w.e.levels.Current().Cell(col, row, layer)
}

func (w world) Props(col, row, layer int) level.Props {
	return w.e.props.Get(w.e.propKey(col, row, layer))
}

func (w world) Tiles() *level.Registry { return w.e.tiles }

func (w world) PlayBounce(col, row int, id level.TileID) {
	w.e.animator.Play(w.e.levels.Current(), level.LayerForeground, col, row, level.BounceSequence(id), w.e.cfg.Animation.BounceFPS, w.e.now)
}

func (e *Engine) propKey(x, y, layer int) level.PropKey {
	return level.PropKey{Level: e.levels.CurrentIndex(), X: x, Y: y, Layer: layer}
}
