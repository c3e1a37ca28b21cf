package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/systematic/common"
	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/level"
	"github.com/milk9111/systematic/mod"
	"github.com/milk9111/systematic/physics"
	"github.com/milk9111/systematic/render"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	panSpeed = 8
)

// multiplyBlend darkens the destination by the source colour.
var multiplyBlend = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

type Game struct {
	eng     *engine.Engine
	mods    *mod.Loader
	watcher *mod.Watcher
	modsDir string

	start  time.Time
	paused bool
	quit   bool

	ui      *ebitenui.UI
	modeBtn *widget.Button

	pal   render.Palette
	rects []render.Rect
	face  ebtext.Face
	keys  []ebiten.Key

	brush level.TileID
	layer int

	lightImg *ebiten.Image
	glowImg  *ebiten.Image
}

func NewGame(eng *engine.Engine, loader *mod.Loader, watcher *mod.Watcher, modsDir string) *Game {
	eng.ScreenSize(baseWidth, baseHeight)
	g := &Game{
		eng:     eng,
		mods:    loader,
		watcher: watcher,
		modsDir: modsDir,
		start:   time.Now(),
		pal:     render.NewPalette(eng.Config().Palette),
		face:    ebtext.NewGoXFace(basicfont.Face7x13),
		brush:   1,
		layer:   level.LayerForeground,
	}
	g.ui = NewModeUI(g)
	return g
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
		g.updateModeLabel()
	}
	if g.paused {
		g.ui.Update()
		return nil
	}

	g.reloadMods()
	g.pollKeys()
	if g.eng.Mode() == physics.ModeEdit {
		g.updateEditor()
	}
	g.pollMouse()

	g.eng.Tick(time.Since(g.start))
	return nil
}

func (g *Game) togglePlay() {
	g.eng.TogglePlay()
	g.updateModeLabel()
}

// keyName converts to the names mods see: lower-case letters, " " for the
// space bar and ebiten's names for everything else.
func keyName(k ebiten.Key) string {
	s := k.String()
	switch {
	case k == ebiten.KeySpace:
		return " "
	case len(s) == 1:
		return strings.ToLower(s)
	}
	return s
}

func (g *Game) pollKeys() {
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if k == ebiten.KeyEscape {
			continue
		}
		if k == ebiten.KeyTab {
			g.togglePlay()
		}
		g.eng.KeyDown(keyName(k))
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		if k == ebiten.KeyEscape {
			continue
		}
		g.eng.KeyUp(keyName(k))
	}
}

func (g *Game) updateEditor() {
	keys := g.eng.Keys()
	var dx, dy float64
	if keys.Left() {
		dx -= panSpeed
	}
	if keys.Right() {
		dx += panSpeed
	}
	if keys.Up() {
		dy -= panSpeed
	}
	if keys.Drop() {
		dy += panSpeed
	}
	if dx != 0 || dy != 0 {
		g.eng.Camera().Pan(dx, dy)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.brush = g.nextBrush(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.brush = g.nextBrush(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.layer = 1 - g.layer
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.saveLevel()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.loadSavedLevel()
	}
}

// savedLevelPath is where F2 writes the current level and F3 reads it back.
func (g *Game) savedLevelPath() string {
	return fmt.Sprintf("level%d.json", g.eng.CurrentLevel())
}

func (g *Game) saveLevel() {
	data, err := g.eng.ExportLevelJSON()
	if err != nil {
		g.eng.Logger().Printf("editor: export level: %v", err)
		return
	}
	path := g.savedLevelPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		g.eng.Logger().Printf("editor: save %s: %v", path, err)
		return
	}
	g.eng.Logger().Printf("editor: saved %s", path)
}

func (g *Game) loadSavedLevel() {
	path := g.savedLevelPath()
	data, err := os.ReadFile(path)
	if err != nil {
		g.eng.Logger().Printf("editor: load %s: %v", path, err)
		return
	}
	if err := g.eng.ImportLevelJSON(data); err != nil {
		g.eng.Logger().Printf("editor: %v", err)
	}
}

// nextBrush steps through the built-in ids and the registered custom ids.
func (g *Game) nextBrush(step int) level.TileID {
	ids := make([]level.TileID, 0, int(level.TileText)+8)
	for id := level.TileID(1); id <= level.TileText; id++ {
		ids = append(ids, id)
	}
	ids = append(ids, g.eng.Tiles().CustomIDs()...)
	i := slices.Index(ids, g.brush)
	if i < 0 {
		return ids[0]
	}
	return ids[(i+step+len(ids))%len(ids)]
}

func (g *Game) cursorWorld() (float64, float64) {
	mx, my := ebiten.CursorPosition()
	view := g.eng.View()
	return float64(mx) + view.X, float64(my) + view.Y
}

func (g *Game) pollMouse() {
	wx, wy := g.cursorWorld()
	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight} {
		if inpututil.IsMouseButtonJustPressed(b) {
			g.eng.MouseDown(wx, wy, int(b))
		}
		if inpututil.IsMouseButtonJustReleased(b) {
			g.eng.MouseUp(wx, wy, int(b))
		}
	}

	if g.eng.Mode() != physics.ModeEdit {
		return
	}
	var id level.TileID
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		id = g.brush
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		id = level.TileEmpty
	default:
		return
	}
	ts := g.eng.TileSize()
	col, row := common.FloorDiv(wx, ts), common.FloorDiv(wy, ts)
	if g.eng.TileAt(col, row, g.layer) != id {
		g.eng.PlaceTile(col, row, g.layer, id)
	}
}

// reloadMods applies file changes reported since the last frame.
func (g *Game) reloadMods() {
	if g.watcher == nil {
		return
	}
	select {
	case err, ok := <-g.watcher.Errors:
		if ok {
			g.eng.Logger().Printf("mods: watch: %v", err)
		}
	default:
	}

	var changed []string
	for _, p := range g.watcher.Drain() {
		if name, ok := g.mods.ModForPath(p); ok {
			if !slices.Contains(changed, name) {
				changed = append(changed, name)
			}
			continue
		}
		// A manifest appearing in a new directory of the mods root is a new mod.
		dir := filepath.Dir(p)
		if filepath.Base(p) != mod.ManifestFile || !sameDir(filepath.Dir(dir), g.modsDir) {
			continue
		}
		if _, err := g.mods.LoadDir(dir); err != nil {
			g.eng.Logger().Printf("mods: load %s: %v", dir, err)
		}
	}
	for _, name := range changed {
		if err := g.mods.Reload(name); err != nil {
			g.eng.Logger().Printf("mods: reload %s: %v", name, err)
		}
	}
}

func sameDir(a, b string) bool {
	a, errA := filepath.Abs(a)
	b, errB := filepath.Abs(b)
	return errA == nil && errB == nil && a == b
}

// reloadAll re-reads every loaded mod.
func (g *Game) reloadAll() {
	for _, name := range g.mods.Names() {
		if err := g.mods.Reload(name); err != nil {
			g.eng.Logger().Printf("mods: reload %s: %v", name, err)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.pal.Sky())

	g.rects = render.Frame(g.rects[:0], g.eng, g.pal)
	for _, r := range g.rects {
		vector.FillRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), r.Color, false)
		if r.Text != "" {
			op := &ebtext.DrawOptions{}
			op.GeoM.Translate(r.X+r.W/2, r.Y+r.H/2)
			op.PrimaryAlign = ebtext.AlignCenter
			op.SecondaryAlign = ebtext.AlignCenter
			op.ColorScale.ScaleWithColor(color.White)
			ebtext.Draw(screen, r.Text, g.face, op)
		}
	}

	if g.eng.Mode() == physics.ModePlay && g.eng.Config().Lighting.Enabled {
		g.drawLighting(screen)
	}

	if g.eng.Mode() == physics.ModeEdit {
		g.drawCursor(screen)
	}

	p := g.eng.Player()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.2f  mode: %s  brush: %d  layer: %d  mods: %d\nplayer: %.1f,%.1f  v: %.2f,%.2f  ground: %v  lights: %d/%d",
		ebiten.ActualFPS(), g.eng.Mode(), g.brush, g.layer, len(g.mods.Names()),
		p.X, p.Y, p.VX, p.VY, p.OnGround, g.eng.LightingStats().Drawn, g.eng.LightingStats().Culled,
	))

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) drawCursor(screen *ebiten.Image) {
	wx, wy := g.cursorWorld()
	ts := g.eng.TileSize()
	view := g.eng.View()
	x := float64(common.FloorDiv(wx, ts))*ts - view.X
	y := float64(common.FloorDiv(wy, ts))*ts - view.Y
	vector.StrokeRect(screen, float32(x), float32(y), float32(ts), float32(ts), 1, g.pal.Tile(g.brush, level.LayerForeground), false)
}

// drawLighting uploads the CPU lightmap and reflection layer and blends them
// over the scene: a multiply pass, a bloom pass and the additive glow.
func (g *Game) drawLighting(screen *ebiten.Image) {
	r := g.eng.Renderer()
	lm, glow := r.Lightmap(), r.Glow()
	if lm == nil || glow == nil {
		return
	}
	g.lightImg = fitImage(g.lightImg, lm.Bounds())
	g.lightImg.WritePixels(lm.Pix)
	g.glowImg = fitImage(g.glowImg, glow.Bounds())
	g.glowImg.WritePixels(glow.Pix)

	cfg := g.eng.Config().Lighting
	scale := 1 / r.Scale()
	draw := func(img *ebiten.Image, blend ebiten.Blend, alpha float64) {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.Filter = ebiten.FilterLinear
		op.Blend = blend
		op.ColorScale.ScaleAlpha(float32(alpha))
		screen.DrawImage(img, op)
	}
	draw(g.lightImg, multiplyBlend, cfg.MultiplyAlpha)
	draw(g.lightImg, ebiten.BlendLighter, cfg.BloomAlpha)
	draw(g.glowImg, ebiten.BlendLighter, 1)
}

func fitImage(img *ebiten.Image, b image.Rectangle) *ebiten.Image {
	if img != nil && img.Bounds().Size() == b.Size() {
		return img
	}
	if img != nil {
		img.Deallocate()
	}
	return ebiten.NewImage(b.Dx(), b.Dy())
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
