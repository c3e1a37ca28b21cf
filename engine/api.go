package engine

import (
	"fmt"

	"github.com/milk9111/systematic/event"
	"github.com/milk9111/systematic/fx"
	"github.com/milk9111/systematic/level"
	"github.com/milk9111/systematic/levels"
	"github.com/milk9111/systematic/lighting"
)

// RegisterTile adds or replaces a tile definition.
func (e *Engine) RegisterTile(def *level.TileDef) error {
	if err := e.tiles.Register(def); err != nil {
		return fmt.Errorf("engine: register tile: %w", err)
	}
	return nil
}

func (e *Engine) RegisterTilePropertySchema(id level.TileID, fields []level.Field) int {
	return e.tiles.RegisterSchema(id, fields)
}

func (e *Engine) TilePropertySchema(id level.TileID) []level.Field {
	return e.tiles.Schema(id)
}

func (e *Engine) RemoveTilePropertySchema(id level.TileID) bool {
	return e.tiles.RemoveSchema(id)
}

func (e *Engine) TileDef(id level.TileID) (level.TileDef, bool) {
	return e.tiles.Def(id)
}

func (e *Engine) On(kind event.Kind, fn event.Listener) (event.ID, func()) {
	return e.hub.On(kind, fn)
}

func (e *Engine) Off(kind event.Kind, id event.ID) bool {
	return e.hub.Off(kind, id)
}

func (e *Engine) Trigger(ev event.Event) {
	e.hub.Trigger(ev)
}

func (e *Engine) TriggerCancelable(ev event.Event) bool {
	return e.hub.TriggerCancelable(ev)
}

func (e *Engine) AddLight(l lighting.Light) lighting.Light {
	return e.lights.Add(l)
}

func (e *Engine) RemoveLight(id string) bool {
	return e.lights.Remove(id)
}

func (e *Engine) MoveLight(id string, x, y float64) bool {
	return e.lights.Move(id, x, y)
}

func (e *Engine) ClearLights() {
	e.lights.Clear()
}

func (e *Engine) Lights() []lighting.Light {
	return e.lights.All()
}

func (e *Engine) PlayerPosition() (float64, float64) {
	return e.player.X, e.player.Y
}

func (e *Engine) SetPlayerPosition(x, y float64) {
	e.player.X, e.player.Y = x, y
}

// TileAt reads the current level. Out of range coordinates read as empty.
func (e *Engine) TileAt(x, y, layer int) level.TileID {
	return e.levels.Current().Cell(x, y, layer)
}

func (e *Engine) SetTileAt(x, y, layer int, id level.TileID) bool {
	return e.levels.Current().SetCell(x, y, layer, id)
}

// TileProperties returns a copy of the overlay bag for a cell of the
// current level.
func (e *Engine) TileProperties(x, y, layer int) level.Props {
	return e.props.Get(e.propKey(x, y, layer))
}

func (e *Engine) SetTileProperties(x, y, layer int, props level.Props) {
	e.props.Set(e.propKey(x, y, layer), props)
}

func (e *Engine) FindTiles(id level.TileID, layer int) [][2]int {
	return e.levels.Current().Find(id, layer)
}

// FillRect writes id into the w x h cells starting at (x,y).
func (e *Engine) FillRect(x, y, w, h, layer int, id level.TileID) {
	if w <= 0 || h <= 0 {
		return
	}
	e.levels.Current().Fill(x, y, x+w-1, y+h-1, layer, id)
}

func (e *Engine) ForEachTile(fn func(x, y, layer int, id level.TileID)) {
	e.levels.Current().Each(fn)
}

func (e *Engine) CurrentLevel() int {
	return e.levels.CurrentIndex()
}

// SetCurrentLevel switches levels. Running tile animations are finished on
// the level being left.
func (e *Engine) SetCurrentLevel(i int) bool {
	prev := e.levels.Current()
	if !e.levels.Select(i) {
		return false
	}
	e.leaveLevel(prev)
	return true
}

// leaveLevel settles prev once it stops being the current level: running
// animations write their last frame into it and live particles are dropped.
func (e *Engine) leaveLevel(prev *level.Grid) {
	e.animator.Finish(prev)
	e.particles.Clear()
	e.updateWorldBounds()
}

// AddLevel appends g and returns its index.
func (e *Engine) AddLevel(g *level.Grid) int {
	return e.levels.Add(g)
}

// ReplaceLevel swaps the grid at index i. Replacing the current level
// settles the old grid like a level switch.
func (e *Engine) ReplaceLevel(i int, g *level.Grid) bool {
	prev := e.levels.At(i)
	if !e.levels.Replace(i, g) {
		return false
	}
	if i == e.levels.CurrentIndex() {
		e.leaveLevel(prev)
	}
	return true
}

// PlaceTile is an edit: it writes the cell and fires onTilePlaced with the
// tile's world pixel position.
func (e *Engine) PlaceTile(x, y, layer int, id level.TileID) bool {
	if !e.levels.Current().SetCell(x, y, layer, id) {
		return false
	}
	e.hub.Trigger(event.TilePlacedEvent{
		X:     float64(x) * e.tileSize,
		Y:     float64(y) * e.tileSize,
		Layer: layer,
		Tile:  id,
	})
	return true
}

func (e *Engine) KeyDown(name string) {
	e.keys.Press(name)
	e.hub.Trigger(event.KeyEvent{Type: event.KeyDown, Key: name})
}

func (e *Engine) KeyUp(name string) {
	e.keys.Release(name)
	e.hub.Trigger(event.KeyEvent{Type: event.KeyUp, Key: name})
}

func (e *Engine) MouseDown(x, y float64, button int) {
	e.hub.Trigger(event.MouseEvent{Type: event.MouseDown, X: x, Y: y, Button: button})
}

func (e *Engine) MouseUp(x, y float64, button int) {
	e.hub.Trigger(event.MouseEvent{Type: event.MouseUp, X: x, Y: y, Button: button})
}

func (e *Engine) RegisterEmitter(name string, em fx.Emitter) {
	e.particles.Register(name, em)
}

func (e *Engine) EmitParticles(name string, x, y float64) bool {
	return e.particles.Emit(name, x, y)
}

// AnimateTile plays frames on a cell of the current level. It is a no-op
// while another animation runs on that cell.
func (e *Engine) AnimateTile(x, y, layer int, frames []level.TileID, fps float64) bool {
	return e.animator.Play(e.levels.Current(), layer, x, y, frames, fps, e.now)
}

// UnregisterTile drops a custom tile definition and its schema. Grid cells
// holding the id are left alone.
func (e *Engine) UnregisterTile(id level.TileID) bool {
	return e.tiles.Unregister(id)
}

func (e *Engine) UnregisterEmitter(name string) {
	e.particles.Unregister(name)
}

// ImportLevelJSON replaces the current level with an encoded one. Invalid
// data leaves the level untouched.
func (e *Engine) ImportLevelJSON(data []byte) error {
	g, err := levels.Decode(data)
	if err != nil {
		return fmt.Errorf("engine: import level: %w", err)
	}
	e.ReplaceLevel(e.levels.CurrentIndex(), g)
	return nil
}

func (e *Engine) ExportLevelJSON() ([]byte, error) {
	return levels.Encode(e.levels.Current())
}
