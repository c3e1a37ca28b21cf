package level

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
)

var (
	ErrNilTile  = errors.New("level: tile definition is nil")
	ErrNoTileID = errors.New("level: tile definition has no id")
)

// TileDef is a registered tile kind. Sprite holds palette indices, -1 is
// transparent.
type TileDef struct {
	ID         TileID
	Name       string
	Category   string
	Sprite     [][]int
	Properties map[string]any
}

func (d TileDef) clone() TileDef {
	out := d
	out.Properties = maps.Clone(d.Properties)
	if d.Sprite != nil {
		out.Sprite = make([][]int, len(d.Sprite))
		for i, row := range d.Sprite {
			out.Sprite[i] = slices.Clone(row)
		}
	}
	return out
}

func (d TileDef) flag(key string) bool {
	v, ok := d.Properties[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Registry holds tile definitions and their property schemas.
type Registry struct {
	defs    map[TileID]TileDef
	order   []TileID
	schemas map[TileID][]Field
	logger  *log.Logger
}

// NewRegistry returns a registry seeded with the built-in schemas. A nil
// logger falls back to log.Default().
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{
		defs:    make(map[TileID]TileDef),
		schemas: make(map[TileID][]Field),
		logger:  logger,
	}
	for id, fields := range builtinSchemas() {
		r.schemas[id] = fields
	}
	return r
}

// Register adds or replaces a definition. Replacing an existing ID logs a
// warning; the later definition wins.
func (r *Registry) Register(def *TileDef) error {
	if def == nil {
		return ErrNilTile
	}
	if def.ID == TileEmpty {
		return fmt.Errorf("%w: %q", ErrNoTileID, def.Name)
	}
	if _, exists := r.defs[def.ID]; exists {
		r.logger.Printf("level: tile %d already registered, overwriting", def.ID)
	} else {
		r.order = append(r.order, def.ID)
	}
	r.defs[def.ID] = def.clone()
	return nil
}

// Unregister drops a definition and its schema.
func (r *Registry) Unregister(id TileID) bool {
	if _, ok := r.defs[id]; !ok {
		return false
	}
	delete(r.defs, id)
	delete(r.schemas, id)
	r.order = slices.DeleteFunc(r.order, func(v TileID) bool { return v == id })
	return true
}

// Def returns a copy of the definition for id.
func (r *Registry) Def(id TileID) (TileDef, bool) {
	d, ok := r.defs[id]
	if !ok {
		return TileDef{}, false
	}
	return d.clone(), true
}

// CustomIDs lists registered IDs in registration order.
func (r *Registry) CustomIDs() []TileID {
	return slices.Clone(r.order)
}

// OpaqueForLight reports whether id casts shadows, honouring the
// TRANSPARENT definition property.
func (r *Registry) OpaqueForLight(id TileID) bool {
	if !IsOpaqueForLight(id) {
		return false
	}
	if d, ok := r.defs[id]; ok && d.flag(PropTransparent) {
		return false
	}
	return true
}

func (r *Registry) OneWay(id TileID) bool {
	if id == TileOneWay {
		return true
	}
	d, ok := r.defs[id]
	return ok && d.flag(PropOneWay)
}

func (r *Registry) SolidForCollision(id TileID) bool {
	return id != TileEmpty && !r.OneWay(id)
}

func (r *Registry) Bounce(id TileID) bool {
	if id == TileBounce {
		return true
	}
	d, ok := r.defs[id]
	return ok && d.flag(PropBounce)
}
