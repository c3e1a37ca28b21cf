package level

import (
	"fmt"
	"maps"
)

// Props is the per-instance property bag of one placed tile.
type Props map[string]any

func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	return maps.Clone(p)
}

type PropKey struct {
	Level int
	X     int
	Y     int
	Layer int
}

func (k PropKey) String() string {
	return fmt.Sprintf("%d-%d-%d-%d", k.Level, k.X, k.Y, k.Layer)
}

// Properties is the overlay of per-instance values. Entries survive tile
// replacement; removal is always explicit.
type Properties struct {
	entries map[PropKey]Props
}

func NewProperties() *Properties {
	return &Properties{entries: make(map[PropKey]Props)}
}

// Get returns a copy of the stored bag, or an empty bag.
func (p *Properties) Get(k PropKey) Props {
	if p == nil {
		return Props{}
	}
	return p.entries[k].Clone()
}

// Set stores a copy of props, replacing any previous bag.
func (p *Properties) Set(k PropKey, props Props) {
	if p == nil {
		return
	}
	p.entries[k] = props.Clone()
}
