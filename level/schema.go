package level

import (
	"math"
	"slices"
	"strconv"
)

type FieldType string

const (
	FieldNumber   FieldType = "number"
	FieldText     FieldType = "text"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
	FieldColor    FieldType = "color"
)

func (t FieldType) valid() bool {
	switch t {
	case FieldNumber, FieldText, FieldCheckbox, FieldSelect, FieldColor:
		return true
	}
	return false
}

// Field describes one editable per-instance property of a tile kind.
type Field struct {
	Key     string    `yaml:"key"`
	Label   string    `yaml:"label"`
	Type    FieldType `yaml:"type"`
	Default any       `yaml:"default"`
	Min     *float64  `yaml:"min,omitempty"`
	Max     *float64  `yaml:"max,omitempty"`
	Step    *float64  `yaml:"step,omitempty"`
	Options []string  `yaml:"options,omitempty"`
}

func floatPtr(f float64) *float64 {
	return &f
}

func builtinSchemas() map[TileID][]Field {
	return map[TileID][]Field{
		TileBounce: {{Key: "jumpStrength", Label: "Jump Strength", Type: FieldNumber, Default: 1.2, Min: floatPtr(0.1), Step: floatPtr(0.1)}},
		TileOneWay: {{Key: "allowDrop", Label: "Allow drop-through (S key)", Type: FieldCheckbox, Default: false}},
		TileText:   {{Key: "text", Label: "Text", Type: FieldText, Default: ""}},
	}
}

// RemoveSchema drops the schema for id, built-in ones included.
func (r *Registry) RemoveSchema(id TileID) bool {
	if _, ok := r.schemas[id]; !ok {
		return false
	}
	delete(r.schemas, id)
	return true
}

// RegisterSchema replaces the schema for id. Fields without key or label or
// with an unknown type are dropped with a warning. It returns the number of
// fields kept.
func (r *Registry) RegisterSchema(id TileID, fields []Field) int {
	kept := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == "" || f.Label == "" || !f.Type.valid() {
			r.logger.Printf("level: tile %d: dropping invalid schema field %q (type %q)", id, f.Key, f.Type)
			continue
		}
		f.Options = slices.Clone(f.Options)
		kept = append(kept, f)
	}
	r.schemas[id] = kept
	return len(kept)
}

// Schema returns a copy of the schema for id, or nil.
func (r *Registry) Schema(id TileID) []Field {
	fields, ok := r.schemas[id]
	if !ok {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.Options = slices.Clone(f.Options)
		out[i] = f
	}
	return out
}

func (r *Registry) field(id TileID, key string) (Field, bool) {
	for _, f := range r.schemas[id] {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// NumberOr resolves key from props, then the schema default, then fallback.
// Values of the wrong type or outside the field's range are ignored.
func (r *Registry) NumberOr(id TileID, props Props, key string, fallback float64) float64 {
	f, hasField := r.field(id, key)
	inRange := func(v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if hasField && f.Min != nil && v < *f.Min {
			return false
		}
		if hasField && f.Max != nil && v > *f.Max {
			return false
		}
		return true
	}
	if v, ok := toNumber(props[key]); ok && inRange(v) {
		return v
	}
	if hasField {
		if v, ok := toNumber(f.Default); ok && inRange(v) {
			return v
		}
	}
	return fallback
}

func (r *Registry) BoolOr(id TileID, props Props, key string, fallback bool) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	if f, ok := r.field(id, key); ok {
		if v, ok := f.Default.(bool); ok {
			return v
		}
	}
	return fallback
}

func (r *Registry) StringOr(id TileID, props Props, key string, fallback string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	if f, ok := r.field(id, key); ok {
		if v, ok := f.Default.(string); ok {
			return v
		}
	}
	return fallback
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
