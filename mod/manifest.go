package mod

import (
	"errors"
	"fmt"
	"image/color"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/systematic/common"
	"github.com/milk9111/systematic/fx"
	"github.com/milk9111/systematic/level"
)

const ManifestFile = "mod.yaml"

var ErrInvalidManifest = errors.New("mod: invalid manifest")

// Manifest is the mod.yaml at the root of a mod directory.
type Manifest struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Scripts     []string               `yaml:"scripts"`
	Tiles       []TileSpec             `yaml:"tiles"`
	Emitters    map[string]EmitterSpec `yaml:"emitters"`
}

type TileSpec struct {
	ID         int            `yaml:"id"`
	Name       string         `yaml:"name"`
	Category   string         `yaml:"category"`
	Sprite     [][]int        `yaml:"sprite"`
	Properties map[string]any `yaml:"properties"`
	Schema     []level.Field  `yaml:"schema"`
}

func (t TileSpec) def() *level.TileDef {
	return &level.TileDef{
		ID:         level.TileID(t.ID),
		Name:       t.Name,
		Category:   t.Category,
		Sprite:     t.Sprite,
		Properties: t.Properties,
	}
}

type EmitterSpec struct {
	fx.Emitter `yaml:",inline"`
	Colors     []string `yaml:"colors"`
}

func (s EmitterSpec) emitter() fx.Emitter {
	e := s.Emitter
	e.Colors = make([]color.RGBA, 0, len(s.Colors))
	for _, c := range s.Colors {
		if rgba, ok := common.ParseColor(c); ok {
			e.Colors = append(e.Colors, rgba)
		}
	}
	return e
}

// ParseManifest decodes and validates a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mod: unmarshal %s: %w", ManifestFile, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidManifest)
	}
	seen := make(map[int]bool, len(m.Tiles))
	for _, t := range m.Tiles {
		switch {
		case t.ID <= 0:
			return fmt.Errorf("%w: %s: tile %q has no id", ErrInvalidManifest, m.Name, t.Name)
		case t.ID < int(level.FirstCustomTile):
			return fmt.Errorf("%w: %s: tile id %d is reserved", ErrInvalidManifest, m.Name, t.ID)
		case seen[t.ID]:
			return fmt.Errorf("%w: %s: tile id %d declared twice", ErrInvalidManifest, m.Name, t.ID)
		}
		seen[t.ID] = true
	}
	for _, s := range m.Scripts {
		if path.Ext(s) != ".tengo" {
			return fmt.Errorf("%w: %s: script %q is not a .tengo file", ErrInvalidManifest, m.Name, s)
		}
	}
	return nil
}
