package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	TileSize  float64 `yaml:"tile_size"`
	SpriteDim int     `yaml:"sprite_dim"`
	MapCols   int     `yaml:"map_cols"`
	MapRows   int     `yaml:"map_rows"`
	// MaxStep caps the per-tick delta in seconds.
	MaxStep float64 `yaml:"max_step"`

	Spawn     Point     `yaml:"spawn"`
	Physics   Physics   `yaml:"physics"`
	Camera    Camera    `yaml:"camera"`
	Animation Animation `yaml:"animation"`
	Lighting  Lighting  `yaml:"lighting"`
	Palette   []string  `yaml:"palette"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Physics constants are expressed in tiles per tick and scaled by the
// current tile size when a step runs.
type Physics struct {
	GravityTiles     float64 `yaml:"gravity_tiles"`
	JumpTiles        float64 `yaml:"jump_tiles"`
	MoveTiles        float64 `yaml:"move_tiles"`
	BounceMultiplier float64 `yaml:"bounce_multiplier"`
	SampleInset      float64 `yaml:"sample_inset"`
}

type Camera struct {
	Lerp float64 `yaml:"lerp"`
}

type Animation struct {
	SpikeHold int     `yaml:"spike_hold"`
	BounceFPS float64 `yaml:"bounce_fps"`
}

type Lighting struct {
	Enabled            bool    `yaml:"enabled"`
	Scale              float64 `yaml:"scale"`
	Ambient            float64 `yaml:"ambient"`
	GeometryBuffer     float64 `yaml:"geometry_buffer"`
	VisibilityBound    float64 `yaml:"visibility_bound"`
	MultiplyAlpha      float64 `yaml:"multiply_alpha"`
	BloomAlpha         float64 `yaml:"bloom_alpha"`
	ReflectionWidth    float64 `yaml:"reflection_width"`
	ReflectionStrength float64 `yaml:"reflection_strength"`
	Sun                Sun     `yaml:"sun"`
}

type Sun struct {
	Offset    float64 `yaml:"offset"`
	Radius    float64 `yaml:"radius"`
	Color     string  `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
}

// Default returns the embedded defaults. It panics if the embedded file is
// broken, which only happens when default.yaml itself is edited badly.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return &cfg
}

// Load reads path and overlays it onto the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile_size %g", ErrInvalid, c.TileSize)
	case c.SpriteDim <= 0:
		return fmt.Errorf("%w: sprite_dim %d", ErrInvalid, c.SpriteDim)
	case c.MapCols <= 0 || c.MapRows <= 0:
		return fmt.Errorf("%w: map size %dx%d", ErrInvalid, c.MapCols, c.MapRows)
	case c.MaxStep <= 0:
		return fmt.Errorf("%w: max_step %g", ErrInvalid, c.MaxStep)
	case c.Lighting.Scale <= 0 || c.Lighting.Scale > 1:
		return fmt.Errorf("%w: lighting.scale %g", ErrInvalid, c.Lighting.Scale)
	case c.Lighting.Ambient < 0 || c.Lighting.Ambient > 1:
		return fmt.Errorf("%w: lighting.ambient %g", ErrInvalid, c.Lighting.Ambient)
	case c.Animation.SpikeHold <= 0:
		return fmt.Errorf("%w: animation.spike_hold %d", ErrInvalid, c.Animation.SpikeHold)
	}
	return nil
}
