package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"strings"

	"github.com/milk9111/systematic/level"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

// Names lists the embedded levels without their .json extension.
func Names() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return names
}

// Load reads an embedded level by name, with or without extension.
func Load(name string) (*level.Grid, error) {
	if path.Ext(name) != ".json" {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	g, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("levels: load %s: %w", name, err)
	}
	return g, nil
}

// LoadFile reads a level from disk.
func LoadFile(filename string) (*level.Grid, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", filename, err)
	}
	g, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("levels: load %s: %w", filename, err)
	}
	return g, nil
}

// Decode parses the row-major [row][col][background, foreground] format.
// The level must be non-empty and rectangular and every cell a pair of
// non-negative integers.
func Decode(data []byte) (*level.Grid, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidLevel)
	}

	var cells [][]json.RawMessage
	for y, raw := range rows {
		var row []json.RawMessage
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("%w: row %d is not an array", ErrInvalidLevel, y)
		}
		if y > 0 && len(row) != len(cells[0]) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLevel, y, len(row), len(cells[0]))
		}
		cells = append(cells, row)
	}

	if len(cells[0]) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidLevel)
	}

	g := level.NewGrid(len(cells[0]), len(cells))
	for y, row := range cells {
		for x, raw := range row {
			var pair []any
			if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != level.LayerCount {
				return nil, fmt.Errorf("%w: cell (%d,%d) is not a pair", ErrInvalidLevel, x, y)
			}
			for layer, v := range pair {
				n, ok := v.(float64)
				if !ok {
					return nil, fmt.Errorf("%w: cell (%d,%d) layer %d is not a number", ErrInvalidLevel, x, y, layer)
				}
				if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
					return nil, fmt.Errorf("%w: cell (%d,%d) layer %d: %v is not a tile id", ErrInvalidLevel, x, y, layer, n)
				}
				g.SetCell(x, y, layer, level.TileID(n))
			}
		}
	}
	return g, nil
}

// Encode writes g in the format Decode reads.
func Encode(g *level.Grid) ([]byte, error) {
	out := make([][][level.LayerCount]level.TileID, g.Rows())
	for y := range out {
		out[y] = make([][level.LayerCount]level.TileID, g.Cols())
		for x := range out[y] {
			for layer := range level.LayerCount {
				out[y][x][layer] = g.Cell(x, y, layer)
			}
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("levels: encode: %w", err)
	}
	return data, nil
}
