package common

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/colornames"
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FloorDiv maps a world pixel coordinate to its tile index.
func FloorDiv(v, size float64) int {
	if size <= 0 {
		return 0
	}
	return int(math.Floor(v / size))
}

// ParseColor accepts #rrggbb, #rgb or a CSS color name. ok is false when the
// value could not be parsed; the returned color is then opaque white.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			var r, g, b uint32
			if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err == nil {
				return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, true
			}
		}
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, true
	}
	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false
}
