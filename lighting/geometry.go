package lighting

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/systematic/camera"
)

// Segment is a shadow-casting edge in world pixels.
type Segment struct {
	A, B cp.Vector
}

// Occluders answers which grid cells cast shadows.
type Occluders interface {
	Opaque(col, row int) bool
	Cols() int
	Rows() int
}

// Geometry returns the exposed edges of opaque cells within buffer pixels
// of the view. Edges shared by two opaque cells are omitted.
func Geometry(occ Occluders, v camera.View, tileSize, buffer float64) []Segment {
	if occ == nil || tileSize <= 0 {
		return nil
	}
	startCol := max(0, int(math.Floor((v.X-buffer)/tileSize)))
	endCol := min(occ.Cols(), int(math.Ceil((v.X+v.W+buffer)/tileSize)))
	startRow := max(0, int(math.Floor((v.Y-buffer)/tileSize)))
	endRow := min(occ.Rows(), int(math.Ceil((v.Y+v.H+buffer)/tileSize)))

	var segs []Segment
	for y := startRow; y < endRow; y++ {
		for x := startCol; x < endCol; x++ {
			if !occ.Opaque(x, y) {
				continue
			}
			wx, wy := float64(x)*tileSize, float64(y)*tileSize
			tl := cp.Vector{X: wx, Y: wy}
			tr := cp.Vector{X: wx + tileSize, Y: wy}
			br := cp.Vector{X: wx + tileSize, Y: wy + tileSize}
			bl := cp.Vector{X: wx, Y: wy + tileSize}
			if !occ.Opaque(x, y-1) {
				segs = append(segs, Segment{tl, tr})
			}
			if !occ.Opaque(x+1, y) {
				segs = append(segs, Segment{tr, br})
			}
			if !occ.Opaque(x, y+1) {
				segs = append(segs, Segment{br, bl})
			}
			if !occ.Opaque(x-1, y) {
				segs = append(segs, Segment{bl, tl})
			}
		}
	}
	return segs
}
