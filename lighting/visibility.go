package lighting

import (
	"cmp"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
)

const angleEpsilon = 0.0001

// Intersect casts a ray from origin along dir against seg. It returns the
// hit point and ray parameter for hits with t > 0 inside the segment.
// Zero-length and parallel segments never hit.
func Intersect(origin, dir cp.Vector, seg Segment) (cp.Vector, float64, bool) {
	e := seg.B.Sub(seg.A)
	if e.LengthSq() == 0 {
		return cp.Vector{}, 0, false
	}
	denom := dir.Cross(e)
	if denom == 0 {
		return cp.Vector{}, 0, false
	}
	d := seg.A.Sub(origin)
	t := d.Cross(e) / denom
	u := d.Cross(dir) / denom
	if t <= 0 || u < 0 || u > 1 {
		return cp.Vector{}, 0, false
	}
	return origin.Add(dir.Mult(t)), t, true
}

type hit struct {
	p     cp.Vector
	angle float64
}

// Visibility returns the polygon of points reachable from l, ordered by
// angle. A square of half-size bound around the light closes the polygon
// where no geometry is hit.
func Visibility(l Light, segs []Segment, bound float64) []cp.Vector {
	o := l.pos()
	all := make([]Segment, 0, len(segs)+4)
	all = append(all, segs...)
	nw := cp.Vector{X: o.X - bound, Y: o.Y - bound}
	ne := cp.Vector{X: o.X + bound, Y: o.Y - bound}
	se := cp.Vector{X: o.X + bound, Y: o.Y + bound}
	sw := cp.Vector{X: o.X - bound, Y: o.Y + bound}
	all = append(all, Segment{nw, ne}, Segment{ne, se}, Segment{se, sw}, Segment{sw, nw})

	hits := make([]hit, 0, len(all)*6)
	for _, s := range all {
		for _, p := range [2]cp.Vector{s.A, s.B} {
			base := math.Atan2(p.Y-o.Y, p.X-o.X)
			for _, a := range [3]float64{base - angleEpsilon, base, base + angleEpsilon} {
				if h, ok := cast(o, a, all); ok {
					hits = append(hits, h)
				}
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(a.angle, b.angle) })

	poly := make([]cp.Vector, len(hits))
	for i, h := range hits {
		poly[i] = h.p
	}
	return poly
}

func cast(o cp.Vector, angle float64, segs []Segment) (hit, bool) {
	dir := cp.ForAngle(angle)
	best := math.Inf(1)
	var out hit
	for _, s := range segs {
		p, t, ok := Intersect(o, dir, s)
		if ok && t < best {
			best = t
			out = hit{p: p, angle: angle}
		}
	}
	return out, !math.IsInf(best, 1)
}
