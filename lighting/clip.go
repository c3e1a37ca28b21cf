package lighting

import "github.com/jakecoffman/cp"

// clipRect clips a polygon to [0,w]x[0,h] (Sutherland-Hodgman).
func clipRect(poly []cp.Vector, w, h float64) []cp.Vector {
	edges := []struct {
		inside func(p cp.Vector) bool
		cross  func(a, b cp.Vector) cp.Vector
	}{
		{func(p cp.Vector) bool { return p.X >= 0 }, func(a, b cp.Vector) cp.Vector { return atX(a, b, 0) }},
		{func(p cp.Vector) bool { return p.X <= w }, func(a, b cp.Vector) cp.Vector { return atX(a, b, w) }},
		{func(p cp.Vector) bool { return p.Y >= 0 }, func(a, b cp.Vector) cp.Vector { return atY(a, b, 0) }},
		{func(p cp.Vector) bool { return p.Y <= h }, func(a, b cp.Vector) cp.Vector { return atY(a, b, h) }},
	}
	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make([]cp.Vector, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur):
				if !e.inside(prev) {
					out = append(out, e.cross(prev, cur))
				}
				out = append(out, cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

func atX(a, b cp.Vector, x float64) cp.Vector {
	t := (x - a.X) / (b.X - a.X)
	return cp.Vector{X: x, Y: a.Y + t*(b.Y-a.Y)}
}

func atY(a, b cp.Vector, y float64) cp.Vector {
	t := (y - a.Y) / (b.Y - a.Y)
	return cp.Vector{X: a.X + t*(b.X-a.X), Y: y}
}
