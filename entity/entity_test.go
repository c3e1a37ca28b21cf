package entity

import "testing"

func TestPlayerResize(t *testing.T) {
	cases := []struct {
		name     string
		tileSize float64
		want     float64
	}{
		{"default", 30, 30},
		{"zoomed", 60, 60},
		{"odd", 45, 45},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewPlayer(0, 0, 8)
			p.Resize(c.tileSize)
			if p.Width != c.want || p.Height != c.want {
				t.Fatalf("Resize(%g) = %gx%g, want %g", c.tileSize, p.Width, p.Height, c.want)
			}
		})
	}
}

func TestPlayerReset(t *testing.T) {
	p := NewPlayer(1, 2, 8)
	p.VX, p.VY, p.OnGround, p.OnWallLeft = 3, 4, true, true
	p.Fields.Set("jumps", int64(1))
	p.Reset(100, 100)
	if p.X != 100 || p.Y != 100 || p.VX != 0 || p.VY != 0 || p.OnGround || p.OnWallLeft {
		t.Fatalf("Reset left state behind: %+v", p)
	}
	if n, ok := p.Fields.Float("jumps"); !ok || n != 1 {
		t.Fatalf("Reset should keep fields, got %v", p.Fields)
	}
}

func TestFieldsSetDelete(t *testing.T) {
	f := Fields{"a": 1.0, "b": true}
	f.Set("c", "x")
	f.Delete("a")
	if _, ok := f.Get("a"); ok || f["c"] != "x" || !f.Bool("b") {
		t.Fatalf("unexpected fields after Set/Delete: %v", f)
	}
	if f.Bool("missing") {
		t.Fatalf("missing bool should be false")
	}
}

func TestKeys(t *testing.T) {
	k := Keys{}
	k.Press("ArrowLeft")
	k.Press("s")
	if !k.Left() || k.Right() || k.Up() || !k.Drop() {
		t.Fatalf("unexpected key mapping: %v", k)
	}
	k.Release("ArrowLeft")
	if k.Left() {
		t.Fatalf("released key still down")
	}
}
