package lighting

import (
	"image"
	"image/color"
	"math"

	"github.com/jakecoffman/cp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/milk9111/systematic/camera"
	"github.com/milk9111/systematic/config"
)

// Scene is everything one lighting frame reads.
type Scene struct {
	View      camera.View
	TileSize  float64
	Occluders Occluders
	Lights    []Light
}

type Stats struct {
	Drawn    int
	Culled   int
	Segments int
}

// Renderer builds a low-resolution lightmap and a reflection layer on the
// CPU. Both images cover the view at cfg.Scale.
type Renderer struct {
	cfg config.Lighting

	lightmap *image.RGBA
	glow     *image.RGBA
	mask     *image.Alpha
	raster   *vector.Rasterizer

	upLight *image.RGBA
	upGlow  *image.RGBA
}

func NewRenderer(cfg config.Lighting) *Renderer {
	return &Renderer{cfg: cfg}
}

// Lightmap is the ambient-plus-lights image of the last frame.
func (r *Renderer) Lightmap() *image.RGBA {
	return r.lightmap
}

// Glow is the additive edge-highlight image of the last frame.
func (r *Renderer) Glow() *image.RGBA {
	return r.glow
}

func (r *Renderer) Scale() float64 {
	return r.cfg.Scale
}

func (r *Renderer) resize(v camera.View) (int, int) {
	w := max(1, int(math.Ceil(v.W*r.cfg.Scale)))
	h := max(1, int(math.Ceil(v.H*r.cfg.Scale)))
	if r.lightmap == nil || r.lightmap.Rect.Dx() != w || r.lightmap.Rect.Dy() != h {
		rect := image.Rect(0, 0, w, h)
		r.lightmap = image.NewRGBA(rect)
		r.glow = image.NewRGBA(rect)
		r.mask = image.NewAlpha(rect)
		r.raster = vector.NewRasterizer(w, h)
	}
	return w, h
}

// Render draws s into the lightmap and glow layers. The sun is added to
// s.Lights for this frame only.
func (r *Renderer) Render(s Scene) Stats {
	var st Stats
	w, h := r.resize(s.View)

	amb := uint8(math.Floor(255 * r.cfg.Ambient))
	fill(r.lightmap, color.RGBA{R: amb, G: amb, B: amb, A: 0xff})
	clear(r.glow.Pix)

	lights := make([]Light, 0, len(s.Lights)+1)
	lights = append(lights, s.Lights...)
	lights = append(lights, Sun(s.View, r.cfg.Sun))

	segs := Geometry(s.Occluders, s.View, s.TileSize, r.cfg.GeometryBuffer)
	st.Segments = len(segs)

	for _, l := range lights {
		if !Visible(l, s.View) {
			st.Culled++
			continue
		}
		poly := Visibility(l, segs, r.cfg.VisibilityBound)
		if !r.rasterize(poly, s.View, w, h) {
			continue
		}
		r.shade(l, s.View)
		st.Drawn++
	}

	r.reflect(s, lights)
	return st
}

// rasterize writes the coverage of poly, in lightmap pixels, into r.mask.
func (r *Renderer) rasterize(poly []cp.Vector, v camera.View, w, h int) bool {
	clear(r.mask.Pix)
	pts := make([]cp.Vector, len(poly))
	for i, p := range poly {
		pts[i] = cp.Vector{X: (p.X - v.X) * r.cfg.Scale, Y: (p.Y - v.Y) * r.cfg.Scale}
	}
	pts = clipRect(pts, float64(w), float64(h))
	if len(pts) < 3 {
		return false
	}
	r.raster.Reset(w, h)
	r.raster.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.raster.LineTo(float32(p.X), float32(p.Y))
	}
	r.raster.ClosePath()
	r.raster.Draw(r.mask, r.mask.Bounds(), image.Opaque, image.Point{})
	return true
}

// shade screen-blends l's radial gradient into the lightmap wherever the
// mask has coverage.
func (r *Renderer) shade(l Light, v camera.View) {
	sc := r.cfg.Scale
	b := r.lightmap.Rect
	x0 := max(b.Min.X, int(math.Floor((l.X-l.Radius-v.X)*sc)))
	x1 := min(b.Max.X, int(math.Ceil((l.X+l.Radius-v.X)*sc)))
	y0 := max(b.Min.Y, int(math.Floor((l.Y-l.Radius-v.Y)*sc)))
	y1 := min(b.Max.Y, int(math.Ceil((l.Y+l.Radius-v.Y)*sc)))
	peak := math.Min(1, math.Max(0, l.Intensity))
	if peak == 0 {
		return
	}
	cr, cg, cb := float64(l.Color.R)/255, float64(l.Color.G)/255, float64(l.Color.B)/255

	for py := y0; py < y1; py++ {
		wy := v.Y + (float64(py)+0.5)/sc
		for px := x0; px < x1; px++ {
			m := r.mask.Pix[py*r.mask.Stride+px]
			if m == 0 {
				continue
			}
			wx := v.X + (float64(px)+0.5)/sc
			d := math.Hypot(wx-l.X, wy-l.Y)
			if d >= l.Radius {
				continue
			}
			a := peak * (1 - d/l.Radius) * float64(m) / 255
			i := py*r.lightmap.Stride + px*4
			pix := r.lightmap.Pix[i : i+3 : i+3]
			pix[0] = screen(pix[0], cr*a)
			pix[1] = screen(pix[1], cg*a)
			pix[2] = screen(pix[2], cb*a)
		}
	}
}

// screen returns 1-(1-dst)(1-src) in 8-bit.
func screen(dst uint8, src float64) uint8 {
	d := float64(dst) / 255
	return uint8(math.Round((1 - (1-d)*(1-src)) * 255))
}

// reflect adds edge highlights on exposed faces of opaque tiles that face
// a light within its radius.
func (r *Renderer) reflect(s Scene, lights []Light) {
	occ, ts := s.Occluders, s.TileSize
	if occ == nil || ts <= 0 {
		return
	}
	v := s.View
	startCol := max(0, int(math.Floor(v.X/ts))-1)
	endCol := min(occ.Cols(), int(math.Ceil((v.X+v.W)/ts))+1)
	startRow := max(0, int(math.Floor(v.Y/ts))-1)
	endRow := min(occ.Rows(), int(math.Ceil((v.Y+v.H)/ts))+1)
	ew := r.cfg.ReflectionWidth

	for y := startRow; y < endRow; y++ {
		for x := startCol; x < endCol; x++ {
			if !occ.Opaque(x, y) {
				continue
			}
			top, bottom := !occ.Opaque(x, y-1), !occ.Opaque(x, y+1)
			left, right := !occ.Opaque(x-1, y), !occ.Opaque(x+1, y)
			if !(top || bottom || left || right) {
				continue
			}
			tx, ty := float64(x)*ts, float64(y)*ts
			center := cp.Vector{X: tx + ts/2, Y: ty + ts/2}
			for _, l := range lights {
				if l.Radius <= 0 {
					continue
				}
				d := l.pos().Distance(center)
				if d >= l.Radius {
					continue
				}
				a := (1 - d/l.Radius) * math.Max(0, l.Intensity) * r.cfg.ReflectionStrength
				if top && l.Y < ty {
					r.addRect(v, tx, ty, ts, ew, l.Color, a)
				}
				if bottom && l.Y > ty+ts {
					r.addRect(v, tx, ty+ts-ew, ts, ew, l.Color, a)
				}
				if left && l.X < tx {
					r.addRect(v, tx, ty, ew, ts, l.Color, a)
				}
				if right && l.X > tx+ts {
					r.addRect(v, tx+ts-ew, ty, ew, ts, l.Color, a)
				}
			}
		}
	}
}

// addRect additively blends c*a over the world rectangle into the glow
// layer. Rectangles thinner than a lightmap pixel still cover one pixel.
func (r *Renderer) addRect(v camera.View, x, y, w, h float64, c color.RGBA, a float64) {
	if a <= 0 {
		return
	}
	sc := r.cfg.Scale
	b := r.glow.Rect
	x0 := int(math.Floor((x - v.X) * sc))
	y0 := int(math.Floor((y - v.Y) * sc))
	x1 := max(x0+1, int(math.Ceil((x+w-v.X)*sc)))
	y1 := max(y0+1, int(math.Ceil((y+h-v.Y)*sc)))
	x0, y0 = max(x0, b.Min.X), max(y0, b.Min.Y)
	x1, y1 = min(x1, b.Max.X), min(y1, b.Max.Y)
	add := [3]float64{float64(c.R) * a, float64(c.G) * a, float64(c.B) * a}
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			i := py*r.glow.Stride + px*4
			pix := r.glow.Pix[i : i+4 : i+4]
			for ch := 0; ch < 3; ch++ {
				pix[ch] = addClamp(pix[ch], add[ch])
			}
			pix[3] = max(pix[0], pix[1], pix[2])
		}
	}
}

func addClamp(dst uint8, v float64) uint8 {
	return uint8(math.Min(255, float64(dst)+math.Round(v)))
}

// Composite applies the last frame to dst: the lightmap is upscaled and
// blended with multiply at MultiplyAlpha and additively at BloomAlpha, then
// the glow layer is added.
func (r *Renderer) Composite(dst *image.RGBA) {
	if r.lightmap == nil || dst == nil {
		return
	}
	b := dst.Bounds()
	r.upLight = upscale(r.upLight, r.lightmap, b)
	r.upGlow = upscale(r.upGlow, r.glow, b)

	ma, ba := r.cfg.MultiplyAlpha, r.cfg.BloomAlpha
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			di := dst.PixOffset(x, y)
			si := r.upLight.PixOffset(x-b.Min.X, y-b.Min.Y)
			for ch := 0; ch < 3; ch++ {
				d := float64(dst.Pix[di+ch])
				l := float64(r.upLight.Pix[si+ch])
				g := float64(r.upGlow.Pix[si+ch])
				d *= 1 - ma + ma*l/255
				d += ba*l + g
				dst.Pix[di+ch] = uint8(math.Min(255, math.Round(d)))
			}
		}
	}
}

func upscale(buf, src *image.RGBA, b image.Rectangle) *image.RGBA {
	rect := image.Rect(0, 0, b.Dx(), b.Dy())
	if buf == nil || buf.Rect != rect {
		buf = image.NewRGBA(rect)
	}
	xdraw.BiLinear.Scale(buf, rect, src, src.Bounds(), xdraw.Src, nil)
	return buf
}

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}
