package fx

import (
	"image/color"
	"math/rand/v2"
)

// Range is an inclusive-exclusive [min, max) interval sampled uniformly.
type Range [2]float64

func (r Range) sample(rng *rand.Rand) float64 {
	if r[1] <= r[0] {
		return r[0]
	}
	return r[0] + rng.Float64()*(r[1]-r[0])
}

// Emitter describes one burst of particles. Velocities are pixels per
// second and Lifetime is in seconds.
type Emitter struct {
	Max      int          `yaml:"max"`
	Lifetime Range        `yaml:"lifetime"`
	VelX     Range        `yaml:"vel_x"`
	VelY     Range        `yaml:"vel_y"`
	Gravity  float64      `yaml:"gravity"`
	Size     Range        `yaml:"size"`
	Colors   []color.RGBA `yaml:"-"`
}

type Particle struct {
	X, Y    float64
	VX, VY  float64
	Life    float64
	Age     float64
	Gravity float64
	Size    float64
	Color   color.RGBA
}

const defaultBurst = 10

// System owns the emitters and live particles.
type System struct {
	emitters  map[string]Emitter
	particles []Particle
	rng       *rand.Rand
}

// NewSystem returns a system sampling from rng, or from a PCG seeded with
// seed when rng is nil.
func NewSystem(rng *rand.Rand, seed uint64) *System {
	if rng == nil {
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return &System{emitters: make(map[string]Emitter), rng: rng}
}

func (s *System) Register(name string, e Emitter) {
	s.emitters[name] = e
}

func (s *System) Unregister(name string) {
	delete(s.emitters, name)
}

// Emit spawns one burst of the named emitter at (x,y). Unknown names are a
// no-op and report false.
func (s *System) Emit(name string, x, y float64) bool {
	e, ok := s.emitters[name]
	if !ok {
		return false
	}
	n := e.Max
	if n <= 0 {
		n = defaultBurst
	}
	for range n {
		p := Particle{
			X:       x,
			Y:       y,
			VX:      e.VelX.sample(s.rng),
			VY:      e.VelY.sample(s.rng),
			Life:    e.Lifetime.sample(s.rng),
			Gravity: e.Gravity,
			Size:    e.Size.sample(s.rng),
			Color:   color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		}
		if len(e.Colors) > 0 {
			p.Color = e.Colors[s.rng.IntN(len(e.Colors))]
		}
		s.particles = append(s.particles, p)
	}
	return true
}

// Update ages and integrates every particle by dt seconds and drops the
// expired ones.
func (s *System) Update(dt float64) {
	out := s.particles[:0]
	for _, p := range s.particles {
		p.Age += dt
		if p.Age >= p.Life {
			continue
		}
		p.VY += p.Gravity * dt
		p.X += p.VX * dt
		p.Y += p.VY * dt
		out = append(out, p)
	}
	clear(s.particles[len(out):])
	s.particles = out
}

// Particles returns the live particles. The slice is only valid until the
// next Emit or Update.
func (s *System) Particles() []Particle {
	return s.particles
}

func (s *System) Len() int {
	return len(s.particles)
}

func (s *System) Clear() {
	s.particles = s.particles[:0]
}
