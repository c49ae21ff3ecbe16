package orchard

import (
	"image/color"
	"math"
	"math/rand/v2"
)

// Vec2 is a 2D vector used for positions, offsets and velocities. The
// coordinate system has its origin at the top-left, with Y increasing
// downward.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Color is an opaque RGB color with components in [0, 1]. The render backend
// has no alpha channel.
type Color struct {
	R, G, B float64
}

// RGB builds a Color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

// RGB8 returns the color as 8-bit channels, truncating like int(x*255).
func (c Color) RGB8() (r, g, b uint8) {
	return channel8(c.R), channel8(c.G), channel8(c.B)
}

// RGBA converts to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	r, g, b := c.RGB8()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func channel8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(math.Floor(v*255 + 1e-9))
}

// Range is a closed min/max interval used for random parameter sampling.
type Range struct {
	Min, Max float64
}

// Sample returns a uniformly distributed value in [Min, Max].
func (r Range) Sample(rng Rand) float64 {
	return r.Min + (r.Max-r.Min)*rng.Float64()
}

// Rand is the random source used by every generator in the package. Inject a
// seeded source to reproduce exact tree topologies.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a deterministic PCG-backed source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniform returns a value in [lo, hi].
func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
