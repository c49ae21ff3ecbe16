package orchard

import "math"

// ButterflyConfig controls butterfly motion and appearance.
type ButterflyConfig struct {
	InitialSpeed  Range   `yaml:"initial_speed"` // per-axis starting velocity
	Jitter        float64 `yaml:"jitter"`        // per-axis velocity noise each tick
	MaxSpeed      float64 `yaml:"max_speed"`
	FlapRate      float64 `yaml:"flap_rate"`      // phase advance per tick, radians
	FlapAmplitude float64 `yaml:"flap_amplitude"` // vertical wing offset, pixels
	WingSize      float64 `yaml:"wing_size"`
	Scale         Range   `yaml:"scale"` // per-butterfly wing scale
	Color         Color   `yaml:"color"`
}

// Butterfly is a free-flying two-winged entity doing a random walk inside the
// screen bounds.
type Butterfly struct {
	Pos   Vec2
	Vel   Vec2
	Phase float64
	Scale float64

	cfg ButterflyConfig
}

// NewButterfly places a butterfly at pos with a random starting velocity.
func NewButterfly(rng Rand, pos Vec2, cfg ButterflyConfig) *Butterfly {
	scale := 1.0
	if cfg.Scale != (Range{}) {
		scale = cfg.Scale.Sample(rng)
	}
	return &Butterfly{
		Pos:   pos,
		Vel:   Vec2{cfg.InitialSpeed.Sample(rng), cfg.InitialSpeed.Sample(rng)},
		Scale: scale,
		cfg:   cfg,
	}
}

// Update advances the butterfly by one tick. The velocity is jittered and
// capped at MaxSpeed; crossing a screen edge inverts the matching velocity
// component without clamping the position.
func (b *Butterfly) Update(rng Rand, bounds Vec2) {
	b.Phase += b.cfg.FlapRate
	b.Pos = b.Pos.Add(b.Vel)
	b.Vel.X += uniform(rng, -b.cfg.Jitter, b.cfg.Jitter)
	b.Vel.Y += uniform(rng, -b.cfg.Jitter, b.cfg.Jitter)

	if speed := b.Vel.Len(); speed > b.cfg.MaxSpeed && speed > 0 {
		b.Vel = b.Vel.Scale(b.cfg.MaxSpeed / speed)
	}

	if b.Pos.X < 0 || b.Pos.X > bounds.X {
		b.Vel.X = -b.Vel.X
	}
	if b.Pos.Y < 0 || b.Pos.Y > bounds.Y {
		b.Vel.Y = -b.Vel.Y
	}
}

// Wings returns the left and right wing quads. They mirror each other about
// the vertical axis through Pos; the outer vertices move with the flap.
func (b *Butterfly) Wings() (left, right [4]Vec2) {
	x, y := b.Pos.X, b.Pos.Y
	w := b.cfg.WingSize * b.Scale
	flap := math.Sin(b.Phase) * b.cfg.FlapAmplitude
	left = [4]Vec2{
		{x, y},
		{x - w, y - w/2 + flap},
		{x - w, y - w + flap},
		{x, y - w/2},
	}
	right = [4]Vec2{
		{x, y},
		{x + w, y - w/2 + flap},
		{x + w, y - w + flap},
		{x, y - w/2},
	}
	return left, right
}

// Draw fills both wings.
func (b *Butterfly) Draw(r Renderer) {
	left, right := b.Wings()
	r.FillPolygon(left[:], b.cfg.Color)
	r.FillPolygon(right[:], b.cfg.Color)
}
