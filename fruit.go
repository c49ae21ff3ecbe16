package orchard

import colorful "github.com/lucasb-eyer/go-colorful"

// FruitShape is the polygonal variant a fruit is drawn as. It is chosen at
// creation and fixed for the fruit's lifetime.
type FruitShape uint8

const (
	ShapeTrapezoid FruitShape = iota // single trapezoid, narrower on top
	ShapeDiamond                     // rhombus centred on the anchor
	ShapeTriangle                    // upward-pointing triangle
	ShapeStacked2                    // two stacked, narrowing trapezoids
	ShapeStacked3                    // three stacked, narrowing trapezoids
)

func (s FruitShape) String() string {
	switch s {
	case ShapeTrapezoid:
		return "trapezoid"
	case ShapeDiamond:
		return "diamond"
	case ShapeTriangle:
		return "triangle"
	case ShapeStacked2:
		return "stacked2"
	case ShapeStacked3:
		return "stacked3"
	default:
		return "unknown"
	}
}

// Saturation ramp applied as a fruit grows.
const (
	fruitSatFloor = 0.3
	fruitSatSpan  = 0.7
)

// FruitConfig holds the parameters shared by every fruit of a variant.
type FruitConfig struct {
	Size       float64      `yaml:"size"`
	GrowthRate float64      `yaml:"growth_rate"`
	Color      Color        `yaml:"color"`
	Shapes     []FruitShape `yaml:"shapes"`
}

// Fruit grows at a leaf point, getting larger and more saturated until it is
// fully grown.
type Fruit struct {
	Anchor Vec2 // bottom-centre of the fruit
	Shape  FruitShape

	size   float64
	growth *Growth
	hue    float64
	light  float64
}

// NewFruit creates a fruit at growth 0 with a shape drawn from cfg.Shapes.
func NewFruit(rng Rand, anchor Vec2, cfg FruitConfig) *Fruit {
	shape := ShapeTrapezoid
	if len(cfg.Shapes) > 0 {
		shape = cfg.Shapes[rng.IntN(len(cfg.Shapes))]
	}
	h, _, l := colorful.Color{R: cfg.Color.R, G: cfg.Color.G, B: cfg.Color.B}.Hsl()
	return &Fruit{
		Anchor: anchor,
		Shape:  shape,
		size:   cfg.Size,
		growth: NewGrowth(cfg.GrowthRate),
		hue:    h,
		light:  l,
	}
}

// Update advances growth by one tick. Fully grown fruits do not change.
func (f *Fruit) Update() {
	f.growth.Step()
}

// Growth returns the current growth in [0, 1].
func (f *Fruit) Growth() float64 {
	return f.growth.Value()
}

// FullyGrown reports whether growth has reached 1.
func (f *Fruit) FullyGrown() bool {
	return f.growth.Done
}

// Color returns the fill color for the current growth: the base hue and
// lightness with saturation ramped from 0.3 to 1.0.
func (f *Fruit) Color() Color {
	c := colorful.Hsl(f.hue, fruitSatFloor+fruitSatSpan*f.Growth(), f.light).Clamped()
	return Color{c.R, c.G, c.B}
}

// Polygons returns the outline(s) making up the fruit at its current size.
func (f *Fruit) Polygons() [][]Vec2 {
	size := f.size * f.Growth()
	x, y := f.Anchor.X, f.Anchor.Y
	switch f.Shape {
	case ShapeDiamond:
		return [][]Vec2{{
			{x - size/2, y},
			{x, y - size/2},
			{x + size/2, y},
			{x, y + size/2},
		}}
	case ShapeTriangle:
		return [][]Vec2{{
			{x - size/2, y},
			{x + size/2, y},
			{x, y - size},
		}}
	case ShapeStacked2:
		return stackedTrapezoids(x, y, size, 2)
	case ShapeStacked3:
		return stackedTrapezoids(x, y, size, 3)
	default:
		bw, tw, h := size, size*0.8, size*0.5
		return [][]Vec2{{
			{x - bw/2, y},
			{x + bw/2, y},
			{x + tw/2, y - h},
			{x - tw/2, y - h},
		}}
	}
}

// stackedTrapezoids stacks parts trapezoids upward from (x, y), each 10% of
// size narrower than the one below.
func stackedTrapezoids(x, y, size float64, parts int) [][]Vec2 {
	out := make([][]Vec2, parts)
	h := size / float64(parts)
	for i := range parts {
		bw := size * (1 - 0.1*float64(i))
		tw := size * (1 - 0.1*float64(i+1))
		yb := y - float64(i)*h
		yt := y - float64(i+1)*h
		out[i] = []Vec2{
			{x - bw/2, yb},
			{x + bw/2, yb},
			{x + tw/2, yt},
			{x - tw/2, yt},
		}
	}
	return out
}

// Draw fills the fruit's polygons with its current color.
func (f *Fruit) Draw(r Renderer) {
	c := f.Color()
	for _, poly := range f.Polygons() {
		r.FillPolygon(poly, c)
	}
}
