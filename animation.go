package orchard

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Growth animates a value linearly from 0 to 1 in fixed per-tick steps. It
// latches Done once the value reaches exactly 1 and never changes again.
//
// There is no global animation manager; owners call Step themselves.
type Growth struct {
	tween *gween.Tween
	value float64
	Done  bool
}

// NewGrowth returns a Growth that reaches 1 after ceil(1/rate) ticks.
func NewGrowth(rate float64) *Growth {
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	return &Growth{tween: gween.New(0, 1, float32(1/rate), ease.Linear)}
}

// Step advances the growth by one tick and returns the new value.
func (g *Growth) Step() float64 {
	if g.Done {
		return g.value
	}
	val, finished := g.tween.Update(1)
	if finished {
		g.value = 1
		g.Done = true
		return g.value
	}
	// float32 rounding must never move the value backwards.
	g.value = max(g.value, min(float64(val), 1))
	return g.value
}

// Value returns the current growth in [0, 1].
func (g *Growth) Value() float64 {
	return g.value
}
