package orchard

import (
	"math"
	"time"
)

// BranchStyle selects the angle and taper rules used when a tree is
// generated.
type BranchStyle uint8

const (
	// StyleCalm produces narrow, slightly left/right biased forks.
	StyleCalm BranchStyle = iota
	// StyleSpooky produces wide, chaotic forks with thick tapered limbs.
	StyleSpooky
)

func (s BranchStyle) String() string {
	switch s {
	case StyleCalm:
		return "calm"
	case StyleSpooky:
		return "spooky"
	default:
		return "unknown"
	}
}

// taper is the ratio of a branch's top width to its bottom width.
func (s BranchStyle) taper() float64 {
	if s == StyleSpooky {
		return 0.8
	}
	return 0.3
}

// scale is the range child length and width are multiplied by.
func (s BranchStyle) scale() Range {
	if s == StyleSpooky {
		return Range{0.6, 0.9}
	}
	return Range{0.6, 0.8}
}

// singleOffset is the angle perturbation for a lone child.
func (s BranchStyle) singleOffset(rng Rand) float64 {
	if s == StyleSpooky {
		return uniform(rng, -1.0, 1.0)
	}
	return uniform(rng, -0.1, 0.1)
}

// pairOffsets returns the left and right angle offsets for a fork.
func (s BranchStyle) pairOffsets(rng Rand) (left, right float64) {
	if s == StyleSpooky {
		left = uniform(rng, -1.5, -0.2)
		right = uniform(rng, 0.2, 1.5)
		return left, right
	}
	left = -uniform(rng, 0.1, 0.3)
	right = uniform(rng, 0.1, 0.3)
	return left, right
}

// TreeParams describes the trunk of a tree and how deep it recurses.
type TreeParams struct {
	Base   Vec2
	Angle  float64
	Length float64
	Width  float64
	Depth  int
}

// RevealTiming controls how fast a tree's pending branches are revealed. A
// zero Delay reveals one branch per tick.
type RevealTiming struct {
	Delay    time.Duration `yaml:"delay"`
	Decay    float64       `yaml:"decay"`
	MinDelay time.Duration `yaml:"min_delay"`
}

// GenerateTree builds the full branch topology of a tree. Branches are
// returned in pre-order (trunk first) and every depth-0 termination
// contributes exactly one leaf point.
func GenerateTree(rng Rand, p TreeParams, style BranchStyle) ([]Branch, []Vec2) {
	g := generator{rng: rng, style: style}
	trunk := Branch{
		Start:       p.Base,
		Angle:       p.Angle,
		Length:      p.Length,
		BottomWidth: p.Width,
		TopWidth:    p.Width * style.taper(),
	}
	g.branches = append(g.branches, trunk)
	g.grow(trunk, p.Depth)
	return g.branches, g.leaves
}

type generator struct {
	rng      Rand
	style    BranchStyle
	branches []Branch
	leaves   []Vec2
}

func (g *generator) grow(parent Branch, depth int) {
	if depth <= 0 {
		g.leaves = append(g.leaves, parent.End())
		return
	}
	if depth == 1 {
		g.sprout(parent, parent.Angle+g.style.singleOffset(g.rng), depth)
		return
	}
	left, right := g.style.pairOffsets(g.rng)
	g.sprout(parent, parent.Angle+left, depth)
	g.sprout(parent, parent.Angle+right, depth)
}

func (g *generator) sprout(parent Branch, angle float64, depth int) {
	scale := g.style.scale()
	width := parent.TopWidth * scale.Sample(g.rng)
	child := Branch{
		Start:       parent.End(),
		Angle:       angle,
		Length:      parent.Length * scale.Sample(g.rng),
		BottomWidth: width,
		TopWidth:    width * g.style.taper(),
	}
	g.branches = append(g.branches, child)
	g.grow(child, depth-1)
}

// TreeSize returns the number of branches and leaf points GenerateTree
// produces for the given depth.
func TreeSize(depth int) (branches, leaves int) {
	if depth <= 0 {
		return 1, 1
	}
	half := 1 << (depth - 1)
	return 3*half - 1, half
}

// Tree is a pre-generated branch topology revealed one branch at a time.
type Tree struct {
	params   TreeParams
	style    BranchStyle
	pending  []Branch
	next     int
	revealed []Branch
	leaves   []Vec2

	timing     RevealTiming
	delay      time.Duration
	lastReveal time.Duration
}

// NewTree generates a tree and queues all of its branches for reveal. now is
// the current frame clock and starts the reveal timer.
func NewTree(rng Rand, p TreeParams, style BranchStyle, timing RevealTiming, now time.Duration) *Tree {
	branches, leaves := GenerateTree(rng, p, style)
	return &Tree{
		params:     p,
		style:      style,
		pending:    branches,
		revealed:   make([]Branch, 0, len(branches)),
		leaves:     leaves,
		timing:     timing,
		delay:      timing.Delay,
		lastReveal: now,
	}
}

// Update reveals the next pending branch if enough time has passed since the
// last reveal. speed divides the current delay. It reports whether the tree
// is finished.
func (t *Tree) Update(now time.Duration, speed float64) bool {
	if t.next >= len(t.pending) {
		return true
	}
	if speed <= 0 {
		speed = 1
	}
	effective := time.Duration(float64(t.delay) / speed)
	if now-t.lastReveal >= effective {
		t.revealed = append(t.revealed, t.pending[t.next])
		t.pending[t.next] = Branch{}
		t.next++
		t.lastReveal = now
		t.delay = max(time.Duration(math.Round(float64(t.delay)*t.timing.Decay)), t.timing.MinDelay)
	}
	return t.Finished()
}

// Finished reports whether every branch has been revealed.
func (t *Tree) Finished() bool {
	return t.next >= len(t.pending)
}

// Pending returns the branches not yet revealed, front first. The returned
// slice must not be mutated.
func (t *Tree) Pending() []Branch {
	return t.pending[t.next:]
}

// Revealed returns the revealed branches in reveal order. The returned slice
// must not be mutated.
func (t *Tree) Revealed() []Branch {
	return t.revealed
}

// Leaves returns the leaf points recorded during generation.
func (t *Tree) Leaves() []Vec2 {
	return t.leaves
}

// Delay returns the current reveal delay before any speed factor.
func (t *Tree) Delay() time.Duration {
	return t.delay
}

// Params returns the parameters the tree was generated from.
func (t *Tree) Params() TreeParams {
	return t.params
}

// Draw fills every revealed branch in reveal order.
func (t *Tree) Draw(r Renderer, c Color) {
	for i := range t.revealed {
		pts := t.revealed[i].Outline()
		r.FillPolygon(pts[:], c)
	}
}
