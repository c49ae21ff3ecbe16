package orchard

import (
	"math"
	"slices"
	"time"
)

// State is the animation phase. Phases only move forward, except through
// Reset.
type State uint8

const (
	StateIdle        State = iota // waiting for the first advance
	StateGrowing                  // trees grow and spawn
	StateFruiting                 // fruit appears on leaf points
	StateButterflies              // grown fruit turns into butterflies
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGrowing:
		return "growing"
	case StateFruiting:
		return "fruiting"
	case StateButterflies:
		return "butterflies"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of the sequencer's containers.
type Stats struct {
	State       State
	Trees       int
	Revealed    int
	Pending     int
	LeafPoints  int
	Fruits      int
	GrownFruits int
	Butterflies int
	Background  int
}

// Sequencer is the whole simulation state: the current phase plus every
// tree, fruit, butterfly and leaf point. All mutation happens in Advance,
// Reset, CycleBackground and Update; Draw only reads.
type Sequencer struct {
	cfg    Config
	rng    Rand
	bounds Vec2
	state  State

	trees       []*Tree
	fruits      []*Fruit
	butterflies []*Butterfly
	leaves      []Vec2
	available   []Vec2

	paletteIndex int
	background   Color

	lastTreeSpawn  time.Duration
	lastFruitSpawn time.Duration
	lastButterfly  time.Duration
	fruitInterval  time.Duration
}

// NewSequencer returns an idle sequencer. now starts every spawn timer.
func NewSequencer(cfg Config, rng Rand, now time.Duration) *Sequencer {
	s := &Sequencer{
		cfg:        cfg,
		rng:        rng,
		bounds:     Vec2{float64(cfg.Width), float64(cfg.Height)},
		background: cfg.Background,
	}
	s.resetTimers(now)
	return s
}

func (s *Sequencer) resetTimers(now time.Duration) {
	s.lastTreeSpawn = now
	s.lastFruitSpawn = now
	s.lastButterfly = now
	s.fruitInterval = s.cfg.FruitSpawn.Interval
}

// State returns the current phase.
func (s *Sequencer) State() State { return s.state }

// Trees returns the trees in spawn order. The slice must not be mutated.
func (s *Sequencer) Trees() []*Tree { return s.trees }

// Fruits returns the fruits in spawn order. The slice must not be mutated.
func (s *Sequencer) Fruits() []*Fruit { return s.fruits }

// Butterflies returns the butterflies in spawn order. The slice must not be
// mutated.
func (s *Sequencer) Butterflies() []*Butterfly { return s.butterflies }

// LeafPoints returns the shared leaf-point pool. The slice must not be
// mutated.
func (s *Sequencer) LeafPoints() []Vec2 { return s.leaves }

// Background returns the current clear color.
func (s *Sequencer) Background() Color { return s.background }

// Bounds returns the screen extent used for spawning and bouncing.
func (s *Sequencer) Bounds() Vec2 { return s.bounds }

// SetBounds updates the screen extent.
func (s *Sequencer) SetBounds(w, h float64) {
	s.bounds = Vec2{w, h}
}

// FruitInterval returns the current delay between fruit spawns.
func (s *Sequencer) FruitInterval() time.Duration { return s.fruitInterval }

// Advance moves to the next phase and reports whether the phase changed.
// Leaving idle spawns the primal tree. Advancing from the last phase is a
// no-op.
func (s *Sequencer) Advance(now time.Duration) bool {
	switch s.state {
	case StateIdle:
		s.state = StateGrowing
		s.spawnTree(now, true, true)
	case StateGrowing:
		s.state = StateFruiting
	case StateFruiting:
		s.state = StateButterflies
	default:
		return false
	}
	return true
}

// Reset clears every container and timer and returns to idle. The
// background is kept.
func (s *Sequencer) Reset(now time.Duration) {
	clear(s.trees)
	clear(s.fruits)
	clear(s.butterflies)
	s.trees = s.trees[:0]
	s.fruits = s.fruits[:0]
	s.butterflies = s.butterflies[:0]
	s.leaves = s.leaves[:0]
	s.state = StateIdle
	s.resetTimers(now)
}

// CycleBackground steps to the next palette color.
func (s *Sequencer) CycleBackground() {
	if len(s.cfg.Palette) == 0 {
		return
	}
	s.paletteIndex = (s.paletteIndex + 1) % len(s.cfg.Palette)
	s.background = s.cfg.Palette[s.paletteIndex]
}

// Update runs one tick of the current phase.
func (s *Sequencer) Update(now time.Duration) {
	tc := s.cfg.Trees
	switch s.state {
	case StateGrowing:
		s.updateTrees(now, tc.SpeedGrowing)
		s.spawnGrowingTrees(now)
	case StateFruiting:
		s.updateTrees(now, tc.SpeedFruiting)
		s.spawnLateTrees(now)
		s.spawnFruit(now)
		s.updateFruits()
	case StateButterflies:
		s.updateTrees(now, tc.SpeedButterflies)
		s.spawnLateTrees(now)
		s.updateFruits()
		s.spawnButterfly(now)
		for _, b := range s.butterflies {
			b.Update(s.rng, s.bounds)
		}
	}
}

// Draw clears to the background and draws whatever the phase shows.
func (s *Sequencer) Draw(r Renderer) {
	r.Clear(s.background)
	if s.state == StateIdle {
		return
	}
	for _, t := range s.trees {
		t.Draw(r, s.cfg.Trees.Color)
	}
	if s.state < StateFruiting {
		return
	}
	for _, f := range s.fruits {
		f.Draw(r)
	}
	if s.state < StateButterflies {
		return
	}
	for _, b := range s.butterflies {
		b.Draw(r)
	}
}

// Stats returns container counts.
func (s *Sequencer) Stats() Stats {
	st := Stats{
		State:       s.state,
		Trees:       len(s.trees),
		LeafPoints:  len(s.leaves),
		Fruits:      len(s.fruits),
		Butterflies: len(s.butterflies),
		Background:  s.paletteIndex,
	}
	for _, t := range s.trees {
		st.Revealed += len(t.Revealed())
		st.Pending += len(t.Pending())
	}
	for _, f := range s.fruits {
		if f.FullyGrown() {
			st.GrownFruits++
		}
	}
	return st
}

// --- Trees ---

func (s *Sequencer) updateTrees(now time.Duration, speed float64) {
	for _, t := range s.trees {
		t.Update(now, speed)
	}
}

// spawnGrowingTrees adds trees while growing. Once the primal tree is
// finished a tree appears every FastInterval; before that every
// SlowInterval, but only while fewer than SlowLimit trees exist.
func (s *Sequencer) spawnGrowingTrees(now time.Duration) {
	if len(s.trees) == 0 {
		return
	}
	tc := s.cfg.Trees
	elapsed := now - s.lastTreeSpawn
	if s.trees[0].Finished() {
		if tc.FastInterval > 0 && elapsed > tc.FastInterval {
			s.spawnTree(now, false, false)
		}
		return
	}
	if tc.SlowInterval > 0 && len(s.trees) < tc.SlowLimit && elapsed > tc.SlowInterval {
		s.spawnTree(now, false, true)
	}
}

// spawnLateTrees adds a tree every LateInterval during fruiting and
// butterflies.
func (s *Sequencer) spawnLateTrees(now time.Duration) {
	tc := s.cfg.Trees
	if tc.LateInterval > 0 && now-s.lastTreeSpawn > tc.LateInterval {
		s.spawnTree(now, false, false)
	}
}

// spawnTree generates a tree and merges its leaf points into the pool.
// Every tree but the primal one restarts the tree spawn timer, so the first
// follow-up spawn is timed from start or reset. centred only applies to
// bottom spawns.
func (s *Sequencer) spawnTree(now time.Duration, primal, centred bool) *Tree {
	p := s.treeParams(primal, centred)
	t := NewTree(s.rng, p, s.cfg.Trees.Style, s.cfg.Trees.Reveal, now)
	s.trees = append(s.trees, t)
	s.leaves = append(s.leaves, t.Leaves()...)
	if !primal {
		s.lastTreeSpawn = now
	}
	return t
}

func (s *Sequencer) treeParams(primal, centred bool) TreeParams {
	tc := s.cfg.Trees
	var p TreeParams
	if tc.Policy == SpawnEdges {
		p.Base, p.Angle = s.edgeSpawn()
	} else {
		p.Base, p.Angle = s.bottomSpawn(centred), -math.Pi/2
	}
	if primal && tc.Primal != nil {
		p.Length, p.Width, p.Depth = tc.Primal.Length, tc.Primal.Width, tc.Primal.Depth
		return p
	}
	p.Length = tc.Length.Sample(s.rng)
	p.Width = tc.Width.Sample(s.rng)
	p.Depth = tc.Depths[s.rng.IntN(len(tc.Depths))]
	return p
}

// bottomSpawn returns a point on the bottom edge, either the centre or a
// random x at least EdgeMargin from the sides.
func (s *Sequencer) bottomSpawn(centred bool) Vec2 {
	w, h := s.bounds.X, s.bounds.Y
	if centred {
		return Vec2{math.Floor(w / 2), h}
	}
	lo := int(s.cfg.Trees.EdgeMargin)
	hi := int(w) - lo
	if hi < lo {
		return Vec2{math.Floor(w / 2), h}
	}
	return Vec2{float64(lo + s.rng.IntN(hi-lo+1)), h}
}

// edgeSpawn picks a random screen edge and returns a point on it with an
// inward growth angle.
func (s *Sequencer) edgeSpawn() (Vec2, float64) {
	jitter := s.cfg.Trees.AngleJitter
	offset := uniform(s.rng, -jitter, jitter)
	w, h := int(s.bounds.X), int(s.bounds.Y)
	switch s.rng.IntN(4) {
	case 0: // bottom, grow up
		return Vec2{float64(s.rng.IntN(w + 1)), float64(h)}, -math.Pi/2 + offset
	case 1: // top, grow down
		return Vec2{float64(s.rng.IntN(w + 1)), 0}, math.Pi/2 + offset
	case 2: // left, grow right
		return Vec2{0, float64(s.rng.IntN(h + 1))}, offset
	default: // right, grow left
		return Vec2{float64(w), float64(s.rng.IntN(h + 1))}, math.Pi + offset
	}
}

// --- Fruit ---

// spawnFruit plants one fruit on a random unclaimed leaf point every
// fruitInterval. A successful spawn shrinks the interval toward its floor.
func (s *Sequencer) spawnFruit(now time.Duration) {
	if now-s.lastFruitSpawn <= s.fruitInterval {
		return
	}
	s.lastFruitSpawn = now
	avail := s.availableLeaves()
	if len(avail) == 0 {
		return
	}
	pt := avail[s.rng.IntN(len(avail))]
	s.fruits = append(s.fruits, NewFruit(s.rng, pt, s.cfg.Fruit))
	fs := s.cfg.FruitSpawn
	s.fruitInterval = max(fs.MinInterval, time.Duration(float64(s.fruitInterval)*fs.Decay))
}

// availableLeaves returns the leaf points farther than ClaimRadius from every
// fruit anchor. The result is reused by the next call.
func (s *Sequencer) availableLeaves() []Vec2 {
	radius := s.cfg.FruitSpawn.ClaimRadius
	s.available = s.available[:0]
	for _, pt := range s.leaves {
		claimed := false
		for _, f := range s.fruits {
			if pt.Dist(f.Anchor) < radius {
				claimed = true
				break
			}
		}
		if !claimed {
			s.available = append(s.available, pt)
		}
	}
	return s.available
}

func (s *Sequencer) updateFruits() {
	for _, f := range s.fruits {
		f.Update()
	}
}

// --- Butterflies ---

// spawnButterfly removes the oldest fully grown fruit every
// ButterflyInterval and releases a butterfly where it hung.
func (s *Sequencer) spawnButterfly(now time.Duration) {
	if len(s.fruits) == 0 || now-s.lastButterfly <= s.cfg.ButterflyInterval {
		return
	}
	i := slices.IndexFunc(s.fruits, (*Fruit).FullyGrown)
	if i < 0 {
		return
	}
	f := s.fruits[i]
	s.fruits = slices.Delete(s.fruits, i, i+1)
	s.butterflies = append(s.butterflies, NewButterfly(s.rng, f.Anchor, s.cfg.Butterfly))
	s.lastButterfly = now
}
