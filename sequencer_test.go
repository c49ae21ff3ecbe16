package orchard

import (
	"math"
	"testing"
	"time"
)

const tick = time.Second / 60

func newTestSequencer(cfg Config) *Sequencer {
	return NewSequencer(cfg, NewRand(1), 0)
}

// run updates s for n ticks starting at *now.
func run(s *Sequencer, now *time.Duration, n int) {
	for i := 0; i < n; i++ {
		*now += tick
		s.Update(*now)
	}
}

// --- State machine ---

func TestSequencerStartsIdle(t *testing.T) {
	s := newTestSequencer(CalmConfig())
	if s.State() != StateIdle {
		t.Errorf("State = %s, want idle", s.State())
	}
	s.Update(time.Hour)
	if len(s.Trees()) != 0 {
		t.Errorf("idle update spawned %d trees", len(s.Trees()))
	}
}

func TestSequencerAdvanceForwardOnly(t *testing.T) {
	s := newTestSequencer(CalmConfig())
	want := []State{StateGrowing, StateFruiting, StateButterflies}
	for _, w := range want {
		if !s.Advance(0) {
			t.Fatalf("Advance to %s reported no change", w)
		}
		if s.State() != w {
			t.Fatalf("State = %s, want %s", s.State(), w)
		}
	}
	for i := 0; i < 3; i++ {
		if s.Advance(0) {
			t.Error("Advance from butterflies reported a change")
		}
		if s.State() != StateButterflies {
			t.Errorf("State = %s, want butterflies", s.State())
		}
	}
	if len(s.Trees()) != 1 {
		t.Errorf("trees = %d, want only the primal tree", len(s.Trees()))
	}
}

func TestSequencerAdvanceSpawnsPrimalTree(t *testing.T) {
	cfg := CalmConfig()
	s := newTestSequencer(cfg)
	s.Advance(0)

	if len(s.Trees()) != 1 {
		t.Fatalf("trees = %d, want 1", len(s.Trees()))
	}
	p := s.Trees()[0].Params()
	if p.Base != (Vec2{640, 720}) || p.Angle != -math.Pi/2 {
		t.Errorf("primal base/angle = %v/%v, want bottom centre pointing up", p.Base, p.Angle)
	}
	if p.Length != 80 || p.Width != 16 || p.Depth != 4 {
		t.Errorf("primal params = %+v, want length 80 width 16 depth 4", p)
	}
	if _, leaves := TreeSize(4); len(s.LeafPoints()) != leaves {
		t.Errorf("leaf points = %d, want %d", len(s.LeafPoints()), leaves)
	}
}

func TestSequencerResetKeepsBackground(t *testing.T) {
	s := newTestSequencer(CalmConfig())
	s.CycleBackground()
	bg := s.Background()
	s.Advance(0)
	s.Advance(0)
	now := time.Duration(0)
	run(s, &now, 120)

	s.Reset(now)
	if s.State() != StateIdle {
		t.Errorf("State = %s, want idle", s.State())
	}
	st := s.Stats()
	if st.Trees != 0 || st.Fruits != 0 || st.Butterflies != 0 || st.LeafPoints != 0 {
		t.Errorf("containers not cleared: %+v", st)
	}
	if s.Background() != bg {
		t.Errorf("background = %v, want %v", s.Background(), bg)
	}
	if !s.Advance(now) || len(s.Trees()) != 1 {
		t.Error("sequencer did not restart after reset")
	}
}

func TestSequencerCycleBackgroundWraps(t *testing.T) {
	cfg := CalmConfig()
	s := newTestSequencer(cfg)
	for i := 1; i <= len(cfg.Palette)*2; i++ {
		s.CycleBackground()
		want := cfg.Palette[i%len(cfg.Palette)]
		if s.Background() != want {
			t.Fatalf("cycle %d: background = %v, want %v", i, s.Background(), want)
		}
	}
}

// --- Growing ---

func TestSequencerGrowingSpawnsAfterPrimalFinishes(t *testing.T) {
	s := newTestSequencer(CalmConfig())
	s.Advance(0)
	primal := s.Trees()[0]

	now := time.Duration(0)
	for !primal.Finished() {
		if len(s.Trees()) != 1 {
			t.Fatal("tree spawned before the primal tree finished")
		}
		run(s, &now, 1)
	}
	run(s, &now, 30)
	if len(s.Trees()) < 2 {
		t.Fatalf("trees = %d, want more than the primal tree", len(s.Trees()))
	}

	leaves := 0
	for _, tr := range s.Trees() {
		leaves += len(tr.Leaves())
	}
	if leaves != len(s.LeafPoints()) {
		t.Errorf("leaf pool = %d, want %d", len(s.LeafPoints()), leaves)
	}
}

func TestSequencerSlowSpawnWhilePrimalGrows(t *testing.T) {
	cfg := CalmConfig()
	cfg.Trees.Reveal = RevealTiming{Delay: time.Hour, Decay: 1}
	cfg.Trees.SlowLimit = 3
	s := newTestSequencer(cfg)
	s.Advance(0)

	now := time.Duration(0)
	run(s, &now, 60) // just under 1s
	if len(s.Trees()) != 1 {
		t.Fatalf("trees = %d at 1s, want 1", len(s.Trees()))
	}
	run(s, &now, 1)
	if len(s.Trees()) != 2 {
		t.Fatalf("trees = %d after 1s, want 2", len(s.Trees()))
	}
	run(s, &now, 600)
	if len(s.Trees()) != 3 {
		t.Errorf("trees = %d, want slow limit 3", len(s.Trees()))
	}
	for _, tr := range s.Trees() {
		if tr.Params().Base != (Vec2{640, 720}) {
			t.Errorf("slow spawn at %v, want bottom centre", tr.Params().Base)
		}
	}
}

func TestSequencerBottomSpawnMargin(t *testing.T) {
	cfg := CalmConfig()
	s := NewSequencer(cfg, NewRand(5), 0)
	for i := 0; i < 200; i++ {
		p := s.bottomSpawn(false)
		if p.X < cfg.Trees.EdgeMargin || p.X > float64(cfg.Width)-cfg.Trees.EdgeMargin || p.Y != float64(cfg.Height) {
			t.Fatalf("bottom spawn %v outside margins", p)
		}
	}
}

func TestSequencerEdgeSpawn(t *testing.T) {
	cfg := SpookyConfig()
	s := NewSequencer(cfg, NewRand(5), 0)
	w, h := float64(cfg.Width), float64(cfg.Height)
	jitter := cfg.Trees.AngleJitter
	edges := []struct {
		name   string
		on     func(Vec2) bool
		inward float64
	}{
		{"bottom", func(p Vec2) bool { return p.Y == h }, -math.Pi / 2},
		{"top", func(p Vec2) bool { return p.Y == 0 }, math.Pi / 2},
		{"left", func(p Vec2) bool { return p.X == 0 }, 0},
		{"right", func(p Vec2) bool { return p.X == w }, math.Pi},
	}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		p, angle := s.edgeSpawn()
		matched := false
		for _, e := range edges {
			if e.on(p) && math.Abs(angle-e.inward) <= jitter+epsilon {
				seen[e.name] = true
				matched = true
			}
		}
		if !matched {
			t.Fatalf("spawn %v angle %v is not on an edge pointing inward", p, angle)
		}
	}
	if len(seen) != 4 {
		t.Errorf("edges used = %v, want all four", seen)
	}
}

func onEdge(p Vec2, cfg Config) bool {
	return p.X == 0 || p.Y == 0 || p.X == float64(cfg.Width) || p.Y == float64(cfg.Height)
}

func TestSequencerEdgeSpawnsWaitForPrimal(t *testing.T) {
	cfg := SpookyConfig()
	cfg.Trees.Depths = []int{2}
	s := newTestSequencer(cfg)
	s.Advance(0)
	primal := s.Trees()[0]

	now := time.Duration(0)
	for !primal.Finished() {
		run(s, &now, 1)
	}
	if now >= cfg.Trees.FastInterval {
		t.Fatalf("primal finished at %v, want under %v", now, cfg.Trees.FastInterval)
	}
	for now+tick <= cfg.Trees.FastInterval {
		run(s, &now, 1)
	}
	if len(s.Trees()) != 1 {
		t.Fatalf("trees = %d at %v, want only the primal tree", len(s.Trees()), now)
	}
	run(s, &now, 1)
	if len(s.Trees()) != 2 {
		t.Fatalf("trees = %d after %v, want 2", len(s.Trees()), cfg.Trees.FastInterval)
	}
	if p := s.Trees()[1].Params().Base; !onEdge(p, cfg) {
		t.Errorf("second tree at %v, want a screen edge", p)
	}

	run(s, &now, 120) // just under 2s
	if len(s.Trees()) != 2 {
		t.Fatalf("trees = %d before the next interval, want 2", len(s.Trees()))
	}
	run(s, &now, 1)
	if len(s.Trees()) != 3 {
		t.Errorf("trees = %d after the next interval, want 3", len(s.Trees()))
	}
}

func TestSequencerPrimalKeepsStartTimer(t *testing.T) {
	cfg := SpookyConfig()
	cfg.Trees.Depths = []int{2}
	s := newTestSequencer(cfg)

	now := 10 * time.Second
	s.Advance(now)
	primal := s.Trees()[0]
	for !primal.Finished() {
		if len(s.Trees()) != 1 {
			t.Fatal("tree spawned before the primal tree finished")
		}
		run(s, &now, 1)
	}
	if len(s.Trees()) != 2 {
		t.Errorf("trees = %d on the tick the primal finished, want 2", len(s.Trees()))
	}
}

// --- Fruiting ---

func fruitingSequencer(cfg Config) (*Sequencer, time.Duration) {
	s := newTestSequencer(cfg)
	s.Advance(0)
	s.Advance(0)
	return s, 0
}

func TestSequencerFruitClaimsLeafPoints(t *testing.T) {
	cfg := CalmConfig()
	cfg.FruitSpawn = FruitSpawnConfig{Interval: 10 * time.Millisecond, MinInterval: 10 * time.Millisecond, Decay: 1, ClaimRadius: 5}
	s, now := fruitingSequencer(cfg)
	run(s, &now, 300)

	fruits := s.Fruits()
	if len(fruits) == 0 {
		t.Fatal("no fruit spawned")
	}
	if len(fruits) > len(s.LeafPoints()) {
		t.Fatalf("fruits = %d exceed leaf points %d", len(fruits), len(s.LeafPoints()))
	}
	for i, f := range fruits {
		onLeaf := false
		for _, pt := range s.LeafPoints() {
			if pt == f.Anchor {
				onLeaf = true
			}
		}
		if !onLeaf {
			t.Errorf("fruit %d at %v is not on a leaf point", i, f.Anchor)
		}
		for j := i + 1; j < len(fruits); j++ {
			if d := f.Anchor.Dist(fruits[j].Anchor); d < cfg.FruitSpawn.ClaimRadius {
				t.Errorf("fruits %d and %d only %v apart", i, j, d)
			}
		}
	}
	if avail := s.availableLeaves(); len(avail) != 0 {
		t.Errorf("%d leaf points still free after 300 ticks", len(avail))
	}
}

func TestSequencerFruitIntervalStrict(t *testing.T) {
	cfg := CalmConfig()
	s, _ := fruitingSequencer(cfg)
	s.Update(cfg.FruitSpawn.Interval)
	if len(s.Fruits()) != 0 {
		t.Fatal("fruit spawned at exactly the interval")
	}
	s.Update(cfg.FruitSpawn.Interval + tick)
	if len(s.Fruits()) != 1 {
		t.Fatalf("fruits = %d after the interval, want 1", len(s.Fruits()))
	}
}

func TestSequencerFruitIntervalDecays(t *testing.T) {
	cfg := CalmConfig()
	cfg.FruitSpawn = FruitSpawnConfig{Interval: 100 * time.Millisecond, MinInterval: 60 * time.Millisecond, Decay: 0.8, ClaimRadius: 5}
	s, _ := fruitingSequencer(cfg)

	s.Update(101 * time.Millisecond)
	if s.FruitInterval() != 80*time.Millisecond {
		t.Errorf("interval = %v, want 80ms", s.FruitInterval())
	}
	s.Update(182 * time.Millisecond)
	if s.FruitInterval() != 64*time.Millisecond {
		t.Errorf("interval = %v, want 64ms", s.FruitInterval())
	}
	s.Update(247 * time.Millisecond)
	if s.FruitInterval() != 60*time.Millisecond {
		t.Errorf("interval = %v, want floor 60ms", s.FruitInterval())
	}
	if len(s.Fruits()) != 3 {
		t.Errorf("fruits = %d, want 3", len(s.Fruits()))
	}
}

func TestSequencerFruitGrowsWhileFruiting(t *testing.T) {
	s, now := fruitingSequencer(CalmConfig())
	run(s, &now, 40)
	if len(s.Fruits()) != 1 {
		t.Fatalf("fruits = %d, want 1", len(s.Fruits()))
	}
	g := s.Fruits()[0].Growth()
	run(s, &now, 1)
	if s.Fruits()[0].Growth() <= g {
		t.Error("fruit did not grow")
	}
}

func TestSequencerLateTreeSpawn(t *testing.T) {
	cfg := SpookyConfig()
	late := cfg.Trees.LateInterval
	s, _ := fruitingSequencer(cfg)

	s.Update(late)
	if len(s.Trees()) != 1 {
		t.Fatalf("trees = %d at exactly the late interval, want 1", len(s.Trees()))
	}
	s.Update(late + tick)
	if len(s.Trees()) != 2 {
		t.Fatalf("trees = %d after the late interval, want 2", len(s.Trees()))
	}
	if p := s.Trees()[1].Params().Base; !onEdge(p, cfg) {
		t.Errorf("late tree at %v, want a screen edge", p)
	}

	s.Advance(late + tick)
	s.Update(2*late + tick)
	if len(s.Trees()) != 2 {
		t.Fatalf("trees = %d one late interval after the last spawn, want 2", len(s.Trees()))
	}
	s.Update(2*late + 2*tick)
	if len(s.Trees()) != 3 {
		t.Errorf("trees = %d in butterflies, want 3", len(s.Trees()))
	}
}

func TestSequencerNoLateTreesWhenDisabled(t *testing.T) {
	cfg := CalmConfig()
	s, now := fruitingSequencer(cfg)
	run(s, &now, 3000)
	if len(s.Trees()) != 1 {
		t.Fatalf("trees = %d while fruiting, want 1", len(s.Trees()))
	}
	s.Advance(now)
	run(s, &now, 3000)
	if len(s.Trees()) != 1 {
		t.Errorf("trees = %d in butterflies, want 1", len(s.Trees()))
	}
}

func TestSequencerRevealSpeedPerState(t *testing.T) {
	cfg := SpookyConfig()
	delay := cfg.Trees.Reveal.Delay
	tests := []struct {
		name     string
		advances int
		speed    float64
	}{
		{"fruiting", 2, cfg.Trees.SpeedFruiting},
		{"butterflies", 3, cfg.Trees.SpeedButterflies},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSequencer(cfg)
			for i := 0; i < tt.advances; i++ {
				s.Advance(0)
			}
			tree := s.Trees()[0]
			first := time.Duration(float64(delay) / tt.speed)

			s.Update(first - time.Millisecond)
			if n := len(tree.Revealed()); n != 0 {
				t.Fatalf("revealed = %d before %v, want 0", n, first)
			}
			s.Update(first)
			if n := len(tree.Revealed()); n != 1 {
				t.Fatalf("revealed = %d at %v, want 1", n, first)
			}

			second := first + time.Duration(float64(tree.Delay())/tt.speed)
			s.Update(second - time.Millisecond)
			if n := len(tree.Revealed()); n != 1 {
				t.Fatalf("revealed = %d before %v, want 1", n, second)
			}
			s.Update(second)
			if n := len(tree.Revealed()); n != 2 {
				t.Errorf("revealed = %d at %v, want 2", n, second)
			}
		})
	}
}

// --- Butterflies ---

func grownFruit(at Vec2) *Fruit {
	f := NewFruit(NewRand(1), at, FruitConfig{Size: 8, GrowthRate: 1, Color: RGB(255, 0, 0)})
	f.Update()
	return f
}

func TestSequencerButterflyTakesOldestGrownFruit(t *testing.T) {
	cfg := CalmConfig()
	s := newTestSequencer(cfg)
	s.state = StateButterflies

	young := NewFruit(NewRand(1), Vec2{1, 1}, cfg.Fruit)
	first := grownFruit(Vec2{2, 2})
	second := grownFruit(Vec2{3, 3})
	s.fruits = []*Fruit{young, first, second}

	step := cfg.ButterflyInterval + time.Millisecond
	s.Update(step)
	if len(s.Butterflies()) != 1 {
		t.Fatalf("butterflies = %d, want 1", len(s.Butterflies()))
	}
	if got := s.Fruits(); len(got) != 2 || got[0] != young || got[1] != second {
		t.Fatalf("fruits after first spawn = %v, want young and second", got)
	}

	s.Update(2 * step)
	if got := s.Fruits(); len(got) != 1 || got[0] != young {
		t.Fatalf("fruits after second spawn = %v, want young", got)
	}

	s.Update(3 * step)
	if len(s.Butterflies()) != 2 {
		t.Errorf("butterflies = %d, want 2 while the remaining fruit is unripe", len(s.Butterflies()))
	}
}

func TestSequencerButterflyIntervalStrict(t *testing.T) {
	cfg := CalmConfig()
	s := newTestSequencer(cfg)
	s.state = StateButterflies
	s.fruits = []*Fruit{grownFruit(Vec2{5, 5})}

	s.Update(cfg.ButterflyInterval)
	if len(s.Butterflies()) != 0 {
		t.Fatal("butterfly spawned at exactly the interval")
	}
	s.Update(cfg.ButterflyInterval + 1)
	if len(s.Butterflies()) != 1 {
		t.Fatal("butterfly not spawned after the interval")
	}
}

// --- Draw ---

func TestSequencerDrawByState(t *testing.T) {
	cfg := CalmConfig()
	s := newTestSequencer(cfg)
	s.fruits = []*Fruit{grownFruit(Vec2{5, 5})}
	s.butterflies = []*Butterfly{NewButterfly(NewRand(1), Vec2{9, 9}, cfg.Butterfly)}

	draw := func() *recorder {
		var rec recorder
		s.Draw(&rec)
		if len(rec.clears) != 1 || rec.clears[0] != s.Background() {
			t.Fatalf("clears = %v, want one background clear", rec.clears)
		}
		return &rec
	}

	if rec := draw(); len(rec.polys) != 0 {
		t.Errorf("idle drew %d polygons", len(rec.polys))
	}

	s.Advance(0)
	s.Update(0)
	rec := draw()
	if rec.countColor(cfg.Trees.Color) != 1 || len(rec.polys) != 1 {
		t.Errorf("growing drew %d polygons, want the revealed trunk only", len(rec.polys))
	}

	s.Advance(0)
	rec = draw()
	if n := rec.countColor(s.fruits[0].Color()); n != 1 {
		t.Errorf("fruiting drew %d fruit polygons, want 1", n)
	}
	if n := rec.countColor(cfg.Butterfly.Color); n != 0 {
		t.Errorf("fruiting drew %d butterfly polygons", n)
	}

	s.Advance(0)
	rec = draw()
	if n := rec.countColor(cfg.Butterfly.Color); n != 2 {
		t.Errorf("butterflies drew %d wing polygons, want 2", n)
	}
}

func TestSequencerStats(t *testing.T) {
	s := newTestSequencer(CalmConfig())
	s.Advance(0)
	s.Update(0)
	st := s.Stats()
	total, leaves := TreeSize(4)
	if st.State != StateGrowing || st.Trees != 1 || st.LeafPoints != leaves {
		t.Errorf("stats = %+v", st)
	}
	if st.Revealed != 1 || st.Pending != total-1 {
		t.Errorf("revealed/pending = %d/%d, want 1/%d", st.Revealed, st.Pending, total-1)
	}
}
