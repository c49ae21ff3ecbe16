package orchard

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Game runs a Sequencer inside the ebiten loop: one tick per frame, input
// polled once per frame and applied before the sequencer updates.
type Game struct {
	cfg     Config
	log     *slog.Logger
	rng     Rand
	seq     *Sequencer
	keys    ActionSource
	midi    CCSource
	trigger Trigger
	runner  *ScriptRunner

	frames uint64
	now    time.Duration

	renderer        *ScreenRenderer
	fps             fpsOverlay
	injectQueue     []syntheticEvent
	screenshotQueue []string
	claimWarned     bool
}

// Option customizes a Game.
type Option func(*Game)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) { g.log = l }
}

// WithRand replaces the random source seeded from Config.Seed.
func WithRand(r Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithKeys sets the keyboard (or other) action source.
func WithKeys(src ActionSource) Option {
	return func(g *Game) { g.keys = src }
}

// WithMIDI sets the control-change source.
func WithMIDI(src CCSource) Option {
	return func(g *Game) { g.midi = src }
}

// WithScript attaches a script runner that drives the game frame by frame.
func WithScript(r *ScriptRunner) Option {
	return func(g *Game) { g.runner = r }
}

// NewGame validates cfg and builds an idle game.
func NewGame(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		cfg:     cfg,
		log:     slog.Default(),
		trigger: cfg.MIDI.Trigger,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		g.log.Debug("seeding random source", "seed", seed)
		g.rng = NewRand(seed)
	}
	g.seq = NewSequencer(cfg, g.rng, 0)
	return g, nil
}

// Sequencer returns the simulation state.
func (g *Game) Sequencer() *Sequencer {
	return g.seq
}

// Frames returns the number of completed updates.
func (g *Game) Frames() uint64 {
	return g.frames
}

// Now returns the frame clock: completed updates times the tick period.
func (g *Game) Now() time.Duration {
	return time.Duration(g.frames) * time.Second / time.Duration(g.cfg.TPS)
}

// Update implements ebiten.Game. It returns ebiten.Termination on quit.
func (g *Game) Update() error {
	g.now = g.Now()
	defer func() { g.frames++ }()

	if g.runner != nil {
		g.runner.step(g)
	}
	if !g.drainInjected() {
		return ebiten.Termination
	}
	if g.keys != nil {
		for _, a := range g.keys.Poll() {
			if !g.handleAction(a) {
				return ebiten.Termination
			}
		}
	}
	if g.midi != nil {
		for _, cc := range g.midi.Poll() {
			g.handleCC(cc)
		}
	}

	g.seq.Update(g.now)

	if g.cfg.ShowFPS {
		g.fps.update(g.cfg.TPS)
	}
	g.debugStats()
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.renderer == nil {
		g.renderer = NewScreenRenderer(screen)
	} else {
		g.renderer.SetTarget(screen)
	}
	g.seq.Draw(g.renderer)
	if g.cfg.ShowFPS {
		g.fps.draw(screen)
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The simulation uses the outside size as its
// bounds.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.seq.SetBounds(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until the game quits.
func (g *Game) Run() error {
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetFullscreen(g.cfg.Fullscreen)
	ebiten.SetTPS(g.cfg.TPS)
	g.log.Info("starting", "title", g.cfg.Title, "width", g.cfg.Width, "height", g.cfg.Height,
		"tps", g.cfg.TPS, "style", g.cfg.Trees.Style, "midi", g.midi != nil)
	return ebiten.RunGame(g)
}

// handleAction applies one action. It returns false on quit.
func (g *Game) handleAction(a Action) bool {
	switch a {
	case ActionQuit:
		g.log.Info("quit requested", "frame", g.frames)
		return false
	case ActionAdvance:
		g.advance()
	case ActionCycleBackground:
		g.seq.CycleBackground()
		g.log.Debug("background cycled", "index", g.seq.Stats().Background)
	case ActionReset:
		g.seq.Reset(g.now)
		g.trigger.Reset()
		g.log.Info("reset")
	case ActionScreenshot:
		g.Screenshot("frame")
	}
	return true
}

// handleCC feeds one control-change message through the trigger.
func (g *Game) handleCC(cc ControlChange) {
	g.log.Debug("midi event", "status", cc.Status, "controller", cc.Controller, "value", cc.Value)
	if g.trigger.Fire(cc) {
		g.advance()
	}
}

func (g *Game) advance() {
	from := g.seq.State()
	if g.seq.Advance(g.now) {
		g.log.Info("state changed", "from", from, "to", g.seq.State(), "trees", len(g.seq.Trees()))
	}
}
