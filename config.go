package orchard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// SpawnPolicy selects where new trees come from.
type SpawnPolicy uint8

const (
	// SpawnBottom grows every tree upward from the bottom edge.
	SpawnBottom SpawnPolicy = iota
	// SpawnEdges grows trees inward from a random screen edge.
	SpawnEdges
)

func (p SpawnPolicy) String() string {
	switch p {
	case SpawnBottom:
		return "bottom"
	case SpawnEdges:
		return "edges"
	default:
		return "unknown"
	}
}

// PrimalTree fixes the parameters of the first tree. When nil the first tree
// is drawn from the same random ranges as every other tree.
type PrimalTree struct {
	Length float64 `yaml:"length"`
	Width  float64 `yaml:"width"`
	Depth  int     `yaml:"depth"`
}

// TreeConfig controls tree generation, reveal speed and spawning.
type TreeConfig struct {
	Style  BranchStyle  `yaml:"style"`
	Policy SpawnPolicy  `yaml:"policy"`
	Reveal RevealTiming `yaml:"reveal"`
	Color  Color        `yaml:"color"`

	Primal *PrimalTree `yaml:"primal"`
	Length Range       `yaml:"length"`
	Width  Range       `yaml:"width"`
	Depths []int       `yaml:"depths"`

	// Reveal speed factor per state.
	SpeedGrowing     float64 `yaml:"speed_growing"`
	SpeedFruiting    float64 `yaml:"speed_fruiting"`
	SpeedButterflies float64 `yaml:"speed_butterflies"`

	// FastInterval spawns trees while growing once the primal tree finished.
	FastInterval time.Duration `yaml:"fast_interval"`
	// SlowInterval spawns trees while the primal tree is still growing, but
	// only while fewer than SlowLimit trees exist. Zero disables it.
	SlowInterval time.Duration `yaml:"slow_interval"`
	SlowLimit    int           `yaml:"slow_limit"`
	// LateInterval spawns trees during fruiting and butterflies regardless of
	// the primal tree. Zero disables it.
	LateInterval time.Duration `yaml:"late_interval"`

	EdgeMargin  float64 `yaml:"edge_margin"`  // bottom spawns keep this far from the sides
	AngleJitter float64 `yaml:"angle_jitter"` // edge spawns perturb the inward angle by +-jitter
}

// FruitSpawnConfig controls how often fruit appears on leaf points.
type FruitSpawnConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MinInterval time.Duration `yaml:"min_interval"`
	Decay       float64       `yaml:"decay"`        // applied to Interval after each spawn
	ClaimRadius float64       `yaml:"claim_radius"` // leaf points this close to a fruit are taken
}

// MIDIConfig selects the control-change input.
type MIDIConfig struct {
	Enabled bool    `yaml:"enabled"`
	Port    string  `yaml:"port"` // name prefix, empty takes the first input
	Trigger Trigger `yaml:"trigger"`
}

// Config is the complete configuration of one animation variant.
type Config struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	TPS           int    `yaml:"tps"`
	Seed          uint64 `yaml:"seed"` // zero picks a seed from the clock
	ShowFPS       bool   `yaml:"show_fps"`
	Debug         bool   `yaml:"debug"`
	DebugEvery    int    `yaml:"debug_every"` // frames between stats lines
	ScreenshotDir string `yaml:"screenshot_dir"`

	Background Color   `yaml:"background"`
	Palette    []Color `yaml:"palette"`

	Trees             TreeConfig       `yaml:"trees"`
	Fruit             FruitConfig      `yaml:"fruit"`
	FruitSpawn        FruitSpawnConfig `yaml:"fruit_spawn"`
	Butterfly         ButterflyConfig  `yaml:"butterfly"`
	ButterflyInterval time.Duration    `yaml:"butterfly_interval"`

	MIDI MIDIConfig `yaml:"midi"`
}

// CalmConfig returns the keyboard-driven variant: black trees on a light
// background, one branch revealed per frame.
func CalmConfig() Config {
	return Config{
		Title:         "Orchard",
		Width:         1280,
		Height:        720,
		TPS:           60,
		DebugEvery:    120,
		ScreenshotDir: "screenshots",
		Background:    RGB(255, 255, 255),
		Palette:       []Color{RGB(255, 255, 255), RGB(240, 240, 255), RGB(255, 240, 240)},
		Trees: TreeConfig{
			Style:            StyleCalm,
			Policy:           SpawnBottom,
			Reveal:           RevealTiming{Decay: 1},
			Color:            RGB(0, 0, 0),
			Primal:           &PrimalTree{Length: 80, Width: 16, Depth: 4},
			Length:           Range{50, 100},
			Width:            Range{12, 20},
			Depths:           []int{2, 3, 4},
			SpeedGrowing:     1,
			SpeedFruiting:    1,
			SpeedButterflies: 1,
			FastInterval:     200 * time.Millisecond,
			SlowInterval:     1000 * time.Millisecond,
			SlowLimit:        1,
			EdgeMargin:       50,
		},
		Fruit: FruitConfig{
			Size:       8,
			GrowthRate: 0.01,
			Color:      RGB(255, 0, 0),
			Shapes:     []FruitShape{ShapeTrapezoid, ShapeDiamond, ShapeTriangle},
		},
		FruitSpawn: FruitSpawnConfig{
			Interval:    500 * time.Millisecond,
			MinInterval: 500 * time.Millisecond,
			Decay:       1,
			ClaimRadius: 5,
		},
		Butterfly: ButterflyConfig{
			InitialSpeed:  Range{-2, 2},
			Jitter:        0.1,
			MaxSpeed:      3,
			FlapRate:      0.5,
			FlapAmplitude: 10,
			WingSize:      5,
			Scale:         Range{1, 1},
			Color:         RGB(200, 100, 200),
		},
		ButterflyInterval: 100 * time.Millisecond,
		MIDI: MIDIConfig{
			Trigger: Trigger{Controller: 18, Threshold: 64},
		},
	}
}

// SpookyConfig returns the MIDI-driven variant: pale, chaotic trees growing
// in from every edge of a dark background with accelerating reveal.
func SpookyConfig() Config {
	cfg := CalmConfig()
	cfg.Title = "Orchard: Spooky"
	cfg.Background = RGB(12, 0, 38)
	cfg.Palette = []Color{RGB(10, 10, 30), RGB(30, 10, 30), RGB(10, 30, 30)}
	cfg.Trees = TreeConfig{
		Style:  StyleSpooky,
		Policy: SpawnEdges,
		Reveal: RevealTiming{
			Delay:    130 * time.Millisecond,
			Decay:    0.95,
			MinDelay: 50 * time.Millisecond,
		},
		Color:            RGB(252, 250, 255),
		Length:           Range{40, 160},
		Width:            Range{5, 25},
		Depths:           []int{2, 6},
		SpeedGrowing:     3,
		SpeedFruiting:    0.5,
		SpeedButterflies: 0.5,
		FastInterval:     2000 * time.Millisecond,
		LateInterval:     15000 * time.Millisecond,
		AngleJitter:      0.2,
	}
	cfg.Fruit = FruitConfig{
		Size:       12,
		GrowthRate: 0.005,
		Color:      RGB(198, 174, 255),
		Shapes:     []FruitShape{ShapeStacked2, ShapeStacked3},
	}
	cfg.FruitSpawn = FruitSpawnConfig{
		Interval:    1000 * time.Millisecond,
		MinInterval: 300 * time.Millisecond,
		Decay:       0.98,
		ClaimRadius: 5,
	}
	cfg.Butterfly.FlapRate = 1
	cfg.Butterfly.WingSize = 4
	cfg.Butterfly.Scale = Range{1.6, 2.4}
	cfg.Butterfly.Color = RGB(200, 100, 250)
	cfg.MIDI.Enabled = true
	return cfg
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.TPS <= 0:
		return fmt.Errorf("config: tps must be positive, got %d", c.TPS)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("config: invalid size %dx%d", c.Width, c.Height)
	case len(c.Palette) == 0:
		return errors.New("config: palette is empty")
	case len(c.Trees.Depths) == 0:
		return errors.New("config: trees.depths is empty")
	case c.Trees.SpeedGrowing <= 0 || c.Trees.SpeedFruiting <= 0 || c.Trees.SpeedButterflies <= 0:
		return errors.New("config: tree speeds must be positive")
	case c.Fruit.GrowthRate <= 0 || c.Fruit.GrowthRate > 1:
		return fmt.Errorf("config: fruit.growth_rate must be in (0, 1], got %v", c.Fruit.GrowthRate)
	case len(c.Fruit.Shapes) == 0:
		return errors.New("config: fruit.shapes is empty")
	case c.Butterfly.MaxSpeed <= 0:
		return errors.New("config: butterfly.max_speed must be positive")
	}
	for name, r := range map[string]Range{
		"trees.length":            c.Trees.Length,
		"trees.width":             c.Trees.Width,
		"butterfly.initial_speed": c.Butterfly.InitialSpeed,
		"butterfly.scale":         c.Butterfly.Scale,
	} {
		if r.Min > r.Max {
			return fmt.Errorf("config: %s min %v exceeds max %v", name, r.Min, r.Max)
		}
	}
	for _, d := range c.Trees.Depths {
		if d < 0 {
			return fmt.Errorf("config: negative tree depth %d", d)
		}
	}
	return nil
}

// LoadConfig reads a YAML file and overlays it on base. Keys missing from the
// file keep base's values.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data, base)
}

// LoadSettings builds a config from base, an optional YAML file and the
// ORCHARD_* environment, in that order, so environment values win over the
// file. An empty path skips the file.
func LoadSettings(base Config, path string, envFiles ...string) (Config, error) {
	cfg := base
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path, base); err != nil {
			return base, err
		}
	}
	if err := ApplyEnv(&cfg, envFiles...); err != nil {
		return base, fmt.Errorf("apply env: %w", err)
	}
	return cfg, nil
}

// ParseConfig overlays YAML data on base and validates the result.
func ParseConfig(data []byte, base Config) (Config, error) {
	cfg := base
	if base.Trees.Primal != nil {
		primal := *base.Trees.Primal
		cfg.Trees.Primal = &primal
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvSeed       = "ORCHARD_SEED"
	EnvMIDIPort   = "ORCHARD_MIDI_PORT"
	EnvFullscreen = "ORCHARD_FULLSCREEN"
	EnvDebug      = "ORCHARD_DEBUG"
)

// ApplyEnv overlays ORCHARD_* settings on cfg. Values come from the process
// environment first, then from the given dotenv files (".env" when none are
// named). Missing dotenv files are not an error.
func ApplyEnv(cfg *Config, files ...string) error {
	dotenv := map[string]string{}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Seed = seed
	}
	if v, ok := lookup(EnvMIDIPort); ok {
		cfg.MIDI.Port = v
	}
	if v, ok := lookup(EnvFullscreen); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFullscreen, err)
		}
		cfg.Fullscreen = b
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = b
	}
	return nil
}

// --- YAML decoding for enums and colors ---

// UnmarshalYAML accepts "#rrggbb" or a three-element [r, g, b] list of 8-bit
// channels.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		cc, err := colorful.Hex(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: color %q: %w", value.Line, value.Value, err)
		}
		*c = RGB(cc.RGB255())
		return nil
	case yaml.SequenceNode:
		var ch []uint8
		if err := value.Decode(&ch); err != nil {
			return fmt.Errorf("line %d: color: %w", value.Line, err)
		}
		if len(ch) != 3 {
			return fmt.Errorf("line %d: color needs 3 channels, got %d", value.Line, len(ch))
		}
		*c = RGB(ch[0], ch[1], ch[2])
		return nil
	}
	return fmt.Errorf("line %d: color must be a hex string or [r, g, b]", value.Line)
}

// UnmarshalYAML accepts [min, max].
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	var v []float64
	if err := value.Decode(&v); err != nil {
		return fmt.Errorf("line %d: range: %w", value.Line, err)
	}
	if len(v) != 2 {
		return fmt.Errorf("line %d: range needs [min, max], got %d values", value.Line, len(v))
	}
	*r = Range{v[0], v[1]}
	return nil
}

func (s *BranchStyle) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, s, []BranchStyle{StyleCalm, StyleSpooky})
}

func (p *SpawnPolicy) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, p, []SpawnPolicy{SpawnBottom, SpawnEdges})
}

func (s *FruitShape) UnmarshalYAML(value *yaml.Node) error {
	return decodeEnum(value, s, []FruitShape{ShapeTrapezoid, ShapeDiamond, ShapeTriangle, ShapeStacked2, ShapeStacked3})
}

// decodeEnum matches a scalar against the String() names of choices.
func decodeEnum[T fmt.Stringer](value *yaml.Node, out *T, choices []T) error {
	name := strings.ToLower(strings.TrimSpace(value.Value))
	for _, c := range choices {
		if c.String() == name {
			*out = c
			return nil
		}
	}
	names := make([]string, len(choices))
	for i, c := range choices {
		names[i] = c.String()
	}
	return fmt.Errorf("line %d: unknown value %q (want one of %s)", value.Line, value.Value, strings.Join(names, ", "))
}
