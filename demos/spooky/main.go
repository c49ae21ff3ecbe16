// Spooky grows jagged trees inward from the window edges on a dark
// background. A MIDI control change above the configured threshold advances
// the animation; N does the same from the keyboard. S cycles the background,
// F12 saves a screenshot and Esc quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phanxgames/orchard"
	"github.com/phanxgames/orchard/midiport"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
	slog.SetDefault(logger)
}

// midiInput is an open MIDI port feeding the game.
type midiInput interface {
	orchard.CCSource
	Close() error
}

type midiOpener func(prefix string, log *slog.Logger) (midiInput, error)

func openPort(prefix string, log *slog.Logger) (midiInput, error) {
	port, err := midiport.Open(prefix, log)
	if err != nil {
		return nil, err
	}
	return port, nil
}

func playGame(g *orchard.Game) error { return g.Run() }

func main() {
	if err := run(os.Args[1:], openPort, playGame); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("spooky failed", "err", err)
		os.Exit(1)
	}
}

// run parses args, builds the game and plays it. The MIDI port is closed
// before run returns.
func run(args []string, open midiOpener, play func(*orchard.Game) error) error {
	fs := flag.NewFlagSet("spooky", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML file overlaid on the spooky defaults")
		envFile    = fs.String("env", ".env", "dotenv file with ORCHARD_* settings")
		seed       = fs.Uint64("seed", 0, "random seed (0 picks one from the clock)")
		debug      = fs.Bool("debug", false, "log debug output and periodic stats")
		fullscreen = fs.Bool("fullscreen", false, "start in fullscreen")
		scriptPath = fs.String("script", "", "JSON script to play instead of waiting for input")
		noMIDI     = fs.Bool("no-midi", false, "run without a MIDI input")
		midiPort   = fs.String("midi", "", "MIDI input name prefix (empty takes the first port)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := orchard.LoadSettings(orchard.SpookyConfig(), *configPath, *envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *midiPort != "" {
		cfg.MIDI.Port = *midiPort
	}
	cfg.MIDI.Enabled = cfg.MIDI.Enabled && !*noMIDI
	cfg.Debug = cfg.Debug || *debug
	cfg.Fullscreen = cfg.Fullscreen || *fullscreen
	initLogger(cfg.Debug)

	opts := []orchard.Option{
		orchard.WithLogger(logger),
		orchard.WithKeys(orchard.NewKeyboardSource(orchard.SpookyKeys())),
	}
	if cfg.MIDI.Enabled {
		port, err := open(cfg.MIDI.Port, logger)
		if err != nil {
			if errors.Is(err, midiport.ErrUnavailable) {
				logger.Error("rebuild with CGO_ENABLED=1 or pass -no-midi")
			}
			return fmt.Errorf("midi: %w", err)
		}
		defer port.Close()
		opts = append(opts, orchard.WithMIDI(port))
	}
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			return fmt.Errorf("script: %w", err)
		}
		runner, err := orchard.LoadScript(data)
		if err != nil {
			return fmt.Errorf("script: %w", err)
		}
		opts = append(opts, orchard.WithScript(runner))
	}

	game, err := orchard.NewGame(cfg, opts...)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if err := play(game); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
