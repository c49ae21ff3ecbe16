// Garden grows calm trees from the bottom of the window. Press N to advance
// through growing, fruiting and butterflies, S to cycle the background, C to
// reset, F12 to save a screenshot and Esc to quit.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phanxgames/orchard"
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

func playGame(g *orchard.Game) error { return g.Run() }

func main() {
	if err := run(os.Args[1:], playGame); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("garden failed", "err", err)
		os.Exit(1)
	}
}

// run parses args, builds the game and plays it.
func run(args []string, play func(*orchard.Game) error) error {
	fs := flag.NewFlagSet("garden", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML file overlaid on the calm defaults")
		envFile    = fs.String("env", ".env", "dotenv file with ORCHARD_* settings")
		seed       = fs.Uint64("seed", 0, "random seed (0 picks one from the clock)")
		debug      = fs.Bool("debug", false, "log debug output and periodic stats")
		fullscreen = fs.Bool("fullscreen", false, "start in fullscreen")
		scriptPath = fs.String("script", "", "JSON script to play instead of waiting for input")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := orchard.LoadSettings(orchard.CalmConfig(), *configPath, *envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	cfg.Debug = cfg.Debug || *debug
	cfg.Fullscreen = cfg.Fullscreen || *fullscreen
	initLogger(cfg.Debug)

	opts := []orchard.Option{
		orchard.WithLogger(logger),
		orchard.WithKeys(orchard.NewKeyboardSource(orchard.CalmKeys())),
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
