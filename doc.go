// Package orchard is a generative tree animation for [Ebitengine].
//
// Trees grow branch by branch from a pre-generated topology, fruit appears on
// their leaf points and slowly ripens, and ripe fruit turns into butterflies
// that wander around the window. A four-state [Sequencer] drives the whole
// thing:
//
//	idle -> growing -> fruiting -> butterflies
//
// Each advance moves one state forward. Advances come from the keyboard
// ([KeyboardSource]) or from a MIDI control change passing a [Trigger].
//
// # Quick start
//
// [NewGame] wraps a sequencer in an [ebiten.Game]:
//
//	cfg := orchard.CalmConfig()
//	game, err := orchard.NewGame(cfg,
//		orchard.WithKeys(orchard.NewKeyboardSource(orchard.CalmKeys())),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := game.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// Two variants ship as defaults. [CalmConfig] grows black trees up from the
// bottom of a white window, one branch per frame. [SpookyConfig] grows pale,
// chaotic trees inward from every edge of a dark window with a reveal delay
// that shrinks as the tree grows, and is meant to be driven by MIDI (see the
// midiport subpackage).
//
// # Configuration
//
// [Config] holds every tunable. [LoadConfig] overlays a YAML file on one of
// the defaults, and [ApplyEnv] reads ORCHARD_* variables from the environment
// or a .env file. [LoadSettings] does both, letting the environment win.
//
// # Determinism
//
// Every random draw goes through a [Rand]. Pass [WithRand] with a fixed
// source, or set Config.Seed, to reproduce the same trees. The simulation
// clock advances by exactly one tick per Update, so timing does not depend on
// wall time.
//
// # Scripted runs
//
// [LoadScript] reads a JSON list of steps (advance, reset, cycle, cc,
// screenshot, wait, quit) and [WithScript] plays it frame by frame through
// [Game.InjectAction] and [Game.InjectCC]:
//
//	{"steps": [
//		{"action": "advance"},
//		{"action": "wait", "frames": 120},
//		{"action": "cc", "controller": 18, "value": 100},
//		{"action": "screenshot", "label": "fruiting"},
//		{"action": "quit"}
//	]}
//
// [Ebitengine]: https://ebitengine.org
package orchard
