package orchard

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a discrete input event understood by the game loop.
type Action uint8

const (
	ActionNone            Action = iota
	ActionQuit                   // leave the game loop
	ActionAdvance                // move the sequencer to its next state
	ActionCycleBackground        // step through the background palette
	ActionReset                  // clear everything and return to idle
	ActionScreenshot             // capture the next drawn frame
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionAdvance:
		return "advance"
	case ActionCycleBackground:
		return "cycle"
	case ActionReset:
		return "reset"
	case ActionScreenshot:
		return "screenshot"
	default:
		return "none"
	}
}

// ActionSource delivers the actions that happened since the previous poll.
// Poll must not block.
type ActionSource interface {
	Poll() []Action
}

// KeyMap binds keys to actions.
type KeyMap map[ebiten.Key]Action

// CalmKeys is the keyboard variant's binding: N advances, S cycles the
// background, C resets, Escape quits.
func CalmKeys() KeyMap {
	return KeyMap{
		ebiten.KeyEscape: ActionQuit,
		ebiten.KeyN:      ActionAdvance,
		ebiten.KeyS:      ActionCycleBackground,
		ebiten.KeyC:      ActionReset,
		ebiten.KeyF12:    ActionScreenshot,
	}
}

// SpookyKeys is the MIDI variant's binding. It has no reset; N advances as a
// stand-in for the MIDI trigger.
func SpookyKeys() KeyMap {
	return KeyMap{
		ebiten.KeyEscape: ActionQuit,
		ebiten.KeyN:      ActionAdvance,
		ebiten.KeyS:      ActionCycleBackground,
		ebiten.KeyF12:    ActionScreenshot,
	}
}

// KeyboardSource reports key presses mapped through a KeyMap. Keys are
// polled in a fixed order so simultaneous presses resolve deterministically.
type KeyboardSource struct {
	keys  []ebiten.Key
	binds KeyMap
	buf   []Action
}

// NewKeyboardSource returns a source for the given bindings.
func NewKeyboardSource(m KeyMap) *KeyboardSource {
	keys := make([]ebiten.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return &KeyboardSource{keys: keys, binds: m}
}

// Poll returns one action per key pressed this frame. The returned slice is
// reused by the next call.
func (k *KeyboardSource) Poll() []Action {
	k.buf = k.buf[:0]
	for _, key := range k.keys {
		if inpututil.IsKeyJustPressed(key) {
			k.buf = append(k.buf, k.binds[key])
		}
	}
	return k.buf
}
