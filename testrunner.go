package orchard

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a playback script.
type scriptStep struct {
	Action     string `json:"action"`
	Label      string `json:"label,omitempty"`
	Controller uint8  `json:"controller,omitempty"`
	Value      uint8  `json:"value,omitempty"`
	Channel    uint8  `json:"channel,omitempty"`
	Frames     int    `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a playback script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected actions, control changes and screenshots
// across frames for unattended runs. Attach it with WithScript.
//
// Supported actions: advance, reset, cycle, quit, screenshot, cc, wait.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script and returns a runner ready to be attached
// to a Game.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "advance", "reset", "cycle", "quit", "screenshot", "cc", "wait":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Game.Update before
// input is drained.
func (r *ScriptRunner) step(g *Game) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(g.injectQueue) > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "advance":
		g.InjectAction(ActionAdvance)
	case "reset":
		g.InjectAction(ActionReset)
	case "cycle":
		g.InjectAction(ActionCycleBackground)
	case "quit":
		g.InjectAction(ActionQuit)
	case "screenshot":
		g.Screenshot(st.Label)
	case "cc":
		g.InjectCC(ControlChange{
			Status:     statusControlChange | st.Channel&0x0F,
			Controller: st.Controller,
			Value:      st.Value,
		})
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
