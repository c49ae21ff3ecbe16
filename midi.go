package orchard

// MIDI status high nibble for Control Change messages.
const statusControlChange uint8 = 0xB0

// ControlChange is a raw MIDI control-change tuple as read from an input
// port.
type ControlChange struct {
	Status     uint8
	Controller uint8
	Value      uint8
}

// Channel returns the 0-based MIDI channel encoded in the status byte.
func (cc ControlChange) Channel() uint8 {
	return cc.Status & 0x0F
}

// IsControlChange reports whether the status byte is a Control Change on any
// channel.
func (cc ControlChange) IsControlChange() bool {
	return cc.Status&0xF0 == statusControlChange
}

// CCSource delivers the control-change messages buffered since the previous
// poll. Poll must not block.
type CCSource interface {
	Poll() []ControlChange
}

// Trigger turns control-change messages on one controller into "advance"
// edges.
//
// By default the trigger is level-triggered: every message above Threshold
// fires. With EdgeTriggered set, only a message crossing from at-or-below
// Threshold to above it fires, so a controller held high cannot fire twice.
type Trigger struct {
	Controller    uint8 `yaml:"controller"`
	Threshold     uint8 `yaml:"threshold"`
	EdgeTriggered bool  `yaml:"edge_triggered"`

	high bool
}

// Fire reports whether cc should advance the sequencer.
func (t *Trigger) Fire(cc ControlChange) bool {
	if !cc.IsControlChange() || cc.Controller != t.Controller {
		return false
	}
	above := cc.Value > t.Threshold
	if !t.EdgeTriggered {
		return above
	}
	fired := above && !t.high
	t.high = above
	return fired
}

// Reset forgets the last seen controller level.
func (t *Trigger) Reset() {
	t.high = false
}
