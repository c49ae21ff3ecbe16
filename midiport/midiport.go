// Package midiport reads control-change messages from a MIDI input port and
// hands them to an orchard.Game through the orchard.CCSource interface.
//
// Messages arrive on the driver's goroutine and are buffered until the game
// loop polls them. When the buffer is full, new messages are dropped.
package midiport

import (
	"errors"
	"sync"

	"github.com/phanxgames/orchard"
	"gitlab.com/gomidi/midi/v2"
)

// DefaultBuffer is the number of messages held between polls.
const DefaultBuffer = 256

var (
	// ErrUnavailable is returned by Open when the binary was built without
	// a MIDI driver.
	ErrUnavailable = errors.New("midiport: MIDI support not compiled in")
	// ErrNoPort is returned by Open when no input port matches.
	ErrNoPort = errors.New("midiport: no matching input port")
)

// queue buffers decoded control changes between the driver callback and
// Poll.
type queue struct {
	events  chan orchard.ControlChange
	mu      sync.Mutex
	dropped int
}

func newQueue(size int) *queue {
	if size <= 0 {
		size = DefaultBuffer
	}
	return &queue{events: make(chan orchard.ControlChange, size)}
}

// handle is the listener callback. Non control-change messages are ignored.
func (q *queue) handle(msg midi.Message, _ int32) {
	cc, ok := decode(msg)
	if !ok {
		return
	}
	select {
	case q.events <- cc:
	default:
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
	}
}

// Poll drains every buffered message without blocking.
func (q *queue) Poll() []orchard.ControlChange {
	var out []orchard.ControlChange
	for {
		select {
		case cc := <-q.events:
			out = append(out, cc)
		default:
			return out
		}
	}
}

// Dropped returns the number of messages lost to a full buffer.
func (q *queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

func decode(msg midi.Message) (orchard.ControlChange, bool) {
	var ch, controller, value uint8
	if !msg.GetControlChange(&ch, &controller, &value) {
		return orchard.ControlChange{}, false
	}
	return orchard.ControlChange{
		Status:     0xB0 | ch,
		Controller: controller,
		Value:      value,
	}, true
}
