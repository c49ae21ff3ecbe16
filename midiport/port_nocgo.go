//go:build !cgo

package midiport

import "log/slog"

// Port is an open MIDI input. Without cgo there is no driver and Open always
// fails.
type Port struct {
	*queue
}

// Open always returns ErrUnavailable.
func Open(namePrefix string, log *slog.Logger) (*Port, error) {
	return nil, ErrUnavailable
}

// Name returns an empty string.
func (p *Port) Name() string { return "" }

// Close is a no-op.
func (p *Port) Close() error { return nil }
