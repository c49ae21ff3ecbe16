//go:build cgo

package midiport

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Port is an open MIDI input. It implements orchard.CCSource.
type Port struct {
	*queue
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
	log    *slog.Logger
}

// Open opens the first input port whose name starts with namePrefix. An
// empty prefix takes the first port.
func Open(namePrefix string, log *slog.Logger) (*Port, error) {
	if log == nil {
		log = slog.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midiport: open driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiport: list inputs: %w", err)
	}
	var in drivers.In
	for _, candidate := range ins {
		log.Debug("midi input found", "name", candidate.String())
		if in == nil && strings.HasPrefix(candidate.String(), namePrefix) {
			in = candidate
		}
	}
	if in == nil {
		drv.Close()
		return nil, fmt.Errorf("%w: prefix %q among %d ports", ErrNoPort, namePrefix, len(ins))
	}
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("midiport: open %s: %w", in, err)
	}

	p := &Port{queue: newQueue(DefaultBuffer), driver: drv, in: in, log: log}
	stop, err := midi.ListenTo(in, p.handle, midi.HandleError(func(err error) {
		log.Warn("midi read error", "port", in.String(), "err", err)
	}))
	if err != nil {
		in.Close()
		drv.Close()
		return nil, fmt.Errorf("midiport: listen %s: %w", in, err)
	}
	p.stop = stop
	log.Info("midi input opened", "port", in.String())
	return p, nil
}

// Name returns the port's name.
func (p *Port) Name() string {
	return p.in.String()
}

// Close stops listening and releases the driver.
func (p *Port) Close() error {
	if p.stop != nil {
		p.stop()
	}
	if n := p.Dropped(); n > 0 {
		p.log.Warn("midi messages dropped", "count", n)
	}
	err := p.in.Close()
	if cerr := p.driver.Close(); err == nil {
		err = cerr
	}
	return err
}
