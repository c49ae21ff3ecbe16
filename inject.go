package orchard

// syntheticEvent is a queued action or control-change message. Exactly one
// of the two is set.
type syntheticEvent struct {
	action Action
	cc     *ControlChange
}

// InjectAction queues an action as if its key had been pressed. The event is
// consumed on the next frame's Update, ahead of real input.
func (g *Game) InjectAction(a Action) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{action: a})
}

// InjectCC queues a control-change message as if it had arrived from the
// MIDI input. It goes through the same trigger as hardware messages.
func (g *Game) InjectCC(cc ControlChange) {
	g.injectQueue = append(g.injectQueue, syntheticEvent{cc: &cc})
}

// drainInjected applies every queued synthetic event. It returns false if a
// quit action was among them.
func (g *Game) drainInjected() bool {
	if len(g.injectQueue) == 0 {
		return true
	}
	queue := g.injectQueue
	g.injectQueue = nil
	for _, evt := range queue {
		if evt.cc != nil {
			g.handleCC(*evt.cc)
			continue
		}
		if !g.handleAction(evt.action) {
			return false
		}
	}
	return true
}
