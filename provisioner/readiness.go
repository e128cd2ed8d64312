// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"time"

	"github.com/luxfi/provisioner/relaychain"
)

// readinessGate arms one pre-propose timer per active relay parent and
// reports, on fired, which one elapsed. Marking a parent ready is the
// only way a RequestInherentData for it gets answered; provisionable
// data keeps accumulating before and after. The timer is what starts
// that clock running as soon as a leaf activates.
type readinessGate struct {
	timeout time.Duration
	timers  map[relaychain.RelayParent]*time.Timer
	fired   chan relaychain.RelayParent
}

func newReadinessGate(timeout time.Duration) *readinessGate {
	return &readinessGate{
		timeout: timeout,
		timers:  make(map[relaychain.RelayParent]*time.Timer),
		fired:   make(chan relaychain.RelayParent, 1),
	}
}

// arm starts rp's pre-propose timer. Re-arming a parent whose timer is
// still pending is a no-op, so a leaf re-activated before its timer
// fires keeps the original deadline.
func (g *readinessGate) arm(rp relaychain.RelayParent) {
	if _, ok := g.timers[rp]; ok {
		return
	}
	g.timers[rp] = time.AfterFunc(g.timeout, func() {
		g.fired <- rp
	})
}

// disarm stops and forgets rp's timer, if any. Called on deactivation
// so a stale leaf never fires into an empty store.
func (g *readinessGate) disarm(rp relaychain.RelayParent) {
	if t, ok := g.timers[rp]; ok {
		t.Stop()
		delete(g.timers, rp)
	}
}

// fire is the channel the main loop selects on for elapsed timers.
func (g *readinessGate) fire() <-chan relaychain.RelayParent {
	return g.fired
}

// forget drops bookkeeping for rp once it has fired and been handled,
// without touching the timer (already stopped on fire).
func (g *readinessGate) forget(rp relaychain.RelayParent) {
	delete(g.timers, rp)
}
