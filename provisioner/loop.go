// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"context"

	"github.com/luxfi/provisioner/relaychain"
)

// handleSignal applies one overseer signal to the store and readiness
// gate. It returns stop=true when Run should return, and err is the
// value Run should return in that case.
func (p *Provisioner) handleSignal(_ context.Context, sig Signal) (stop bool, err error) {
	switch s := sig.(type) {
	case ActiveLeavesUpdate:
		for _, leaf := range s.Activated {
			p.store.activate(leaf)
			p.gate.arm(leaf.Hash)
			p.log.Debug("leaf activated", "relay_parent", leaf.Hash, "number", leaf.Number, "status", leaf.Status.String())
		}
		for _, rp := range s.Deactivated {
			p.store.deactivate(rp)
			p.gate.disarm(rp)
			p.log.Debug("leaf deactivated", "relay_parent", rp)
		}
		return false, nil

	case BlockFinalized:
		// Observed only; finalization never mutates provisioner state.
		return false, nil

	case Conclude:
		return true, nil

	default:
		return false, nil
	}
}

// handleMessage applies one inbound request/notification message.
func (p *Provisioner) handleMessage(ctx context.Context, msg Message) {
	switch m := msg.(type) {
	case RequestInherentData:
		p.handleRequestInherentData(ctx, m)

	case ProvisionableDataMsg:
		switch d := m.Data.(type) {
		case Bitfield:
			p.store.appendBitfield(m.RP, d.Bitfield)
		case BackedCandidate:
			p.store.appendCandidate(m.RP, d.Receipt)
		case Other:
			// Misbehavior reports and dispute statements observed in
			// backing are not consumed here.
		}
	}
}

// handleRequestInherentData either spawns a fresh assembly for the
// caller alone (rp is already ready — spec.md §4.1/§5 "one [assembly]
// per post-ready request"), queues the caller behind the readiness
// gate (not ready yet), or reports that rp is unknown.
func (p *Provisioner) handleRequestInherentData(ctx context.Context, m RequestInherentData) {
	pp, ok := p.store.get(m.RP)
	if !ok {
		m.Reply <- InherentDataResult{Err: Recoverable(ErrCanceledAvailabilityCores)}
		return
	}
	if !pp.isReady {
		pp.enqueueWaiter(m.Reply)
		return
	}

	snap := pp.snapshot()
	spawnAssembly(ctx, m.RP, snap, []chan<- InherentDataResult{m.Reply}, p.deps, p.cfg, p.freshRand(), p.done)
}

// onReady marks rp ready and, if any requests arrived before it was,
// spawns one shared background assembly answering that whole batch.
// Any request arriving after this point gets its own assembly via
// handleRequestInherentData instead.
func (p *Provisioner) onReady(ctx context.Context, rp relaychain.RelayParent) {
	p.gate.forget(rp)

	pp, ok := p.store.get(rp)
	if !ok {
		// Deactivated between arming and firing; nothing to do.
		return
	}
	pp.markReady()

	waiters := pp.drainWaiters()
	if len(waiters) == 0 {
		return
	}

	snap := pp.snapshot()
	spawnAssembly(ctx, rp, snap, waiters, p.deps, p.cfg, p.freshRand(), p.done)
}

// onAssemblyDone records the outcome's metrics and delivers the result
// to every waiter the assembly was run for. It does not touch the
// store: a relay parent may have several assemblies in flight for
// different requesters at once.
func (p *Provisioner) onAssemblyDone(outcome assemblyOutcome) {
	if outcome.result.Err != nil {
		p.met.OnAssemblyFailed()
		p.log.Warn("inherent data assembly failed", "relay_parent", outcome.rp, "err", outcome.result.Err)
	} else {
		p.met.OnAssemblySucceeded(len(outcome.result.Data.Bitfields))
	}
	for _, w := range outcome.waiters {
		w <- outcome.result
	}
}
