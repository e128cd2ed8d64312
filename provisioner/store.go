// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import "github.com/luxfi/provisioner/relaychain"

// perParent is the state spec.md §3 names PerParent. It is exclusively
// owned by the store's owning goroutine (the main loop); nothing else
// ever mutates it, so no lock is needed — the same invariant the
// teacher's poll.set keeps for its map of in-flight polls.
type perParent struct {
	leaf             relaychain.ActivatedLeaf
	backedCandidates []relaychain.CandidateReceipt
	signedBitfields  []relaychain.SignedAvailabilityBitfield

	// isReady flips once the pre-propose timer fires. Before it flips,
	// RequestInherentData queues behind waiters; after, every request
	// gets its own fresh background assembly (spec.md §4.1/§5: "one
	// [assembly] per post-ready request").
	isReady bool

	waiters []chan<- InherentDataResult
}

// store is the PerParentStore of spec.md §2/§3: a map from relay
// parent to its PerParent state, mutated only by the main loop.
type store struct {
	parents map[relaychain.RelayParent]*perParent
}

func newStore() *store {
	return &store{parents: make(map[relaychain.RelayParent]*perParent)}
}

// activate inserts a fresh, not-ready PerParent for leaf, overwriting
// any prior entry for the same hash (a re-activation starts over).
func (s *store) activate(leaf relaychain.ActivatedLeaf) {
	s.parents[leaf.Hash] = &perParent{leaf: leaf}
}

// deactivate drops rp's PerParent entirely. Any waiters still queued
// are abandoned: their reply channels are simply never written to,
// the same as a dropped channel elsewhere in the module (spec.md §5,
// "dropping a waiter channel is tolerated").
func (s *store) deactivate(rp relaychain.RelayParent) {
	delete(s.parents, rp)
}

func (s *store) get(rp relaychain.RelayParent) (*perParent, bool) {
	pp, ok := s.parents[rp]
	return pp, ok
}

// appendBitfield records a raw, unvalidated bitfield for rp. A silent
// no-op if rp is absent.
func (s *store) appendBitfield(rp relaychain.RelayParent, sb relaychain.SignedAvailabilityBitfield) {
	if pp, ok := s.parents[rp]; ok {
		pp.signedBitfields = append(pp.signedBitfields, sb)
	}
}

// appendCandidate records a raw candidate receipt for rp.
func (s *store) appendCandidate(rp relaychain.RelayParent, receipt relaychain.CandidateReceipt) {
	if pp, ok := s.parents[rp]; ok {
		pp.backedCandidates = append(pp.backedCandidates, receipt)
	}
}

// enqueueWaiter queues reply to receive the next assembly's result.
// Only used before the parent becomes ready; once ready, a request is
// answered by its own dedicated assembly instead of queuing.
func (pp *perParent) enqueueWaiter(reply chan<- InherentDataResult) {
	pp.waiters = append(pp.waiters, reply)
}

// markReady flips the readiness gate. It does not itself start
// assembly; the caller drains the queued waiters separately.
func (pp *perParent) markReady() {
	pp.isReady = true
}

// drainWaiters returns every waiter queued before readiness and clears
// the queue. Called once, when the readiness gate fires, to hand the
// pre-ready batch to one shared background assembly.
func (pp *perParent) drainWaiters() []chan<- InherentDataResult {
	w := pp.waiters
	pp.waiters = nil
	return w
}

// snapshot copies the fields a background assembly needs by value, so
// concurrent provisionable-data arrivals after this point never alter
// an in-flight assembly (spec.md §3, "Ownership").
func (pp *perParent) snapshot() assemblySnapshot {
	candidates := make([]relaychain.CandidateReceipt, len(pp.backedCandidates))
	copy(candidates, pp.backedCandidates)
	bitfields := make([]relaychain.SignedAvailabilityBitfield, len(pp.signedBitfields))
	copy(bitfields, pp.signedBitfields)
	return assemblySnapshot{
		leaf:       pp.leaf,
		candidates: candidates,
		bitfields:  bitfields,
	}
}

// assemblySnapshot is the value-cloned input to one background
// assembly (spec.md §4.3).
type assemblySnapshot struct {
	leaf       relaychain.ActivatedLeaf
	candidates []relaychain.CandidateReceipt
	bitfields  []relaychain.SignedAvailabilityBitfield
}
