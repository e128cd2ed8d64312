// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"sort"

	"github.com/luxfi/provisioner/relaychain"
)

// SelectBitfields implements the bitfield selection of spec.md §4.4:
// one bitfield per validator, keyed by validator index, kept in
// ascending validator-index order for a deterministic inherent.
//
// A stale leaf's bitfields are never (re)selected — a stale
// activation means a prior fresh activation of the same leaf already
// produced a selection, and re-running it here would let late,
// out-of-band bitfields silently change an answer already handed out
// (a supplemented behavior original_source's leaf-status handling
// relies on; spec.md's distillation is silent on it).
func SelectBitfields(cores []relaychain.CoreState, bitfields []relaychain.SignedAvailabilityBitfield, leafStatus relaychain.LeafStatus) []relaychain.SignedAvailabilityBitfield {
	if leafStatus == relaychain.LeafStatusStale {
		return nil
	}

	best := make(map[relaychain.ValidatorIndex]relaychain.SignedAvailabilityBitfield)
	order := make([]relaychain.ValidatorIndex, 0, len(bitfields))

	for _, bf := range bitfields {
		if !bitfieldMatchesCores(bf, cores) {
			continue
		}
		existing, ok := best[bf.ValidatorIndex]
		if !ok {
			best[bf.ValidatorIndex] = bf
			order = append(order, bf.ValidatorIndex)
			continue
		}
		// Strictly more set bits replaces; a tie or fewer keeps
		// whichever arrived first.
		if bf.PopCount() > existing.PopCount() {
			best[bf.ValidatorIndex] = bf
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	selected := make([]relaychain.SignedAvailabilityBitfield, 0, len(order))
	for _, vi := range order {
		selected = append(selected, best[vi])
	}
	return selected
}

// bitfieldMatchesCores rejects a bitfield that claims availability for
// a core that isn't occupied, or whose length doesn't match the core
// table — both signs of a bitfield produced against a different relay
// parent than the one it was submitted for.
func bitfieldMatchesCores(bf relaychain.SignedAvailabilityBitfield, cores []relaychain.CoreState) bool {
	if len(bf.Payload) != len(cores) {
		return false
	}
	for i, set := range bf.Payload {
		if set && cores[i].Kind != relaychain.CoreOccupied {
			return false
		}
	}
	return true
}
