// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"context"
	"fmt"

	safemath "github.com/luxfi/provisioner/utils/math"

	"github.com/luxfi/provisioner/relaychain"
	"github.com/luxfi/provisioner/subsystem"
)

// wantedCandidate is one core's demand: the para it wants a candidate
// for, and the occupied-core assumption persisted validation data must
// be looked up under.
type wantedCandidate struct {
	ParaID     relaychain.ParaID
	Assumption relaychain.OccupiedCoreAssumption
}

// SelectCandidates implements the candidate selection of spec.md §4.5:
// one backed candidate per eligible core, in core order, gated on the
// runtime's persisted validation data actually being available for the
// assumption the core is in.
func SelectCandidates(
	ctx context.Context,
	rp relaychain.RelayParent,
	cores []relaychain.CoreState,
	selectedBitfields []relaychain.SignedAvailabilityBitfield,
	rawCandidates []relaychain.CandidateReceipt,
	runtime subsystem.RuntimeApi,
	chain subsystem.ChainApi,
	backing subsystem.CandidateBacking,
) ([]relaychain.BackedCandidate, error) {
	number, ok, err := chain.BlockNumber(ctx, rp)
	if err != nil {
		return nil, Recoverable(fmt.Errorf("%w: %w", ErrCanceledBlockNumber, err))
	}
	// An rp unknown to the chain API leaves the block under construction
	// at 0.
	var currentBlock relaychain.BlockNumber
	if ok {
		next, err := safemath.Add64(uint64(number), 1)
		if err != nil {
			return nil, Fatal(fmt.Errorf("block_number overflow: %w", err))
		}
		currentBlock = relaychain.BlockNumber(next)
	}

	available := bitAvailability(cores, selectedBitfields)

	wanted := make([]wantedCandidate, 0, len(cores))
	for i, core := range cores {
		switch core.Kind {
		case relaychain.CoreFree:
			continue
		case relaychain.CoreScheduled:
			wanted = append(wanted, wantedCandidate{ParaID: core.Para, Assumption: relaychain.AssumptionFree})
		case relaychain.CoreOccupied:
			switch {
			case available[i]:
				// Available means the occupying candidate is about to
				// land; the core's demand is for whatever para is
				// scheduled to follow it, not the occupier itself. No
				// follow-up scheduled means no candidate for this core.
				if core.NextUpOnAvailable != nil {
					wanted = append(wanted, wantedCandidate{ParaID: *core.NextUpOnAvailable, Assumption: relaychain.AssumptionIncluded})
				}
			case currentBlock == core.TimeOutAt && core.NextUpOnTimeOut != nil:
				wanted = append(wanted, wantedCandidate{ParaID: *core.NextUpOnTimeOut, Assumption: relaychain.AssumptionTimedOut})
			}
			// Still occupied, not available, not exactly at the timeout
			// block: no candidate can land on this core this block.
		}
	}

	hashes := make([]relaychain.CandidateHash, 0, len(rawCandidates))
	seenHash := make(map[relaychain.CandidateHash]struct{}, len(rawCandidates))
	for _, c := range rawCandidates {
		h := c.Hash()
		if _, dup := seenHash[h]; dup {
			continue
		}
		seenHash[h] = struct{}{}
		hashes = append(hashes, h)
	}

	backed, err := backing.GetBackedCandidates(ctx, rp, hashes)
	if err != nil {
		return nil, Recoverable(fmt.Errorf("%w: %w", ErrCanceledBackedCandidates, err))
	}
	if err := verifyBackingOrder(hashes, backed); err != nil {
		return nil, err
	}

	byPara := make(map[relaychain.ParaID][]relaychain.BackedCandidate, len(backed))
	for _, bc := range backed {
		para := bc.Receipt.Descriptor.ParaID
		byPara[para] = append(byPara[para], bc)
	}

	seenNewCode := make(map[string]struct{})
	result := make([]relaychain.BackedCandidate, 0, len(wanted))
	for _, w := range wanted {
		candidates := byPara[w.ParaID]
		if len(candidates) == 0 {
			continue
		}
		cand := candidates[0]

		_, ok, err := runtime.PersistedValidationData(ctx, rp, w.ParaID, w.Assumption)
		if err != nil {
			return nil, Recoverable(fmt.Errorf("%w: %w", ErrCanceledPersistedValidation, err))
		}
		if !ok {
			// The runtime disagrees the core is actually in this
			// assumption; skip it rather than submit a candidate it
			// would reject.
			continue
		}

		if code := cand.Receipt.Commitments.NewValidationCode; code != nil {
			key := string(code)
			if _, dup := seenNewCode[key]; dup {
				continue
			}
			seenNewCode[key] = struct{}{}
		}

		result = append(result, cand)
	}

	return result, nil
}

// bitAvailability reports, per core, whether at least two thirds of
// the supplied bitfields mark it available. The supplied bitfields are
// already deduplicated one-per-validator by SelectBitfields, so their
// count stands in for the participating validator count.
func bitAvailability(cores []relaychain.CoreState, bitfields []relaychain.SignedAvailabilityBitfield) []bool {
	available := make([]bool, len(cores))
	total := len(bitfields)
	if total == 0 {
		return available
	}

	counts := make([]int, len(cores))
	for _, bf := range bitfields {
		for i, set := range bf.Payload {
			if i >= len(counts) {
				break
			}
			if set {
				counts[i]++
			}
		}
	}
	for i, c := range counts {
		if c*3 >= total*2 {
			available[i] = true
		}
	}
	return available
}

// verifyBackingOrder checks that backed preserves the relative order
// requested candidates were presented in, each at a strictly later
// position than the last — the same subsequence property spec.md §4.5
// requires of the backing subsystem's reply.
func verifyBackingOrder(requested []relaychain.CandidateHash, backed []relaychain.BackedCandidate) error {
	pos := make(map[relaychain.CandidateHash]int, len(requested))
	for i, h := range requested {
		pos[h] = i
	}
	last := -1
	for _, bc := range backed {
		idx, ok := pos[bc.Hash()]
		if !ok || idx <= last {
			return Recoverable(ErrBackedCandidateOrderingProblem)
		}
		last = idx
	}
	return nil
}
