// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package subsystem declares the outbound capability interfaces the
// selection pipeline calls into: the runtime API, the chain API, the
// dispute coordinator and the candidate backing subsystem (spec.md
// §6). Each is a thin, testable stand-in for what would otherwise be
// a message sent across the overseer bus; modeling them as a
// polymorphic sender interface (design note §9, adapted from the
// teacher's networking/sender.Sender) lets the selectors be exercised
// against hand-written fakes instead of a live overseer.
package subsystem

import (
	"context"

	"github.com/luxfi/provisioner/relaychain"
)

// RuntimeApi answers the runtime-state questions the candidate and
// dispute selectors need.
type RuntimeApi interface {
	// AvailabilityCores returns the scheduling state of every core at
	// rp, in core-index order.
	AvailabilityCores(ctx context.Context, rp relaychain.RelayParent) ([]relaychain.CoreState, error)

	// PersistedValidationData returns the data a candidate for para
	// under assumption must commit to, or ok=false if the runtime has
	// none (the core should be skipped).
	PersistedValidationData(
		ctx context.Context,
		rp relaychain.RelayParent,
		para relaychain.ParaID,
		assumption relaychain.OccupiedCoreAssumption,
	) (data []byte, ok bool, err error)

	// OnChainDisputes returns the runtime's view of disputes already
	// recorded on chain as of rp. Callers treat a transport error as
	// an empty result to preserve liveness (spec.md §4.6/§7).
	OnChainDisputes(ctx context.Context, rp relaychain.RelayParent) (map[relaychain.DisputeKey]struct{}, error)
}

// ChainApi answers block-metadata questions.
type ChainApi interface {
	// BlockNumber returns the height of rp, or ok=false if rp is
	// unknown to the chain API (callers then take 0 as the number of
	// the block under construction).
	BlockNumber(ctx context.Context, rp relaychain.RelayParent) (number relaychain.BlockNumber, ok bool, err error)
}

// DisputeCoordinator is the provisioner's view of the dispute
// coordinator subsystem.
type DisputeCoordinator interface {
	// RecentDisputes returns the keys of every dispute the
	// coordinator has ever seen for the active session window.
	RecentDisputes(ctx context.Context) ([]relaychain.DisputeKey, error)

	// ActiveDisputes returns the keys of disputes still unconcluded.
	ActiveDisputes(ctx context.Context) ([]relaychain.DisputeKey, error)

	// QueryCandidateVotes loads the recorded votes for each requested
	// key. Keys with no recorded votes are omitted from the result.
	QueryCandidateVotes(
		ctx context.Context,
		keys []relaychain.DisputeKey,
	) (map[relaychain.DisputeKey]relaychain.CandidateVotes, error)
}

// CandidateBacking is the provisioner's view of the candidate backing
// subsystem.
type CandidateBacking interface {
	// GetBackedCandidates resolves each requested candidate hash to
	// its full BackedCandidate. The returned slice must be an
	// order-preserving subsequence of hashes (spec.md §4.5 step 5);
	// the candidate selector verifies this and fails with
	// ErrBackedCandidateOrderingProblem if it is not.
	GetBackedCandidates(
		ctx context.Context,
		rp relaychain.RelayParent,
		hashes []relaychain.CandidateHash,
	) ([]relaychain.BackedCandidate, error)
}
