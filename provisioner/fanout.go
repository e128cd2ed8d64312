// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/luxfi/provisioner/config"
	"github.com/luxfi/provisioner/relaychain"
	"github.com/luxfi/provisioner/subsystem"
)

// assemblyOutcome is what a background assembly reports back to the
// main loop once it finishes, times out, or fails. waiters carries the
// reply channel(s) this particular assembly run answers: the batch of
// requests queued before readiness fired, or the single request that
// triggered this assembly after readiness (spec.md §4.1/§5, "one
// [assembly] per post-ready request").
type assemblyOutcome struct {
	rp      relaychain.RelayParent
	waiters []chan<- InherentDataResult
	result  InherentDataResult
}

// spawnAssembly runs one relay parent's assembly on its own goroutine,
// bounded by cfg.SendInherentDataTimeout, and reports the outcome on
// done. The goroutine never touches the store; it works only on snap
// (spec.md §4.3, "Ownership").
func spawnAssembly(
	ctx context.Context,
	rp relaychain.RelayParent,
	snap assemblySnapshot,
	waiters []chan<- InherentDataResult,
	deps assemblyDeps,
	cfg config.Config,
	rng *rand.Rand,
	done chan<- assemblyOutcome,
) {
	go func() {
		actx, cancel := context.WithTimeout(ctx, cfg.SendInherentDataTimeout)
		defer cancel()

		data, err := assemble(actx, rp, snap, deps, cfg, rng)
		if err != nil && actx.Err() != nil {
			err = Recoverable(fmt.Errorf("%w: %w", ErrSendInherentDataTimeout, err))
		}

		outcome := assemblyOutcome{rp: rp, waiters: waiters, result: InherentDataResult{Data: data, Err: err}}
		select {
		case done <- outcome:
		case <-ctx.Done():
		}
	}()
}

// assemblyDeps bundles the subsystem capabilities assembly needs,
// grouped so spawnAssembly and assemble take one argument instead of
// four.
type assemblyDeps struct {
	Runtime  subsystem.RuntimeApi
	Chain    subsystem.ChainApi
	Disputes subsystem.DisputeCoordinator
	Backing  subsystem.CandidateBacking
}

// assemble runs the three selectors in sequence and combines their
// output into one ProvisionerInherentData (spec.md §4.3).
func assemble(
	ctx context.Context,
	rp relaychain.RelayParent,
	snap assemblySnapshot,
	deps assemblyDeps,
	cfg config.Config,
	rng *rand.Rand,
) (relaychain.ProvisionerInherentData, error) {
	cores, err := deps.Runtime.AvailabilityCores(ctx, rp)
	if err != nil {
		return relaychain.ProvisionerInherentData{}, Recoverable(fmt.Errorf("%w: %w", ErrCanceledAvailabilityCores, err))
	}

	bitfields := SelectBitfields(cores, snap.bitfields, snap.leaf.Status)

	candidates, err := SelectCandidates(ctx, rp, cores, bitfields, snap.candidates, deps.Runtime, deps.Chain, deps.Backing)
	if err != nil {
		return relaychain.ProvisionerInherentData{}, err
	}

	disputes, err := SelectDisputes(ctx, rp, deps.Disputes, deps.Runtime, cfg, rng)
	if err != nil {
		return relaychain.ProvisionerInherentData{}, err
	}

	return relaychain.ProvisionerInherentData{
		Bitfields:        bitfields,
		BackedCandidates: candidates,
		Disputes:         disputes,
	}, nil
}
