// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/luxfi/provisioner/config"
	"github.com/luxfi/provisioner/relaychain"
	"github.com/luxfi/provisioner/provisioner/sampler"
	"github.com/luxfi/provisioner/subsystem"
	"github.com/luxfi/provisioner/utils/set"
)

func disputeKeyOf(k relaychain.DisputeKey) relaychain.DisputeKey { return k }

// SelectDisputes implements the dispute selection of spec.md §4.6: when
// recent disputes already fit the runtime's budget, every one of them
// is forwarded verbatim and active_disputes is never even queried.
// Only once recent overflows the budget does active_disputes come into
// play, with both sets pruned of anything already settled on-chain and
// sampled uniformly at random down to the budget.
func SelectDisputes(
	ctx context.Context,
	rp relaychain.RelayParent,
	coordinator subsystem.DisputeCoordinator,
	runtime subsystem.RuntimeApi,
	cfg config.Config,
	rng *rand.Rand,
) ([]relaychain.DisputeStatementSet, error) {
	recent, err := coordinator.RecentDisputes(ctx)
	if err != nil {
		return nil, Recoverable(fmt.Errorf("recent_disputes: %w", err))
	}

	var selected []relaychain.DisputeKey
	if len(recent) <= cfg.MaxDisputesForwardedToRuntime {
		selected = recent
	} else {
		active, err := coordinator.ActiveDisputes(ctx)
		if err != nil {
			return nil, Recoverable(fmt.Errorf("active_disputes: %w", err))
		}

		// OnChainDisputes only prunes an oversized candidate set down
		// before sampling; a transport error here costs precision, not
		// liveness, so it is treated as "nothing settled yet" rather
		// than failing the whole assembly (spec.md §4.6/§7).
		onChain, err := runtime.OnChainDisputes(ctx, rp)
		if err != nil {
			onChain = nil
		}

		onChainSet := set.NewSet[relaychain.DisputeKey](len(onChain))
		for k := range onChain {
			onChainSet.Add(k)
		}

		novelRecent := excludeSettled(recent, onChainSet)
		novelActive := excludeSettled(active, onChainSet)

		budget := cfg.MaxDisputesForwardedToRuntime
		selected = sampler.Extend[relaychain.DisputeKey, relaychain.DisputeKey](nil, novelRecent, budget, disputeKeyOf, rng)
		budget -= len(selected)
		selected = sampler.Extend(selected, novelActive, budget, disputeKeyOf, rng)
	}

	votes, err := coordinator.QueryCandidateVotes(ctx, selected)
	if err != nil {
		return nil, Recoverable(fmt.Errorf("query_candidate_votes: %w", err))
	}

	result := make([]relaychain.DisputeStatementSet, 0, len(selected))
	for _, key := range selected {
		cv, ok := votes[key]
		if !ok {
			continue
		}
		statements := make([]relaychain.DisputeStatement, 0, len(cv.Valid)+len(cv.Invalid))
		for _, v := range cv.Valid {
			statements = append(statements, relaychain.DisputeStatement{
				Side: relaychain.StatementValid, Kind: v.Kind, Validator: v.Validator, Signature: v.Signature,
			})
		}
		for _, v := range cv.Invalid {
			statements = append(statements, relaychain.DisputeStatement{
				Side: relaychain.StatementInvalid, Kind: v.Kind, Validator: v.Validator, Signature: v.Signature,
			})
		}
		result = append(result, relaychain.DisputeStatementSet{
			CandidateHash: key.CandidateHash,
			Session:       key.Session,
			Statements:    statements,
		})
	}
	return result, nil
}

func excludeSettled(keys []relaychain.DisputeKey, onChain set.Set[relaychain.DisputeKey]) []relaychain.DisputeKey {
	novel := make([]relaychain.DisputeKey, 0, len(keys))
	for _, k := range keys {
		if !onChain.Contains(k) {
			novel = append(novel, k)
		}
	}
	return novel
}
