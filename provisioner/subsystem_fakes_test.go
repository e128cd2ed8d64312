// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"context"
	"errors"

	"github.com/luxfi/provisioner/relaychain"
)

var errBoom = errors.New("boom")

// The fakes below are hand-rolled recording doubles for the subsystem
// capability interfaces, in the style of the teacher's sendermock: a
// struct field per call site, populated by the test, with calls
// recorded for assertions rather than generated from an interface.

type fakeRuntimeAPI struct {
	cores              map[relaychain.RelayParent][]relaychain.CoreState
	coresErr           error
	persistedData      map[relaychain.ParaID]map[relaychain.OccupiedCoreAssumption][]byte
	persistedCalls     []relaychain.ParaID
	onChainDisputes    map[relaychain.DisputeKey]struct{}
	onChainDisputesErr error
}

func (f *fakeRuntimeAPI) AvailabilityCores(_ context.Context, rp relaychain.RelayParent) ([]relaychain.CoreState, error) {
	if f.coresErr != nil {
		return nil, f.coresErr
	}
	return f.cores[rp], nil
}

func (f *fakeRuntimeAPI) PersistedValidationData(_ context.Context, _ relaychain.RelayParent, para relaychain.ParaID, assumption relaychain.OccupiedCoreAssumption) ([]byte, bool, error) {
	f.persistedCalls = append(f.persistedCalls, para)
	byAssumption, ok := f.persistedData[para]
	if !ok {
		return nil, false, nil
	}
	data, ok := byAssumption[assumption]
	return data, ok, nil
}

func (f *fakeRuntimeAPI) OnChainDisputes(_ context.Context, _ relaychain.RelayParent) (map[relaychain.DisputeKey]struct{}, error) {
	if f.onChainDisputesErr != nil {
		return nil, f.onChainDisputesErr
	}
	return f.onChainDisputes, nil
}

type fakeChainAPI struct {
	numbers map[relaychain.RelayParent]relaychain.BlockNumber
	err     error
}

func (f *fakeChainAPI) BlockNumber(_ context.Context, rp relaychain.RelayParent) (relaychain.BlockNumber, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	n, ok := f.numbers[rp]
	return n, ok, nil
}

type fakeCandidateBacking struct {
	backed map[relaychain.RelayParent][]relaychain.BackedCandidate
	err    error
}

func (f *fakeCandidateBacking) GetBackedCandidates(_ context.Context, rp relaychain.RelayParent, hashes []relaychain.CandidateHash) ([]relaychain.BackedCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[relaychain.CandidateHash]struct{}, len(hashes))
	for _, h := range hashes {
		wanted[h] = struct{}{}
	}
	all := f.backed[rp]
	result := make([]relaychain.BackedCandidate, 0, len(all))
	for _, bc := range all {
		if _, ok := wanted[bc.Hash()]; ok {
			result = append(result, bc)
		}
	}
	return result, nil
}

type fakeDisputeCoordinator struct {
	recent  []relaychain.DisputeKey
	active  []relaychain.DisputeKey
	votes   map[relaychain.DisputeKey]relaychain.CandidateVotes
	recErr  error
	actErr  error
	voteErr error
}

func (f *fakeDisputeCoordinator) RecentDisputes(_ context.Context) ([]relaychain.DisputeKey, error) {
	if f.recErr != nil {
		return nil, f.recErr
	}
	return f.recent, nil
}

func (f *fakeDisputeCoordinator) ActiveDisputes(_ context.Context) ([]relaychain.DisputeKey, error) {
	if f.actErr != nil {
		return nil, f.actErr
	}
	return f.active, nil
}

func (f *fakeDisputeCoordinator) QueryCandidateVotes(_ context.Context, keys []relaychain.DisputeKey) (map[relaychain.DisputeKey]relaychain.CandidateVotes, error) {
	if f.voteErr != nil {
		return nil, f.voteErr
	}
	result := make(map[relaychain.DisputeKey]relaychain.CandidateVotes, len(keys))
	for _, k := range keys {
		if v, ok := f.votes[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}
