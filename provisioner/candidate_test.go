// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/provisioner/relaychain"
)

func TestSelectCandidatesScheduledCoreUnderAssumptionFree(t *testing.T) {
	rp := relaychain.RelayParent{1}
	para := relaychain.ParaID(7)
	receipt := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: para}}
	backedCandidate := relaychain.BackedCandidate{Receipt: receipt}

	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 10}}
	backing := &fakeCandidateBacking{backed: map[relaychain.RelayParent][]relaychain.BackedCandidate{rp: {backedCandidate}}}
	runtime := &fakeRuntimeAPI{persistedData: map[relaychain.ParaID]map[relaychain.OccupiedCoreAssumption][]byte{
		para: {relaychain.AssumptionFree: []byte("pvd")},
	}}

	cores := []relaychain.CoreState{{Kind: relaychain.CoreScheduled, Para: para}}

	got, err := SelectCandidates(context.Background(), rp, cores, nil, []relaychain.CandidateReceipt{receipt}, runtime, chain, backing)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, backedCandidate, got[0])
}

func TestSelectCandidatesFreeCoreYieldsNothing(t *testing.T) {
	rp := relaychain.RelayParent{2}
	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 1}}
	backing := &fakeCandidateBacking{}
	runtime := &fakeRuntimeAPI{}

	cores := []relaychain.CoreState{{Kind: relaychain.CoreFree}}

	got, err := SelectCandidates(context.Background(), rp, cores, nil, nil, runtime, chain, backing)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSelectCandidatesOccupiedCoreRequiresAvailability(t *testing.T) {
	rp := relaychain.RelayParent{3}
	occupyingPara := relaychain.ParaID(1)
	nextPara := relaychain.ParaID(2)
	receipt := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: nextPara}}
	backedCandidate := relaychain.BackedCandidate{Receipt: receipt}

	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 5}}
	backing := &fakeCandidateBacking{backed: map[relaychain.RelayParent][]relaychain.BackedCandidate{rp: {backedCandidate}}}
	runtime := &fakeRuntimeAPI{persistedData: map[relaychain.ParaID]map[relaychain.OccupiedCoreAssumption][]byte{
		nextPara: {relaychain.AssumptionIncluded: []byte("pvd")},
	}}

	cores := []relaychain.CoreState{{Kind: relaychain.CoreOccupied, Para: occupyingPara, TimeOutAt: 1000, NextUpOnAvailable: &nextPara}}

	// No bitfields at all: core isn't available, and it hasn't timed
	// out, so nothing should be produced.
	got, err := SelectCandidates(context.Background(), rp, cores, nil, []relaychain.CandidateReceipt{receipt}, runtime, chain, backing)
	require.NoError(t, err)
	require.Empty(t, got)

	// Two out of two bitfields mark the core available.
	bitfields := []relaychain.SignedAvailabilityBitfield{
		{ValidatorIndex: 0, Payload: []bool{true}},
		{ValidatorIndex: 1, Payload: []bool{true}},
	}
	got, err = SelectCandidates(context.Background(), rp, cores, bitfields, []relaychain.CandidateReceipt{receipt}, runtime, chain, backing)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, backedCandidate, got[0])
}

func TestSelectCandidatesOccupiedCoreTimeOut(t *testing.T) {
	rp := relaychain.RelayParent{4}
	nextPara := relaychain.ParaID(9)
	receipt := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: nextPara}}
	backedCandidate := relaychain.BackedCandidate{Receipt: receipt}

	// currentBlock is chain's BlockNumber + 1: 49 + 1 == TimeOutAt(50),
	// the one block the timeout branch is live for.
	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 49}}
	backing := &fakeCandidateBacking{backed: map[relaychain.RelayParent][]relaychain.BackedCandidate{rp: {backedCandidate}}}
	runtime := &fakeRuntimeAPI{persistedData: map[relaychain.ParaID]map[relaychain.OccupiedCoreAssumption][]byte{
		nextPara: {relaychain.AssumptionTimedOut: []byte("pvd")},
	}}

	cores := []relaychain.CoreState{{Kind: relaychain.CoreOccupied, Para: relaychain.ParaID(1), TimeOutAt: 50, NextUpOnTimeOut: &nextPara}}

	got, err := SelectCandidates(context.Background(), rp, cores, nil, []relaychain.CandidateReceipt{receipt}, runtime, chain, backing)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, backedCandidate, got[0])
}

func TestSelectCandidatesOccupiedCoreTimeOutOnlyAtExactBlock(t *testing.T) {
	rp := relaychain.RelayParent{10}
	nextPara := relaychain.ParaID(9)
	receipt := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: nextPara}}
	backedCandidate := relaychain.BackedCandidate{Receipt: receipt}

	// currentBlock == 101, well past TimeOutAt(50): the timeout window
	// already closed, so no candidate should be produced for this core.
	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 100}}
	backing := &fakeCandidateBacking{backed: map[relaychain.RelayParent][]relaychain.BackedCandidate{rp: {backedCandidate}}}
	runtime := &fakeRuntimeAPI{persistedData: map[relaychain.ParaID]map[relaychain.OccupiedCoreAssumption][]byte{
		nextPara: {relaychain.AssumptionTimedOut: []byte("pvd")},
	}}

	cores := []relaychain.CoreState{{Kind: relaychain.CoreOccupied, Para: relaychain.ParaID(1), TimeOutAt: 50, NextUpOnTimeOut: &nextPara}}

	got, err := SelectCandidates(context.Background(), rp, cores, nil, []relaychain.CandidateReceipt{receipt}, runtime, chain, backing)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSelectCandidatesOccupiedCoreAvailableWithNoFollowUpYieldsNothing(t *testing.T) {
	rp := relaychain.RelayParent{11}
	occupyingPara := relaychain.ParaID(1)

	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 5}}
	backing := &fakeCandidateBacking{}
	runtime := &fakeRuntimeAPI{}

	cores := []relaychain.CoreState{{Kind: relaychain.CoreOccupied, Para: occupyingPara, TimeOutAt: 1000}}
	bitfields := []relaychain.SignedAvailabilityBitfield{
		{ValidatorIndex: 0, Payload: []bool{true}},
		{ValidatorIndex: 1, Payload: []bool{true}},
	}

	got, err := SelectCandidates(context.Background(), rp, cores, bitfields, nil, runtime, chain, backing)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSelectCandidatesRejectsOutOfOrderBacking(t *testing.T) {
	rp := relaychain.RelayParent{5}
	r1 := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: 1}}
	r2 := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: 2}}

	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 1}}
	// Backing returns r2 before r1, violating the requested order.
	backing := &fakeCandidateBacking{backed: map[relaychain.RelayParent][]relaychain.BackedCandidate{
		rp: {{Receipt: r2}, {Receipt: r1}},
	}}
	runtime := &fakeRuntimeAPI{}

	_, err := SelectCandidates(context.Background(), rp, nil, nil, []relaychain.CandidateReceipt{r1, r2}, runtime, chain, backing)
	require.ErrorIs(t, err, ErrBackedCandidateOrderingProblem)
}

func TestSelectCandidatesDropsDuplicateNewValidationCode(t *testing.T) {
	rp := relaychain.RelayParent{6}
	paraA, paraB := relaychain.ParaID(1), relaychain.ParaID(2)
	code := []byte("new-code")
	receiptA := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: paraA}, Commitments: relaychain.CandidateCommitments{NewValidationCode: code}}
	receiptB := relaychain.CandidateReceipt{Descriptor: relaychain.CandidateDescriptor{ParaID: paraB}, Commitments: relaychain.CandidateCommitments{NewValidationCode: code}}

	chain := &fakeChainAPI{numbers: map[relaychain.RelayParent]relaychain.BlockNumber{rp: 1}}
	backing := &fakeCandidateBacking{backed: map[relaychain.RelayParent][]relaychain.BackedCandidate{
		rp: {{Receipt: receiptA}, {Receipt: receiptB}},
	}}
	runtime := &fakeRuntimeAPI{persistedData: map[relaychain.ParaID]map[relaychain.OccupiedCoreAssumption][]byte{
		paraA: {relaychain.AssumptionFree: []byte("pvd")},
		paraB: {relaychain.AssumptionFree: []byte("pvd")},
	}}

	cores := []relaychain.CoreState{
		{Kind: relaychain.CoreScheduled, Para: paraA},
		{Kind: relaychain.CoreScheduled, Para: paraB},
	}

	got, err := SelectCandidates(context.Background(), rp, cores, nil, []relaychain.CandidateReceipt{receiptA, receiptB}, runtime, chain, backing)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, paraA, got[0].Receipt.Descriptor.ParaID)
}
