// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package relaychain is the provisioner's data model: the relay
// parent, core scheduling state, signed availability bitfields,
// candidate receipts and dispute votes that the selection pipeline
// reasons about, plus the inherent data it ultimately produces
// (spec.md §3).
package relaychain

import (
	"github.com/luxfi/ids"
)

// RelayParent identifies the block inherent data is being produced on
// top of. It is the primary key of all per-parent state.
type RelayParent = ids.ID

// CandidateHash content-addresses a CandidateReceipt.
type CandidateHash = ids.ID

// ValidatorIndex is a validator's ordinal position in the active set
// for a relay parent. It is not a node identity.
type ValidatorIndex uint32

// SessionIndex identifies a dispute session.
type SessionIndex uint32

// ParaID identifies a parachain.
type ParaID uint32

// BlockNumber is a relay-chain block height.
type BlockNumber uint64

// LeafStatus distinguishes a newly activated leaf from one that has
// been active across more than one import.
type LeafStatus int

const (
	LeafStatusFresh LeafStatus = iota
	LeafStatusStale
)

func (s LeafStatus) String() string {
	if s == LeafStatusStale {
		return "stale"
	}
	return "fresh"
}

// TraceSpan is an opaque tracing handle threaded through PerParent for
// log correlation. Tracing backends are out of scope; NoOpSpan is the
// only implementation this module provides.
type TraceSpan interface {
	// Finish ends the span. Safe to call more than once.
	Finish()
}

type noOpSpan struct{}

func (noOpSpan) Finish() {}

// NoOpSpan is a TraceSpan that does nothing.
var NoOpSpan TraceSpan = noOpSpan{}

// ActivatedLeaf describes a relay-chain block that just entered the
// active-leaves set.
type ActivatedLeaf struct {
	Hash   RelayParent
	Number BlockNumber
	Status LeafStatus
	Span   TraceSpan
}

// CoreKind is the tag of the CoreState sum type.
type CoreKind int

const (
	CoreFree CoreKind = iota
	CoreScheduled
	CoreOccupied
)

// CoreState is the scheduling state of one core at a relay parent.
// Free and Scheduled use only Kind/Para; Occupied additionally uses
// the availability/time-out fields.
type CoreState struct {
	Kind CoreKind
	Para ParaID // valid when Kind != CoreFree

	// Occupied-only fields.
	Availability      []bool // bitvec over validators, len == validator count
	NextUpOnAvailable *ParaID
	NextUpOnTimeOut   *ParaID
	TimeOutAt         BlockNumber
}

// OccupiedCoreAssumption is the premise under which the runtime
// computed persisted validation data for a core's next candidate.
type OccupiedCoreAssumption int

const (
	AssumptionFree OccupiedCoreAssumption = iota
	AssumptionIncluded
	AssumptionTimedOut
)

// ValidatorSignature is an opaque, unverified signature. Signature
// verification is out of scope for this module; the bytes are carried
// through selection untouched.
type ValidatorSignature []byte

// SignedAvailabilityBitfield is one validator's claim about the
// availability of each core's candidate chunk.
type SignedAvailabilityBitfield struct {
	ValidatorIndex ValidatorIndex
	Payload        []bool // bitvec over cores, len == len(cores)
	Signature      ValidatorSignature
}

// PopCount returns the number of set bits in the payload.
func (b SignedAvailabilityBitfield) PopCount() int {
	n := 0
	for _, bit := range b.Payload {
		if bit {
			n++
		}
	}
	return n
}

// CandidateDescriptor carries the parts of a candidate receipt the
// selection pipeline reasons about directly.
type CandidateDescriptor struct {
	ParaID                       ParaID
	PersistedValidationDataHash  ids.ID
}

// CandidateCommitments carries the parts of a candidate's commitments
// the selection pipeline reasons about directly.
type CandidateCommitments struct {
	NewValidationCode []byte // nil unless this candidate upgrades the para's code
}

// CandidateReceipt is a raw, unbacked candidate as ingested from
// provisionable data.
type CandidateReceipt struct {
	Descriptor  CandidateDescriptor
	Commitments CandidateCommitments
}

// Hash content-addresses the receipt. Collision resistance is assumed
// of the underlying hash; this module never verifies it, only compares
// it for equality.
func (r CandidateReceipt) Hash() CandidateHash {
	return hashCandidateReceipt(r)
}

// BackedCandidate is a CandidateReceipt with sufficient backing
// signatures, as returned by the candidate backing subsystem.
type BackedCandidate struct {
	Receipt CandidateReceipt
}

func (b BackedCandidate) Hash() CandidateHash {
	return b.Receipt.Hash()
}

// DisputeKey identifies one disputed candidate within one session.
type DisputeKey struct {
	Session       SessionIndex
	CandidateHash CandidateHash
}

// VoteKind distinguishes an explicit vote from an implicit/backing one;
// carried opaquely, never interpreted by this module.
type VoteKind uint8

// CandidateVote is one validator's vote on one side of a dispute.
type CandidateVote struct {
	Validator ValidatorIndex
	Kind      VoteKind
	Signature ValidatorSignature
}

// CandidateVotes partitions a disputed candidate's votes by side.
type CandidateVotes struct {
	Valid   []CandidateVote
	Invalid []CandidateVote
}

// StatementSide tags a DisputeStatement as asserting validity or not.
type StatementSide uint8

const (
	StatementValid StatementSide = iota
	StatementInvalid
)

// DisputeStatement is one statement in a DisputeStatementSet.
type DisputeStatement struct {
	Side      StatementSide
	Kind      VoteKind
	Validator ValidatorIndex
	Signature ValidatorSignature
}

// DisputeStatementSet is the runtime-inherent-ready shape of one
// disputed candidate's votes.
type DisputeStatementSet struct {
	CandidateHash CandidateHash
	Session       SessionIndex
	Statements    []DisputeStatement
}

// ProvisionerInherentData is the complete output of one assembly: the
// three selections the runtime consumes when building a block.
type ProvisionerInherentData struct {
	Bitfields         []SignedAvailabilityBitfield
	BackedCandidates  []BackedCandidate
	Disputes          []DisputeStatementSet
}
