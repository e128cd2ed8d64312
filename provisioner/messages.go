// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import "github.com/luxfi/provisioner/relaychain"

// Signal is one of the overseer's signal-bus events (spec.md §6,
// "Inbound signals"). The overseer itself is out of scope; only the
// contract is modeled here.
type Signal interface{ isSignal() }

// ActiveLeavesUpdate reports leaves entering or leaving the active set.
type ActiveLeavesUpdate struct {
	Activated   []relaychain.ActivatedLeaf
	Deactivated []relaychain.RelayParent
}

func (ActiveLeavesUpdate) isSignal() {}

// BlockFinalized is observed but never mutates provisioner state.
type BlockFinalized struct {
	Hash   relaychain.RelayParent
	Number relaychain.BlockNumber
}

func (BlockFinalized) isSignal() {}

// Conclude asks the main loop to exit.
type Conclude struct{}

func (Conclude) isSignal() {}

// InherentDataResult is what a RequestInherentData reply channel
// receives: either a complete inherent, or the error that kept one
// from being produced in time.
type InherentDataResult struct {
	Data relaychain.ProvisionerInherentData
	Err  error
}

// Message is one of the provisioner's inbound request/notification
// messages (spec.md §6, "Inbound messages").
type Message interface{ isMessage() }

// RequestInherentData asks for the inherent data for RP. Reply is
// written to at most once: once whether RP is ready immediately,
// becomes ready later, is unknown, or assembly fails; never if RP is
// deactivated while the request is still queued before readiness.
type RequestInherentData struct {
	RP    relaychain.RelayParent
	Reply chan<- InherentDataResult
}

func (RequestInherentData) isMessage() {}

// ProvisionableDataMsg carries data accumulated for RP since it
// activated.
type ProvisionableDataMsg struct {
	RP   relaychain.RelayParent
	Data ProvisionableData
}

func (ProvisionableDataMsg) isMessage() {}

// ProvisionableData is the payload of a ProvisionableDataMsg (spec.md
// §4.2). Variants the provisioner doesn't consume (misbehavior
// reports, dispute statements observed in backing) are represented by
// Other and ignored at ingest.
type ProvisionableData interface{ isProvisionableData() }

// Bitfield is appended to the relay parent's signed bitfields
// unconditionally; validation is deferred to BitfieldSelector.
type Bitfield struct {
	Bitfield relaychain.SignedAvailabilityBitfield
}

func (Bitfield) isProvisionableData() {}

// BackedCandidate is appended to the relay parent's candidate
// receipts unconditionally; CandidateSelector resolves the canonical
// backed set later via the backing subsystem.
type BackedCandidate struct {
	Receipt relaychain.CandidateReceipt
}

func (BackedCandidate) isProvisionableData() {}

// Other covers MisbehaviorReport/Dispute variants: observed but not
// consumed by the provisioner.
type Other struct{}

func (Other) isProvisionableData() {}
