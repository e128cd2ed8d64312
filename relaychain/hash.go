// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package relaychain

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/luxfi/ids"
)

// hashCandidateReceipt content-addresses a receipt from its descriptor
// and commitments. This module never verifies candidate hashes, only
// compares them for equality, so a stable stdlib digest is sufficient;
// no third-party hash is retained in the domain stack for this (see
// DESIGN.md).
func hashCandidateReceipt(r CandidateReceipt) CandidateHash {
	h := sha256.New()
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(r.Descriptor.ParaID))
	h.Write(buf[:])
	h.Write(r.Descriptor.PersistedValidationDataHash[:])
	h.Write(r.Commitments.NewValidationCode)
	var out ids.ID
	copy(out[:], h.Sum(nil))
	return out
}
