// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// SignatureRequest is the bit-level wire form shared
// across nodes so peers can independently reconstruct and verify the
// preimage a signer is asked to sign.
type SignatureRequest struct {
	TxId        TxId
	Name        Name
	Recipient   EvmAddr
	Amount      *uint256.Int
	BlockHeight uint64
	AsOf        NockHash
	Nonce       uint64
}

// Preimage returns keccak256(abi.encode(tx_id, name, recipient,
// amount, block_height, as_of)), the hash the Base bridge contract
// expects signers to have signed.
//
// The teacher's own accel_go.go keccak256Hash is an admitted SHA-256
// stand-in ("Using SHA256 as stand-in"); this uses a real Keccak256
// implementation instead, since inter-node and on-chain compatibility
// requires the genuine hash.
func (r SignatureRequest) Preimage() [32]byte {
	var buf []byte
	word32 := func(b []byte) {
		var w [32]byte
		copy(w[32-len(b):], b)
		buf = append(buf, w[:]...)
	}

	buf = append(buf, r.TxId[:]...)
	buf = append(buf, Digest(r.Name.First).Bytes()...)
	buf = append(buf, Digest(r.Name.Last).Bytes()...)
	word32(r.Recipient[:])
	amount := r.Amount
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	word32(amount.Bytes())

	var heightBytes [8]byte
	for i := 0; i < 8; i++ {
		heightBytes[7-i] = byte(r.BlockHeight >> (8 * i))
	}
	word32(heightBytes[:])

	buf = append(buf, Digest(r.AsOf).Bytes()...)

	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write(buf)
	copy(out[:], h.Sum(nil))
	return out
}
