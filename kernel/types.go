// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"encoding/hex"

	"github.com/holiman/uint256"
)

// Digest is the 256-bit output of the TIP5 hasher, represented as
// four reduced field elements (4*64 bits). NockHash and BaseHash wrap
// Digest so the two chains' identifiers are domain-distinguished at
// the type level even though they share a representation.
type Digest [4]Felt

// Bytes renders the digest as 32 bytes, little-endian within each
// limb, most-significant limb first.
func (d Digest) Bytes() []byte {
	out := make([]byte, 32)
	for i := 0; i < 4; i++ {
		limb := uint64(d[3-i])
		for j := 0; j < 8; j++ {
			out[i*8+j] = byte(limb >> (8 * j))
		}
	}
	return out
}

func (d Digest) String() string {
	return hex.EncodeToString(d.Bytes())
}

// DigestFromBytes is the inverse of Digest.Bytes: it reconstructs a
// Digest from its 32-byte big-endian-of-limbs wire form, reducing each
// limb into GF(Prime) in case the wire value arrived unreduced.
func DigestFromBytes(b [32]byte) Digest {
	var d Digest
	for i := 0; i < 4; i++ {
		var limb uint64
		for j := 0; j < 8; j++ {
			limb |= uint64(b[i*8+j]) << (8 * j)
		}
		d[3-i] = NewFelt(limb)
	}
	return d
}

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// NockHash identifies a Nock block (or, in the UTXO model, a note
// first/last name — both are structurally Tip5 digests).
type NockHash Digest

func (h NockHash) String() string { return Digest(h).String() }
func (h NockHash) IsZero() bool   { return Digest(h).IsZero() }
func (h NockHash) Digest() Digest { return Digest(h) }

// BaseHash identifies a Base block batch.
type BaseHash Digest

func (h BaseHash) String() string { return Digest(h).String() }
func (h BaseHash) IsZero() bool   { return Digest(h).IsZero() }
func (h BaseHash) Digest() Digest { return Digest(h) }

// Name is the two-element key (first, last) identifying a Nock note.
type Name struct {
	First NockHash
	Last  NockHash
}

// Less gives Name a total order used for tap-order (key-ascending)
// iteration of any map keyed by Name.
func (n Name) Less(o Name) bool {
	af, bf := Digest(n.First).Bytes(), Digest(o.First).Bytes()
	for i := range af {
		if af[i] != bf[i] {
			return af[i] < bf[i]
		}
	}
	al, bl := Digest(n.Last).Bytes(), Digest(o.Last).Bytes()
	for i := range al {
		if al[i] != bl[i] {
			return al[i] < bl[i]
		}
	}
	return false
}

// EvmAddr is a 20-byte EVM-style address.
type EvmAddr [20]byte

func (a EvmAddr) String() string { return "0x" + hex.EncodeToString(a[:]) }

// BaseEventId, BaseTxId and BaseBlockId are all BasedList: Base-side
// identifiers may exceed the Goldilocks field and must be carried in
// lossless radix-p form wherever they are hashed or used as a ledger
// key.
type (
	BaseEventId BasedList
	BaseTxId    BasedList
	BaseBlockId BasedList
)

// Bytes gives BaseEventId a canonical byte representation for use as
// a ledger/map key: one length byte, then each chunk as 8 big-endian
// bytes, least-significant chunk first. Byte order of these keys is a
// fixed total order, not the numeric order of the ids.
func (id BaseEventId) Bytes() []byte { return basedListKeyBytes(BasedList(id)) }

func basedListKeyBytes(l BasedList) []byte {
	out := make([]byte, 0, 1+8*len(l))
	out = append(out, byte(len(l)))
	for _, f := range l {
		v := uint64(f)
		for j := 7; j >= 0; j-- {
			out = append(out, byte(v>>(8*j)))
		}
	}
	return out
}

// TxId is the 32-byte identifier of a Nock transaction.
type TxId [32]byte

// Deposit records one bridge deposit extracted from a Nock block.
// Dest is nil when the %bridge entry failed to parse: funds stay on
// Nock and no signature request is ever emitted for this deposit, but
// it is still recorded in the ledger.
type Deposit struct {
	TxId         TxId
	Name         Name
	Dest         *EvmAddr
	AmountToMint *uint256.Int
	Fee          *uint256.Int
}

// WithdrawalSettlement mirrors DepositSettlement for the Nock side of
// a withdrawal. This release never produces one: observing a
// withdrawal settlement in a Nock block is always a Stop condition
// so the type exists only to give NockBlock a
// well-typed (always-empty) field.
type WithdrawalSettlement struct {
	EventId BaseEventId
	Name    Name
}

// DepositSettlement is a Base-side event confirming that a
// previously-proposed deposit minted successfully.
type DepositSettlement struct {
	EventId         BaseEventId
	CounterpartName Name
	AsOf            NockHash
	NockHeight      uint64
	Dest            EvmAddr
	SettledAmount   *uint256.Int
	Nonce           uint64
}

// Withdrawal records a Base-side burn-for-withdrawal event. Recording
// is soft; only the withdrawal *proposal* path (the
// always-rejected ProposedNockTx cause) is hard-disabled.
type Withdrawal struct {
	EventId BaseEventId
	Burner  EvmAddr
	Amount  *uint256.Int
}

// NockBlock is the canonical record appended to the Nock hashchain.
type NockBlock struct {
	Height                uint64
	BlockId                NockHash
	Deposits              map[Name]Deposit
	WithdrawalSettlements map[Name]WithdrawalSettlement
	Prev                  NockHash
}

// BaseBlock is one fixed-height entry inside a BaseBlockBatch.
type BaseBlock struct {
	Bid    BaseBlockId
	Parent BaseBlockId
}

// BaseBlockBatch is the canonical record appended to the Base
// hashchain: one fixed-size chunk of Base blocks.
type BaseBlockBatch struct {
	FirstHeight        uint64
	LastHeight         uint64
	Blocks             map[uint64]BaseBlock
	Withdrawals        map[BaseEventIdKey]Withdrawal
	DepositSettlements map[BaseEventIdKey]DepositSettlement
	Prev               BaseHash
}

// BaseEventIdKey is the comparable (map-key-safe) form of a
// BaseEventId, since BasedList (a slice) cannot itself be a map key.
type BaseEventIdKey string

// Key renders a BaseEventId as its BaseEventIdKey.
func (id BaseEventId) Key() BaseEventIdKey {
	return BaseEventIdKey(basedListKeyBytes(BasedList(id)))
}

// Key renders a BaseBlockId as a comparable string, used to compare
// parent/child block id chains during the contiguity check.
func (id BaseBlockId) Key() string {
	return string(basedListKeyBytes(BasedList(id)))
}
