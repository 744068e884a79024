// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

// Hold is the single-slot parking state pausing one chain's
// advancement until a named block on the other chain is observed.
type NockHold struct {
	Hash   BaseHash
	Height uint64
}

type BaseHoldTarget struct {
	Hash   NockHash
	Height uint64
}

// HashState is the ledger: both hashchains, the hold slots, and the
// four compound-key maps tracking deposits/withdrawals across their
// unsettled/unconfirmed-settled lifecycle.
type HashState struct {
	NockHashchain  map[NockHash]NockBlock
	LastNockBlock  NockHash
	NockNextHeight uint64

	BaseHashchain  map[BaseHash]BaseBlockBatch
	LastBaseBlocks BaseHash
	BaseNextHeight uint64

	NockHold *NockHold
	BaseHold *BaseHoldTarget

	UnsettledDeposits           *Ledger[Deposit]
	UnconfirmedSettledDeposits  *Ledger[Deposit]
	UnsettledWithdrawals        *Ledger[Withdrawal]
	UnconfirmedSettledWithdrawals *Ledger[Withdrawal]
}

// NewHashState returns an initialized, empty HashState.
func NewHashState() *HashState {
	return &HashState{
		NockHashchain:                 make(map[NockHash]NockBlock),
		BaseHashchain:                 make(map[BaseHash]BaseBlockBatch),
		UnsettledDeposits:             NewLedger[Deposit](),
		UnconfirmedSettledDeposits:    NewLedger[Deposit](),
		UnsettledWithdrawals:          NewLedger[Withdrawal](),
		UnconfirmedSettledWithdrawals: NewLedger[Withdrawal](),
	}
}

// Clone deep-enough-copies the ledger so an advancer can mutate the
// copy and discard it on Stop, leaving the original state intact —
// the design notes' "never mutate in place across a fault barrier
// boundary" rule.
func (h *HashState) Clone() *HashState {
	out := &HashState{
		NockHashchain:                 make(map[NockHash]NockBlock, len(h.NockHashchain)),
		LastNockBlock:                 h.LastNockBlock,
		NockNextHeight:                h.NockNextHeight,
		BaseHashchain:                 make(map[BaseHash]BaseBlockBatch, len(h.BaseHashchain)),
		LastBaseBlocks:                h.LastBaseBlocks,
		BaseNextHeight:                h.BaseNextHeight,
		UnsettledDeposits:             h.UnsettledDeposits.Clone(),
		UnconfirmedSettledDeposits:    h.UnconfirmedSettledDeposits.Clone(),
		UnsettledWithdrawals:          h.UnsettledWithdrawals.Clone(),
		UnconfirmedSettledWithdrawals: h.UnconfirmedSettledWithdrawals.Clone(),
	}
	for k, v := range h.NockHashchain {
		out.NockHashchain[k] = v
	}
	for k, v := range h.BaseHashchain {
		out.BaseHashchain[k] = v
	}
	if h.NockHold != nil {
		nh := *h.NockHold
		out.NockHold = &nh
	}
	if h.BaseHold != nil {
		bh := *h.BaseHold
		out.BaseHold = &bh
	}
	return out
}

// StopInfo captures the last-known-good checkpoint of both chains; it
// is embedded in every Stop effect.
type StopInfo struct {
	BaseHash    BaseHash
	BaseHeight  uint64
	NockHash    NockHash
	NockHeight  uint64
}

// BridgeState is the kernel's entire owned state.
type BridgeState struct {
	Config          NodeConfig
	Constants       BridgeConstants
	HashState       *HashState
	NextNonce       uint64
	LastBlock       *NockBlock
	BridgeLockRoot  NockHash
	Stop            *StopInfo
}

// NewBridgeState returns a fresh state at genesis, with next_nonce
// starting at 1.
func NewBridgeState(cfg NodeConfig, constants BridgeConstants, lockRoot NockHash) *BridgeState {
	hs := NewHashState()
	hs.NockNextHeight = constants.NockchainStartHeight
	hs.BaseNextHeight = constants.BaseStartHeight
	return &BridgeState{
		Config:         cfg,
		Constants:      constants,
		HashState:      hs,
		NextNonce:      1,
		BridgeLockRoot: lockRoot,
	}
}

// checkpoint builds the StopInfo snapshot from the current state.
func (s *BridgeState) checkpoint() StopInfo {
	info := StopInfo{
		BaseHash:   s.HashState.LastBaseBlocks,
		NockHash:   s.HashState.LastNockBlock,
	}
	if s.HashState.NockNextHeight > 0 {
		info.NockHeight = s.HashState.NockNextHeight - 1
	}
	info.BaseHeight = s.HashState.BaseNextHeight
	return info
}

// Clone returns an independent copy of the state for speculative
// mutation (e.g. the whole of a ProposedBaseCall's proposal list, or
// one Base batch's settlement loop) that must roll back atomically on
// failure.
func (s *BridgeState) Clone() *BridgeState {
	out := *s
	out.HashState = s.HashState.Clone()
	if s.Stop != nil {
		st := *s.Stop
		out.Stop = &st
	}
	if s.LastBlock != nil {
		lb := *s.LastBlock
		out.LastBlock = &lb
	}
	return &out
}
