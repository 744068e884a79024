// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"encoding/binary"
	"sort"

	"github.com/holiman/uint256"

	safemath "github.com/luxfi/bridgekernel/utils/math"
)

// BlockVersion distinguishes the legacy (V0, silently ignored) and
// current (V1) Nock transaction/block formats.
type BlockVersion uint8

const (
	V0 BlockVersion = 0
	V1 BlockVersion = 1
)

// SpentNote is one input consumed by a RawTx.
type SpentNote struct {
	Name Name
}

// NoteOutput is one output produced by a RawTx. NoteData carries the
// note's tagged entries (e.g. "%bridge", "%ba-blk", "%ba-eid") as
// opaque byte payloads; the advancer only ever inspects the entries
// named in the spec.
type NoteOutput struct {
	Name     Name
	Assets   uint64
	NoteData map[string][]byte
}

// RawTx is one transaction inside a RawNockBlock.
type RawTx struct {
	Version BlockVersion
	SpentNotes []SpentNote
	Outputs    []NoteOutput
}

// RawNockBlock is the advancer's block-level input: a block header
// plus the set of tx ids it claims to carry. IsGenesisForBridge marks
// the one block the prev-pointer check is skipped for.
type RawNockBlock struct {
	Version            BlockVersion
	Height             uint64
	Prev               NockHash
	TxIds              []TxId
	IsGenesisForBridge bool
}

// decodeBridgeEntry parses the %bridge note_data payload:
// {version=0, [%base, addr: BasedList x3]}, laid out as
// version(1B)=0, tag(1B)=1 ("%base"), then three 8-byte big-endian
// based-list chunks. A malformed payload returns ok=false rather than
// an error: a parse failure under the fault barrier
// yields dest=None, not a Stop.
func decodeBridgeEntry(payload []byte) (addr EvmAddr, ok bool) {
	if len(payload) != 2+3*8 {
		return addr, false
	}
	if payload[0] != 0 || payload[1] != 1 {
		return addr, false
	}
	chunks := make(BasedList, 3)
	for i := 0; i < 3; i++ {
		v := binary.BigEndian.Uint64(payload[2+i*8 : 2+i*8+8])
		if v >= Prime {
			return addr, false
		}
		chunks[i] = Felt(v)
	}
	decoded, err := BasedToEvm(chunks)
	if err != nil {
		return addr, false
	}
	return decoded, true
}

// isBridgeDeposit reports whether tx passes the bridge deposit test:
// V1 and at least one output note carries a %bridge entry.
func isBridgeDeposit(tx RawTx) bool {
	if tx.Version != V1 {
		return false
	}
	for _, o := range tx.Outputs {
		if _, ok := o.NoteData["%bridge"]; ok {
			return true
		}
	}
	return false
}

// isBridgeWithdrawal reports whether tx passes the bridge withdrawal
// test: V1, every spent note's first-name equals lockRoot, and at
// least one output carries both %ba-blk and %ba-eid.
func isBridgeWithdrawal(tx RawTx, lockRoot NockHash) bool {
	if tx.Version != V1 || len(tx.SpentNotes) == 0 {
		return false
	}
	for _, s := range tx.SpentNotes {
		if s.Name.First != lockRoot {
			return false
		}
	}
	for _, o := range tx.Outputs {
		_, hasBlk := o.NoteData["%ba-blk"]
		_, hasEid := o.NoteData["%ba-eid"]
		if hasBlk && hasEid {
			return true
		}
	}
	return false
}

// extractDeposit handles one deposit tx: find the
// first qualifying output, decode its %bridge entry under the fault
// barrier, compute fee/amount_to_mint. Returns ok=false if no
// qualifying output exists or amount_to_mint would be zero.
func extractDeposit(txID TxId, tx RawTx, lockRoot NockHash, constants BridgeConstants) (Deposit, bool) {
	minAssets := constants.MinimumEventNocks * NicksPerNock
	for _, o := range tx.Outputs {
		payload, hasBridge := o.NoteData["%bridge"]
		if !hasBridge {
			continue
		}
		if o.Name.First != lockRoot {
			continue
		}
		if o.Assets < minAssets {
			continue
		}

		fee := CalculateFee(o.Assets, constants.NicksFeePerNock)
		if fee > o.Assets {
			return Deposit{}, false
		}
		amountToMint := o.Assets - fee
		if amountToMint == 0 {
			return Deposit{}, false
		}

		d := Deposit{
			TxId:         txID,
			Name:         o.Name,
			AmountToMint: uint256.NewInt(amountToMint),
			Fee:          uint256.NewInt(fee),
		}
		if addr, ok := decodeBridgeEntry(payload); ok {
			d.Dest = &addr
		}
		return d, true
	}
	return Deposit{}, false
}

// hashNockBlock computes the canonical TIP5 hash of a NockBlock.
func hashNockBlock(b NockBlock) NockHash {
	names := make([]Name, 0, len(b.Deposits))
	for n := range b.Deposits {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })

	var depositEntries []Hashable
	for _, n := range names {
		d := b.Deposits[n]
		depositEntries = append(depositEntries, hashDeposit(n, d))
	}

	tree := Tuple(
		Leaf(NewFelt(b.Height)),
		HashRef(Digest(b.Prev)),
		Tuple(depositEntries...),
	)
	return NockHash(Hash(tree))
}

func hashDeposit(n Name, d Deposit) Hashable {
	destHashable := Leaf(0)
	if d.Dest != nil {
		destHashable = BytesAtom(d.Dest[:])
	}
	amount := uint256.NewInt(0)
	if d.AmountToMint != nil {
		amount = d.AmountToMint
	}
	return Tuple(
		BytesAtom(Digest(n.First).Bytes()),
		BytesAtom(Digest(n.Last).Bytes()),
		BytesAtom(d.TxId[:]),
		destHashable,
		Atom(amount.ToBig()),
	)
}

// AdvanceNock validates and appends one Nock block. It
// returns the effects to emit and the resulting state on success, or
// a *StopError on any fatal condition — the caller (the dispatcher)
// is responsible for rolling back to the pre-call state when err is
// non-nil.
func AdvanceNock(state *BridgeState, block RawNockBlock, txs map[TxId]RawTx) ([]Effect, *BridgeState, error) {
	if block.Version == V0 {
		return nil, state, nil
	}

	if len(block.TxIds) != len(txs) {
		return nil, nil, stopf("%s", ErrTxIDMismatch)
	}
	for _, id := range block.TxIds {
		if _, ok := txs[id]; !ok {
			return nil, nil, stopf("%s", ErrTxIDMismatch)
		}
	}

	if block.Height < state.Constants.NockchainStartHeight {
		return nil, state, nil
	}
	if block.Height != state.HashState.NockNextHeight {
		return nil, nil, stopf("%s: want %d got %d", ErrHeightMismatch, state.HashState.NockNextHeight, block.Height)
	}
	if !block.IsGenesisForBridge && block.Prev != state.HashState.LastNockBlock {
		return nil, nil, stopf("%s", ErrNockReorg)
	}

	working := state.Clone()

	var deposits = map[Name]Deposit{}
	var depositOrder []Name

	for _, id := range block.TxIds {
		tx := txs[id]

		depositTest := isBridgeDeposit(tx)
		withdrawalTest := isBridgeWithdrawal(tx, state.BridgeLockRoot)
		if depositTest && withdrawalTest {
			return nil, nil, stopf("%s", ErrWithdrawalDetected)
		}
		if withdrawalTest {
			return nil, nil, stopf("%s", ErrWithdrawalDetected)
		}
		if !depositTest {
			continue
		}

		d, ok := extractDeposit(id, tx, state.BridgeLockRoot, state.Constants)
		if !ok {
			continue
		}
		deposits[d.Name] = d
		depositOrder = append(depositOrder, d.Name)
	}

	nb := NockBlock{
		Height:                block.Height,
		Deposits:              deposits,
		WithdrawalSettlements: map[Name]WithdrawalSettlement{},
		Prev:                  block.Prev,
	}
	nb.BlockId = hashNockBlock(nb)
	blockHash := nb.BlockId

	working.HashState.NockHashchain[blockHash] = nb
	working.HashState.LastNockBlock = blockHash
	working.HashState.NockNextHeight++

	for _, name := range depositOrder {
		working.HashState.UnsettledDeposits.Put(depositKey(blockHash, name), deposits[name])
	}

	// WithdrawalSettlements is always empty in this
	// release — any withdrawal-carrying tx is already caught and
	// stopped at step 6 above, so a populated map here would indicate
	// an internal invariant failure rather than a reachable input.
	if len(nb.WithdrawalSettlements) != 0 {
		return nil, nil, stopf("%s", ErrWithdrawalSettlement)
	}

	// Propose for every deposit with dest=Some, in ascending key
	// order. The loop below appends each request as its nonce is
	// assigned, so the emitted order is ascending nonce with no
	// reversal step.
	sortedNames := make([]Name, 0, len(depositOrder))
	for _, n := range depositOrder {
		if deposits[n].Dest != nil {
			sortedNames = append(sortedNames, n)
		}
	}
	sort.Slice(sortedNames, func(i, j int) bool { return sortedNames[i].Less(sortedNames[j]) })

	var requests []SignatureRequest
	for _, name := range sortedNames {
		d := deposits[name]
		unsettledK := depositKey(blockHash, name)
		working.HashState.UnsettledDeposits.Del(unsettledK)
		working.HashState.UnconfirmedSettledDeposits.Put(unsettledK, d)

		req := SignatureRequest{
			TxId:        d.TxId,
			Name:        name,
			Recipient:   *d.Dest,
			Amount:      d.AmountToMint,
			BlockHeight: block.Height,
			AsOf:        blockHash,
			Nonce:       working.NextNonce,
		}
		next, err := safemath.Add(working.NextNonce, uint64(1))
		if err != nil {
			return nil, state, err
		}
		working.NextNonce = next
		requests = append(requests, req)
	}

	// base_hold targets a Nock hash, so it is this
	// advancer's job to clear it; nock_hold targets a Base hash and is
	// cleared symmetrically by AdvanceBase.
	if working.HashState.BaseHold != nil && working.HashState.BaseHold.Hash == blockHash {
		working.HashState.BaseHold = nil
	}

	var effects []Effect
	if len(requests) > 0 {
		effects = append(effects, ProposeBaseCallEffect{Requests: requests})
	}

	return effects, working, nil
}
