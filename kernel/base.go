// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "sort"

// BaseEventKind distinguishes the three Base-side event shapes the
// driver may deliver inside one chunk.
type BaseEventKind int

const (
	EventDepositProcessed BaseEventKind = iota
	EventBridgeNodeUpdated
	EventBurnForWithdrawal
)

// BaseEvent is one transaction-level event inside a Base block.
type BaseEvent struct {
	Kind       BaseEventKind
	EventId    BaseEventId
	Settlement *DepositSettlement // set when Kind == EventDepositProcessed
	Withdrawal *Withdrawal        // set when Kind == EventBurnForWithdrawal
}

// RawBaseBlock is one fixed-height entry of the raw batch the driver
// delivers in a BaseBlocks cause.
type RawBaseBlock struct {
	Height    uint64
	Bid       BaseBlockId
	ParentBid BaseBlockId
	Events    []BaseEvent
}

// hashBaseBlockBatch computes the canonical TIP5 hash of a
// BaseBlockBatch.
func hashBaseBlockBatch(b BaseBlockBatch) BaseHash {
	heights := make([]uint64, 0, len(b.Blocks))
	for h := range b.Blocks {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	var blockEntries []Hashable
	for _, h := range heights {
		blk := b.Blocks[h]
		blockEntries = append(blockEntries, Tuple(
			Leaf(NewFelt(h)),
			Atom(ToAtom(BasedList(blk.Bid))),
			Atom(ToAtom(BasedList(blk.Parent))),
		))
	}

	withdrawalKeys := make([]BaseEventIdKey, 0, len(b.Withdrawals))
	for k := range b.Withdrawals {
		withdrawalKeys = append(withdrawalKeys, k)
	}
	sort.Slice(withdrawalKeys, func(i, j int) bool { return withdrawalKeys[i] < withdrawalKeys[j] })
	var withdrawalEntries []Hashable
	for _, k := range withdrawalKeys {
		w := b.Withdrawals[k]
		withdrawalEntries = append(withdrawalEntries, Tuple(
			Atom(ToAtom(BasedList(w.EventId))),
			BytesAtom(w.Burner[:]),
			Atom(w.Amount.ToBig()),
		))
	}

	settlementKeys := make([]BaseEventIdKey, 0, len(b.DepositSettlements))
	for k := range b.DepositSettlements {
		settlementKeys = append(settlementKeys, k)
	}
	sort.Slice(settlementKeys, func(i, j int) bool { return settlementKeys[i] < settlementKeys[j] })
	var settlementEntries []Hashable
	for _, k := range settlementKeys {
		s := b.DepositSettlements[k]
		settlementEntries = append(settlementEntries, Tuple(
			Atom(ToAtom(BasedList(s.EventId))),
			BytesAtom(Digest(s.AsOf).Bytes()),
			Leaf(NewFelt(s.Nonce)),
		))
	}

	tree := Tuple(
		Leaf(NewFelt(b.FirstHeight)),
		Leaf(NewFelt(b.LastHeight)),
		HashRef(Digest(b.Prev)),
		Tuple(blockEntries...),
		Tuple(withdrawalEntries...),
		Tuple(settlementEntries...),
	)
	return BaseHash(Hash(tree))
}

// AdvanceBase validates and appends one Base block batch,
// including the deposit-settlement matching loop. It returns
// nil effects on plain acceptance (the Base side never itself emits a
// ProposeBaseCall), the resulting state, and a *StopError on any
// fatal condition.
func AdvanceBase(state *BridgeState, rawBlocks []RawBaseBlock) ([]Effect, *BridgeState, error) {
	if len(rawBlocks) == 0 {
		return nil, nil, stopf("%s", ErrChunkSizeWrong)
	}

	firstHeight := rawBlocks[0].Height
	lastHeight := rawBlocks[len(rawBlocks)-1].Height
	chunk := state.Constants.BaseBlocksChunk
	if lastHeight-firstHeight != chunk-1 {
		return nil, nil, stopf("%s", ErrChunkSizeWrong)
	}

	if firstHeight < state.Constants.BaseStartHeight {
		return nil, state, nil
	}
	if firstHeight != state.HashState.BaseNextHeight {
		return nil, nil, stopf("%s", ErrBatchHeightWrong)
	}

	for i := 1; i < len(rawBlocks); i++ {
		if rawBlocks[i].ParentBid.Key() != rawBlocks[i-1].Bid.Key() {
			return nil, nil, stopf("%s", ErrBaseReorg)
		}
	}

	for _, rb := range rawBlocks {
		for _, ev := range rb.Events {
			if ev.Kind == EventBridgeNodeUpdated {
				return nil, nil, stopf("%s", ErrBridgeNodeUpdatedUnsupp)
			}
		}
	}

	working := state.Clone()

	blocks := make(map[uint64]BaseBlock, len(rawBlocks))
	withdrawals := map[BaseEventIdKey]Withdrawal{}
	settlements := map[BaseEventIdKey]DepositSettlement{}
	var settlementOrder []BaseEventIdKey

	for _, rb := range rawBlocks {
		blocks[rb.Height] = BaseBlock{Bid: rb.Bid, Parent: rb.ParentBid}
		for _, ev := range rb.Events {
			switch ev.Kind {
			case EventBurnForWithdrawal:
				withdrawals[ev.EventId.Key()] = *ev.Withdrawal
			case EventDepositProcessed:
				settlements[ev.EventId.Key()] = *ev.Settlement
				settlementOrder = append(settlementOrder, ev.EventId.Key())
			}
		}
	}
	sort.Slice(settlementOrder, func(i, j int) bool { return settlementOrder[i] < settlementOrder[j] })

	batch := BaseBlockBatch{
		FirstHeight:        firstHeight,
		LastHeight:         lastHeight,
		Blocks:             blocks,
		Withdrawals:        withdrawals,
		DepositSettlements: settlements,
		Prev:               working.HashState.LastBaseBlocks,
	}
	batchHash := hashBaseBlockBatch(batch)

	working.HashState.BaseHashchain[batchHash] = batch
	working.HashState.LastBaseBlocks = batchHash
	working.HashState.BaseNextHeight += chunk

	if len(withdrawals) > 0 {
		for k, w := range withdrawals {
			working.HashState.UnsettledWithdrawals.Put(withdrawalKeyFromParts(batchHash, k), w)
		}
	}

	newHold, err := applySettlements(working, settlements, settlementOrder, batchHash)
	if err != nil {
		return nil, nil, err
	}
	if newHold != nil {
		working.HashState.BaseHold = newHold
	}

	if working.HashState.NockHold != nil && working.HashState.NockHold.Hash == batchHash {
		working.HashState.NockHold = nil
	}

	return nil, working, nil
}

// applySettlements runs the two-phase settlement loop: every
// settlement in the batch is walked, in order; any whose Nock origin
// block hasn't been seen yet becomes a hold candidate (the greatest
// height among all such candidates wins, scanning does not stop at
// the first one, per the open question this preserves), and once a
// hold candidate exists, later settlements' ledger mutations are
// skipped (deferred to a retry after the hold resolves) even though
// their nonce/as-of checks above still ran.
func applySettlements(working *BridgeState, settlements map[BaseEventIdKey]DepositSettlement, order []BaseEventIdKey, batchHash BaseHash) (*BaseHoldTarget, error) {
	var pendingHold *BaseHoldTarget

	for _, k := range order {
		s := settlements[k]

		if s.Nonce >= working.NextNonce {
			return nil, stopf("%s", ErrSettlementNonceTooHigh)
		}

		if _, seen := working.HashState.NockHashchain[s.AsOf]; !seen {
			if pendingHold == nil || s.NockHeight > pendingHold.Height {
				pendingHold = &BaseHoldTarget{Hash: s.AsOf, Height: s.NockHeight}
			}
			continue
		}

		if pendingHold != nil {
			continue
		}

		block := working.HashState.NockHashchain[s.AsOf]
		deposit, ok := block.Deposits[s.CounterpartName]
		if !ok {
			return nil, stopf("%s", ErrSettlementAbsentDeposit)
		}

		unsettledK := depositKey(s.AsOf, s.CounterpartName)
		_, inUnsettled := working.HashState.UnsettledDeposits.Get(unsettledK)
		_, inUnconfirmed := working.HashState.UnconfirmedSettledDeposits.Get(unsettledK)
		if !inUnsettled && !inUnconfirmed {
			return nil, stopf("%s", ErrSettlementAbsentDeposit)
		}

		if deposit.Dest == nil || *deposit.Dest != s.Dest || !deposit.AmountToMint.Eq(s.SettledAmount) {
			return nil, stopf("%s", ErrSettlementMismatch)
		}

		working.HashState.UnsettledDeposits.Del(unsettledK)
		working.HashState.UnconfirmedSettledDeposits.Del(unsettledK)
	}

	_ = batchHash
	return pendingHold, nil
}

func withdrawalKeyFromParts(block BaseHash, eventKey BaseEventIdKey) string {
	b := Digest(block).Bytes()
	out := make([]byte, 0, 32+len(eventKey))
	out = append(out, b...)
	out = append(out, []byte(eventKey)...)
	return string(out)
}
