// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func freshBaseState(t *testing.T) *BridgeState {
	t.Helper()
	lockRoot := NockHash(Hash(Leaf(NewFelt(3))))
	return NewBridgeState(NodeConfig{}, testConstants(), lockRoot)
}

func TestAdvanceBaseRejectsWrongChunkSize(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	_, _, err := AdvanceBase(state, []RawBaseBlock{{Height: 0}})
	require.Error(err)
}

func TestAdvanceBaseRejectsNonContiguousParent(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	blocks := []RawBaseBlock{
		{Height: 0, Bid: BaseBlockId{1}},
		{Height: 1, Bid: BaseBlockId{2}, ParentBid: BaseBlockId{9}}, // wrong parent
	}
	_, _, err := AdvanceBase(state, blocks)
	require.Error(err)
}

func TestAdvanceBaseSettlesDepositAgainstKnownNockBlock(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)

	dest := EvmAddr{9, 9, 9}
	name := Name{First: state.BridgeLockRoot, Last: NockHash(Hash(Leaf(NewFelt(101))))}
	deposit := Deposit{
		TxId:         TxId{1},
		Name:         name,
		Dest:         &dest,
		AmountToMint: uint256.NewInt(1000),
		Fee:          uint256.NewInt(1),
	}
	nockBlock := NockBlock{
		Height:                0,
		Deposits:              map[Name]Deposit{name: deposit},
		WithdrawalSettlements: map[Name]WithdrawalSettlement{},
	}
	nockBlock.BlockId = hashNockBlock(nockBlock)
	state.HashState.NockHashchain[nockBlock.BlockId] = nockBlock
	state.HashState.LastNockBlock = nockBlock.BlockId

	unsettledKey := depositKey(nockBlock.BlockId, name)
	state.HashState.UnsettledDeposits.Put(unsettledKey, deposit)
	state.NextNonce = 2

	eventId := BaseEventId{1, 2, 3}
	settlement := DepositSettlement{
		EventId:         eventId,
		CounterpartName: name,
		AsOf:            nockBlock.BlockId,
		NockHeight:      0,
		Dest:            dest,
		SettledAmount:   uint256.NewInt(1000),
		Nonce:           1,
	}

	blocks := []RawBaseBlock{
		{Height: 0, Bid: BaseBlockId{1}, Events: []BaseEvent{{Kind: EventDepositProcessed, EventId: eventId, Settlement: &settlement}}},
		{Height: 1, Bid: BaseBlockId{2}, ParentBid: BaseBlockId{1}},
	}

	fx, next, err := AdvanceBase(state, blocks)
	require.NoError(err)
	require.Empty(fx)
	require.Nil(next.HashState.BaseHold)

	_, stillUnsettled := next.HashState.UnsettledDeposits.Get(unsettledKey)
	require.False(stillUnsettled)
}

func TestAdvanceBaseInstallsHoldForUnseenAsOf(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	state.NextNonce = 2

	unseen := NockHash(Hash(Leaf(NewFelt(999))))
	eventId := BaseEventId{4, 5, 6}
	settlement := DepositSettlement{
		EventId:       eventId,
		AsOf:          unseen,
		NockHeight:    12,
		SettledAmount: uint256.NewInt(1),
		Nonce:         1,
	}

	blocks := []RawBaseBlock{
		{Height: 0, Bid: BaseBlockId{1}, Events: []BaseEvent{{Kind: EventDepositProcessed, EventId: eventId, Settlement: &settlement}}},
		{Height: 1, Bid: BaseBlockId{2}, ParentBid: BaseBlockId{1}},
	}

	_, next, err := AdvanceBase(state, blocks)
	require.NoError(err)
	require.NotNil(next.HashState.BaseHold)
	require.Equal(unseen, next.HashState.BaseHold.Hash)
	require.Equal(uint64(12), next.HashState.BaseHold.Height)
}

func TestAdvanceBaseKeepsGreatestHeightHoldCandidateAcrossBatch(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	state.NextNonce = 3

	lowUnseen := NockHash(Hash(Leaf(NewFelt(1001))))
	highUnseen := NockHash(Hash(Leaf(NewFelt(1002))))

	lowEvent := BaseEventId{7}
	lowSettlement := DepositSettlement{EventId: lowEvent, AsOf: lowUnseen, NockHeight: 5, SettledAmount: uint256.NewInt(1), Nonce: 1}

	highEvent := BaseEventId{8}
	highSettlement := DepositSettlement{EventId: highEvent, AsOf: highUnseen, NockHeight: 50, SettledAmount: uint256.NewInt(1), Nonce: 2}

	blocks := []RawBaseBlock{
		{Height: 0, Bid: BaseBlockId{1}, Events: []BaseEvent{
			{Kind: EventDepositProcessed, EventId: lowEvent, Settlement: &lowSettlement},
			{Kind: EventDepositProcessed, EventId: highEvent, Settlement: &highSettlement},
		}},
		{Height: 1, Bid: BaseBlockId{2}, ParentBid: BaseBlockId{1}},
	}

	_, next, err := AdvanceBase(state, blocks)
	require.NoError(err)
	require.NotNil(next.HashState.BaseHold)
	require.Equal(highUnseen, next.HashState.BaseHold.Hash)
	require.Equal(uint64(50), next.HashState.BaseHold.Height)
}
