// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, state *BridgeState) *Dispatcher {
	t.Helper()
	return NewDispatcher(state, log.NewNoOpLogger(), nil, NodeInfo{})
}

func TestDispatchStartClearsOperatorStop(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	d := newTestDispatcher(t, state)

	fx, err := d.Dispatch(Cause{Kind: CauseStop, StopPayload: StopInfo{}})
	require.NoError(err)
	require.Len(fx, 1)
	require.NotNil(d.State().Stop)

	fx, err = d.Dispatch(Cause{Kind: CauseStart})
	require.NoError(err)
	require.Nil(fx)
	require.Nil(d.State().Stop)
}

func TestDispatchRejectsAllCausesWhilePendingHold(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	state.HashState.BaseHold = &BaseHoldTarget{Hash: NockHash{}, Height: 10}
	d := newTestDispatcher(t, state)

	fx, err := d.Dispatch(Cause{Kind: CauseCfgLoad})
	require.NoError(err)
	require.Len(fx, 1)
	_, ok := fx[0].(StopEffect)
	require.True(ok)
	// the hold itself is not promoted to a persisted stop
	require.Nil(d.State().Stop)
	require.NotNil(d.State().HashState.BaseHold)
}

func TestDispatchProposedBaseCallRejectsDoubleProposal(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	name := Name{First: state.BridgeLockRoot, Last: NockHash(Hash(Leaf(NewFelt(77))))}
	asOf := NockHash(Hash(Leaf(NewFelt(88))))
	k := depositKey(asOf, name)

	deposit := Deposit{AmountToMint: uint256.NewInt(10), Fee: uint256.NewInt(1)}
	state.HashState.UnconfirmedSettledDeposits.Put(k, deposit)
	state.NextNonce = 5

	d := newTestDispatcher(t, state)
	_, err := d.Dispatch(Cause{
		Kind: CauseProposedBaseCall,
		ProposedBaseCall: []SignatureRequest{{
			Name:  name,
			AsOf:  asOf,
			Nonce: 1,
		}},
	})
	require.NoError(err)
	require.NotNil(d.State().Stop)
}

func TestDispatchProposedNockTxAlwaysStops(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	d := newTestDispatcher(t, state)

	_, err := d.Dispatch(Cause{Kind: CauseProposedNockTx, ProposedNockTx: []byte{1}})
	require.NoError(err)
	require.NotNil(d.State().Stop)
}

func TestDispatchSetConstantsRejectsInvalid(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	d := newTestDispatcher(t, state)

	bad := testConstants()
	bad.MinSigners = 0
	_, err := d.Dispatch(Cause{Kind: CauseSetConstants, SetConstants: bad})
	require.NoError(err)
	require.NotNil(d.State().Stop)
}

func TestPeekProposedDepositTriState(t *testing.T) {
	require := require.New(t)

	state := freshBaseState(t)
	name := Name{First: state.BridgeLockRoot, Last: NockHash(Hash(Leaf(NewFelt(55))))}
	asOf := NockHash(Hash(Leaf(NewFelt(66))))
	dest := EvmAddr{1, 2}
	k := depositKey(asOf, name)
	state.HashState.UnsettledDeposits.Put(k, Deposit{
		TxId:         TxId{5},
		Dest:         &dest,
		AmountToMint: uint256.NewInt(500),
	})
	state.NextNonce = 10

	d := newTestDispatcher(t, state)

	// unknown deposit -> soft miss
	res := d.PeekProposedDeposit(ProposedDepositQuery{NockHash: asOf, Name: Name{First: state.BridgeLockRoot}})
	require.Equal(PeekSoftMiss, res.Code)

	// matching deposit -> ok
	res = d.PeekProposedDeposit(ProposedDepositQuery{
		TxId: TxId{5}, NockHash: asOf, Name: name, Recipient: dest, Amount: uint256.NewInt(500), Nonce: 1,
	})
	require.Equal(PeekOK, res.Code)

	// mismatched recipient -> reject
	res = d.PeekProposedDeposit(ProposedDepositQuery{
		TxId: TxId{5}, NockHash: asOf, Name: name, Recipient: EvmAddr{9}, Amount: uint256.NewInt(500), Nonce: 1,
	})
	require.Equal(PeekReject, res.Code)
}
