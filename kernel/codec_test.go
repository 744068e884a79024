// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStateSnapshotRoundTripsByteIdentically(t *testing.T) {
	require := require.New(t)

	state := NewBridgeState(NodeConfig{}, testConstants(), NockHash(Hash(Leaf(NewFelt(1)))))

	dest := EvmAddr{1, 2, 3}
	name := Name{First: state.BridgeLockRoot, Last: NockHash(Hash(Leaf(NewFelt(2))))}
	deposit := Deposit{TxId: TxId{9}, Name: name, Dest: &dest, AmountToMint: uint256.NewInt(42), Fee: uint256.NewInt(1)}

	nb := NockBlock{Height: 0, Deposits: map[Name]Deposit{name: deposit}, WithdrawalSettlements: map[Name]WithdrawalSettlement{}}
	nb.BlockId = hashNockBlock(nb)
	state.HashState.NockHashchain[nb.BlockId] = nb
	state.HashState.LastNockBlock = nb.BlockId
	state.HashState.UnsettledDeposits.Put(depositKey(nb.BlockId, name), deposit)
	state.NextNonce = 7

	snap := Snapshot(state)
	encoded, err := Codec.Marshal(codecVersion, snap)
	require.NoError(err)

	var decoded StateSnapshot
	_, err = Codec.Unmarshal(encoded, &decoded)
	require.NoError(err)

	reEncoded, err := Codec.Marshal(codecVersion, &decoded)
	require.NoError(err)
	require.Equal(encoded, reEncoded)

	restored := Restore(&decoded)
	require.Equal(state.NextNonce, restored.NextNonce)
	require.Equal(state.HashState.LastNockBlock, restored.HashState.LastNockBlock)

	k := depositKey(nb.BlockId, name)
	got, ok := restored.HashState.UnsettledDeposits.Get(k)
	require.True(ok)
	require.Equal(deposit.TxId, got.TxId)
	require.True(deposit.AmountToMint.Eq(got.AmountToMint))
	require.Equal(*deposit.Dest, *got.Dest)
}

func TestSignatureRequestBatchRoundTrips(t *testing.T) {
	require := require.New(t)

	reqs := []SignatureRequest{{
		TxId:        TxId{1},
		Name:        Name{First: NockHash(Hash(Leaf(NewFelt(3)))), Last: NockHash(Hash(Leaf(NewFelt(4))))},
		Recipient:   EvmAddr{5},
		Amount:      uint256.NewInt(100),
		BlockHeight: 10,
		AsOf:        NockHash(Hash(Leaf(NewFelt(5)))),
		Nonce:       1,
	}}

	batch := EncodeSignatureRequests(reqs)
	encoded, err := Codec.Marshal(codecVersion, batch)
	require.NoError(err)

	var decoded SignatureRequestBatch
	_, err = Codec.Unmarshal(encoded, &decoded)
	require.NoError(err)

	back := DecodeSignatureRequests(&decoded)
	require.Len(back, 1)
	require.Equal(reqs[0].TxId, back[0].TxId)
	require.True(reqs[0].Amount.Eq(back[0].Amount))
	require.Equal(reqs[0].Nonce, back[0].Nonce)
}
