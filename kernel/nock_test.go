// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConstants() BridgeConstants {
	c := DefaultConstants()
	c.MinimumEventNocks = 1
	c.NicksFeePerNock = 1
	c.BaseBlocksChunk = 2
	return c
}

func encodeBridgeEntry(t *testing.T, addr EvmAddr) []byte {
	t.Helper()
	chunks, err := EvmToBased(addr)
	require.NoError(t, err)

	payload := make([]byte, 2+3*8)
	payload[0] = 0
	payload[1] = 1
	for i, c := range chunks {
		binary.BigEndian.PutUint64(payload[2+i*8:2+i*8+8], uint64(c))
	}
	return payload
}

func freshNockState(t *testing.T) (*BridgeState, NockHash) {
	t.Helper()
	lockRoot := NockHash(Hash(Leaf(NewFelt(7))))
	return NewBridgeState(NodeConfig{}, testConstants(), lockRoot), lockRoot
}

func TestAdvanceNockHappyDepositEmitsSignatureRequest(t *testing.T) {
	require := require.New(t)

	state, lockRoot := freshNockState(t)
	dest := EvmAddr{1, 2, 3, 4, 5}

	outName := Name{First: lockRoot, Last: NockHash(Hash(Leaf(NewFelt(99))))}
	tx := RawTx{
		Version: V1,
		Outputs: []NoteOutput{{
			Name:   outName,
			Assets: NicksPerNock * 10,
			NoteData: map[string][]byte{
				"%bridge": encodeBridgeEntry(t, dest),
			},
		}},
	}
	txID := TxId{0xAA}
	block := RawNockBlock{
		Version:            V1,
		Height:              0,
		TxIds:                []TxId{txID},
		IsGenesisForBridge: true,
	}

	fx, next, err := AdvanceNock(state, block, map[TxId]RawTx{txID: tx})
	require.NoError(err)
	require.NotNil(next)
	require.Len(fx, 1)

	propose, ok := fx[0].(ProposeBaseCallEffect)
	require.True(ok)
	require.Len(propose.Requests, 1)
	require.Equal(dest, propose.Requests[0].Recipient)
	require.Equal(uint64(1), propose.Requests[0].Nonce)
	require.Equal(uint64(2), next.NextNonce)

	k := depositKey(next.HashState.LastNockBlock, outName)
	_, inUnconfirmed := next.HashState.UnconfirmedSettledDeposits.Get(k)
	require.True(inUnconfirmed)
	_, inUnsettled := next.HashState.UnsettledDeposits.Get(k)
	require.False(inUnsettled)
}

func TestAdvanceNockMalformedRecipientRecordsWithoutProposing(t *testing.T) {
	require := require.New(t)

	state, lockRoot := freshNockState(t)

	outName := Name{First: lockRoot, Last: NockHash(Hash(Leaf(NewFelt(55))))}
	tx := RawTx{
		Version: V1,
		Outputs: []NoteOutput{{
			Name:   outName,
			Assets: NicksPerNock * 10,
			NoteData: map[string][]byte{
				"%bridge": {0, 1, 2, 3}, // malformed: too short
			},
		}},
	}
	txID := TxId{0xBB}
	block := RawNockBlock{
		Version:            V1,
		Height:             0,
		TxIds:              []TxId{txID},
		IsGenesisForBridge: true,
	}

	fx, next, err := AdvanceNock(state, block, map[TxId]RawTx{txID: tx})
	require.NoError(err)
	require.Empty(fx)

	k := depositKey(next.HashState.LastNockBlock, outName)
	d, ok := next.HashState.UnsettledDeposits.Get(k)
	require.True(ok)
	require.Nil(d.Dest)
}

func TestAdvanceNockWithdrawalDetectedStops(t *testing.T) {
	require := require.New(t)

	state, lockRoot := freshNockState(t)

	tx := RawTx{
		Version:    V1,
		SpentNotes: []SpentNote{{Name: Name{First: lockRoot}}},
		Outputs: []NoteOutput{{
			NoteData: map[string][]byte{
				"%ba-blk": {1},
				"%ba-eid": {2},
			},
		}},
	}
	txID := TxId{0xCC}
	block := RawNockBlock{
		Version:            V1,
		Height:             0,
		TxIds:              []TxId{txID},
		IsGenesisForBridge: true,
	}

	_, _, err := AdvanceNock(state, block, map[TxId]RawTx{txID: tx})
	require.Error(err)
}

func TestAdvanceNockHeightMismatchStops(t *testing.T) {
	require := require.New(t)

	state, _ := freshNockState(t)
	block := RawNockBlock{Version: V1, Height: 5, IsGenesisForBridge: true}

	_, _, err := AdvanceNock(state, block, map[TxId]RawTx{})
	require.Error(err)
}

func TestAdvanceNockIgnoresV0Blocks(t *testing.T) {
	require := require.New(t)

	state, _ := freshNockState(t)
	fx, next, err := AdvanceNock(state, RawNockBlock{Version: V0}, nil)
	require.NoError(err)
	require.Nil(fx)
	require.Same(state, next)
}
