// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/luxfi/bridgekernel/kernel"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T) (*Service, *kernel.Store) {
	t.Helper()
	state := kernel.NewBridgeState(kernel.NodeConfig{}, kernel.DefaultConstants(), kernel.NockHash{})
	d := kernel.NewDispatcher(state, log.NewNoOpLogger(), nil, kernel.NodeInfo{})
	store := kernel.NewStore(memdb.New())
	return NewService(d, store), store
}

func TestStopPersistsAndStartClears(t *testing.T) {
	require := require.New(t)
	s, store := newTestService(t)

	var reply EffectsReply
	require.NoError(s.Stop(&http.Request{}, &StopArgs{}, &reply))
	require.True(reply.Stopped)

	has, err := store.Has()
	require.NoError(err)
	require.True(has)

	var startReply EffectsReply
	require.NoError(s.Start(&http.Request{}, &EmptyArgs{}, &startReply))
	require.Nil(s.d.State().Stop)
}

func TestNockchainBlockAcceptsGenesisBlock(t *testing.T) {
	require := require.New(t)
	s, _ := newTestService(t)

	block := kernel.RawNockBlock{Version: kernel.V1, Height: 0, IsGenesisForBridge: true}
	ing := kernel.EncodeNockBlockIngest(block, nil)
	encoded, err := kernel.Codec.Marshal(kernel.CodecVersion, ing)
	require.NoError(err)

	var reply EffectsReply
	err = s.NockchainBlock(&http.Request{}, &NockchainBlockArgs{Block: hex.EncodeToString(encoded)}, &reply)
	require.NoError(err)
	require.False(reply.Stopped)
}

func TestBaseBlocksEmptyBatchStopsKernel(t *testing.T) {
	require := require.New(t)
	s, _ := newTestService(t)

	ing := kernel.EncodeBaseBlocksIngest(nil)
	encoded, err := kernel.Codec.Marshal(kernel.CodecVersion, ing)
	require.NoError(err)

	var reply EffectsReply
	err = s.BaseBlocks(&http.Request{}, &BaseBlocksArgs{Blocks: hex.EncodeToString(encoded)}, &reply)
	require.NoError(err)
	require.True(reply.Stopped)
}

func TestProposedBaseCallRejectsMalformedHex(t *testing.T) {
	require := require.New(t)
	s, _ := newTestService(t)

	var reply EffectsReply
	err := s.ProposedBaseCall(&http.Request{}, &ProposedBaseCallArgs{Requests: "not-hex"}, &reply)
	require.Error(err)
}

func TestProposedNockTxAlwaysStops(t *testing.T) {
	require := require.New(t)
	s, _ := newTestService(t)

	var reply EffectsReply
	err := s.ProposedNockTx(&http.Request{}, &ProposedNockTxArgs{Tx: hex.EncodeToString([]byte("tx"))}, &reply)
	require.NoError(err)
	require.True(reply.Stopped)
}
