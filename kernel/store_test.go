// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"errors"
	"testing"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/stretchr/testify/require"
)

func TestStoreHasAndLoadBeforeAnySave(t *testing.T) {
	require := require.New(t)

	store := NewStore(memdb.New())

	has, err := store.Has()
	require.NoError(err)
	require.False(has)

	_, err = store.Load()
	require.True(errors.Is(err, database.ErrNotFound))
}

func TestStoreSaveThenLoadRoundTrips(t *testing.T) {
	require := require.New(t)

	store := NewStore(memdb.New())

	state := NewBridgeState(NodeConfig{}, testConstants(), NockHash(Hash(Leaf(NewFelt(1)))))
	state.NextNonce = 11

	require.NoError(store.Save(state))

	has, err := store.Has()
	require.NoError(err)
	require.True(has)

	loaded, err := store.Load()
	require.NoError(err)
	require.Equal(state.NextNonce, loaded.NextNonce)
	require.Equal(state.BridgeLockRoot, loaded.BridgeLockRoot)

	reEncoded, err := Codec.Marshal(CodecVersion, Snapshot(loaded))
	require.NoError(err)
	original, err := Codec.Marshal(CodecVersion, Snapshot(state))
	require.NoError(err)
	require.Equal(original, reEncoded)
}

func TestStoreSaveOverwritesPriorSnapshot(t *testing.T) {
	require := require.New(t)

	store := NewStore(memdb.New())

	first := NewBridgeState(NodeConfig{}, testConstants(), NockHash(Hash(Leaf(NewFelt(1)))))
	first.NextNonce = 1
	require.NoError(store.Save(first))

	second := NewBridgeState(NodeConfig{}, testConstants(), NockHash(Hash(Leaf(NewFelt(1)))))
	second.NextNonce = 2
	require.NoError(store.Save(second))

	loaded, err := store.Load()
	require.NoError(err)
	require.Equal(uint64(2), loaded.NextNonce)
}
