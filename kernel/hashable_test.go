// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIsDeterministicOverIdenticalTrees(t *testing.T) {
	require := require.New(t)

	a := Tuple(Leaf(NewFelt(1)), Leaf(NewFelt(2)), BytesAtom([]byte("hello")))
	b := Tuple(Leaf(NewFelt(1)), Leaf(NewFelt(2)), BytesAtom([]byte("hello")))

	require.Equal(Hash(a), Hash(b))
}

func TestHashDistinguishesDifferentTrees(t *testing.T) {
	require := require.New(t)

	a := Tuple(Leaf(NewFelt(1)), Leaf(NewFelt(2)))
	b := Tuple(Leaf(NewFelt(2)), Leaf(NewFelt(1)))

	require.NotEqual(Hash(a), Hash(b))
}

func TestHashableMapIsInsertionOrderIndependent(t *testing.T) {
	require := require.New(t)

	type entry = struct {
		KeyBytes []byte
		Node     Hashable
	}

	forward := []entry{
		{KeyBytes: []byte{0x01}, Node: Leaf(NewFelt(10))},
		{KeyBytes: []byte{0x02}, Node: Leaf(NewFelt(20))},
		{KeyBytes: []byte{0x03}, Node: Leaf(NewFelt(30))},
	}
	reversed := []entry{forward[2], forward[0], forward[1]}

	require.Equal(Hash(HashableMap(forward)), Hash(HashableMap(reversed)))
}

func TestDigestBytesRoundTripsThroughString(t *testing.T) {
	require := require.New(t)

	d := Hash(Leaf(NewFelt(42)))
	require.Len(d.Bytes(), 32)
	raw, err := hex.DecodeString(d.String())
	require.NoError(err)
	var b [32]byte
	copy(b[:], raw)
	require.Equal(d, DigestFromBytes(b))
	require.False(d.IsZero())
}
