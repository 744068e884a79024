// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func fiveTestNodes() [5]NodeInfo {
	var nodes [5]NodeInfo
	for i := range nodes {
		nodes[i] = NodeInfo{NodeID: ids.GenerateTestNodeID()}
		nodes[i].PubKeyHash[0] = byte(i + 1)
	}
	return nodes
}

func TestProposerRotatesByHeightModN(t *testing.T) {
	require := require.New(t)

	nodes := fiveTestNodes()
	sorted := sortedNodes(nodes)

	for h := uint64(0); h < 10; h++ {
		require.Equal(sorted[h%5], Proposer(h, nodes))
	}
}

func TestVerifiersAreTheTwoFollowingProposer(t *testing.T) {
	require := require.New(t)

	nodes := fiveTestNodes()
	sorted := sortedNodes(nodes)

	v1, v2 := Verifiers(3, nodes)
	require.Equal(sorted[4%5], v1)
	require.Equal(sorted[5%5], v2)
}

func TestIsProposerMatchesProposer(t *testing.T) {
	require := require.New(t)

	nodes := fiveTestNodes()
	p := Proposer(7, nodes)
	require.True(IsProposer(7, nodes, p))

	other := Proposer(8, nodes)
	if other.NodeID != p.NodeID {
		require.False(IsProposer(7, nodes, other))
	}
}
