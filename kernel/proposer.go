// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"sort"

	"github.com/mr-tron/base58"
)

// sortedNodes returns the configured nodes sorted ascending by the
// base58 encoding of their pubkey hash. Per the design notes, the
// comparison is on the base58 *string* representation, not the raw
// hash bytes — reproducing this exactly is required for cross-node
// agreement on who proposes and verifies.
func sortedNodes(nodes [5]NodeInfo) []NodeInfo {
	out := make([]NodeInfo, len(nodes))
	copy(out, nodes[:])
	sort.Slice(out, func(i, j int) bool {
		return base58.Encode(out[i].PubKeyHash[:]) < base58.Encode(out[j].PubKeyHash[:])
	})
	return out
}

// Proposer returns the node responsible for proposing at height.
func Proposer(height uint64, nodes [5]NodeInfo) NodeInfo {
	sorted := sortedNodes(nodes)
	return sorted[height%uint64(len(sorted))]
}

// Verifiers returns the two nodes responsible for verifying the
// proposal at height: sorted[(height+1) mod N] and sorted[(height+2)
// mod N].
func Verifiers(height uint64, nodes [5]NodeInfo) (NodeInfo, NodeInfo) {
	sorted := sortedNodes(nodes)
	n := uint64(len(sorted))
	return sorted[(height+1)%n], sorted[(height+2)%n]
}

// IsProposer reports whether self is the configured proposer at
// height.
func IsProposer(height uint64, nodes [5]NodeInfo, self NodeInfo) bool {
	return Proposer(height, nodes).NodeID == self.NodeID
}
