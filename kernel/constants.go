// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"errors"

	"github.com/luxfi/ids"
)

// Default constants.
const (
	DefaultMinSigners         = 3
	DefaultTotalSigners       = 5
	DefaultMinimumEventNocks  = 100_000
	DefaultNicksFeePerNock    = 195
	DefaultBaseBlocksChunk    = 100
	NicksPerNock              = 65_536
)

// BridgeConstants are the admin-submitted parameters Validate checks
// before accepting a SetConstants cause.
type BridgeConstants struct {
	Version              uint32
	MinSigners           int32
	TotalSigners         int32
	MinimumEventNocks    uint64
	NicksFeePerNock      uint64
	BaseBlocksChunk      uint64
	BaseStartHeight      uint64
	NockchainStartHeight uint64
}

// DefaultConstants returns a reasonable set of constants defaults.
func DefaultConstants() BridgeConstants {
	return BridgeConstants{
		Version:           0,
		MinSigners:        DefaultMinSigners,
		TotalSigners:      DefaultTotalSigners,
		MinimumEventNocks: DefaultMinimumEventNocks,
		NicksFeePerNock:   DefaultNicksFeePerNock,
		BaseBlocksChunk:   DefaultBaseBlocksChunk,
	}
}

var (
	ErrBadVersion          = errors.New("set-constants: version must be 0")
	ErrBadSignerThresholds = errors.New("set-constants: requires 1 <= min_signers <= total_signers")
	ErrBadMinimumEvent     = errors.New("set-constants: minimum_event_nocks must be > 0")
	ErrBadChunkSize        = errors.New("set-constants: base_blocks_chunk must be > 0")
)

// Validate checks a proposed BridgeConstants: version must
// be 0, 1 <= min_signers <= total_signers, minimum_event_nocks > 0,
// base_blocks_chunk > 0.
func (c BridgeConstants) Validate() error {
	if c.Version != 0 {
		return ErrBadVersion
	}
	if c.MinSigners < 1 || c.MinSigners > c.TotalSigners {
		return ErrBadSignerThresholds
	}
	if c.MinimumEventNocks == 0 {
		return ErrBadMinimumEvent
	}
	if c.BaseBlocksChunk == 0 {
		return ErrBadChunkSize
	}
	return nil
}

// CalculateFee computes ceil(assets / NicksPerNock) * nicksFeePerNock,
// per-event fee.
func CalculateFee(assets, nicksFeePerNock uint64) uint64 {
	units := (assets + NicksPerNock - 1) / NicksPerNock
	return units * nicksFeePerNock
}

// NodeInfo is one configured bridge participant.
type NodeInfo struct {
	NodeID   ids.NodeID
	PubKeyHash [20]byte
	EthKey     EvmAddr
}

// NodeConfig is the CfgLoad payload: {node_id, nodes[5], my_eth_key,
// my_nock_key}.
type NodeConfig struct {
	NodeID    ids.NodeID
	Nodes     [5]NodeInfo
	MyEthKey  EvmAddr
	MyNockKey NockHash
}
