// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"fmt"
	"sort"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"

	"github.com/luxfi/bridgekernel/utils/timer/mockable"
)

// CauseKind enumerates the inbound events the kernel accepts.
type CauseKind int

const (
	CauseCfgLoad CauseKind = iota
	CauseSetConstants
	CauseStop
	CauseStart
	CauseBaseBlocks
	CauseNockchainBlock
	CauseProposedBaseCall
	CauseProposedNockTx
)

// Cause is one inbound event. Only the field matching Kind is read.
type Cause struct {
	Kind CauseKind

	CfgLoad      *NodeConfig
	SetConstants BridgeConstants
	StopPayload  StopInfo

	BaseBlocks []RawBaseBlock

	NockBlock RawNockBlock
	NockTxs   map[TxId]RawTx

	ProposedBaseCall []SignatureRequest

	ProposedNockTx []byte
}

// MetricsSink receives dispatcher events. Implementations live outside
// the kernel package (see the metrics package) so the pure core never
// imports prometheus directly; a nil sink is always safe to call
// through — every call site goes through the dispatcher's nil-checked
// helper.
type MetricsSink interface {
	BlockAccepted()
	ChunkAccepted()
	SignatureRequestEmitted()
	StopEmitted()
	HoldInstalled()
	HoldCleared()
	SetNextNonce(uint64)
}

// Dispatcher owns the BridgeState between causes and is the sole
// mutation point: Dispatch(cause) is the entire (cause, state) ->
// (effects, state') kernel, wrapped in a fault barrier that converts
// any unexpected panic into the same Stop shape a handled error would
// produce.
type Dispatcher struct {
	state    *BridgeState
	log      log.Logger
	metrics  MetricsSink
	self     NodeInfo
	clock    mockable.Clock
	lastSeen time.Time
}

// NewDispatcher constructs a Dispatcher over an existing state.
func NewDispatcher(state *BridgeState, logger log.Logger, metrics MetricsSink, self NodeInfo) *Dispatcher {
	return &Dispatcher{state: state, log: logger, metrics: metrics, self: self}
}

// State returns the dispatcher's current state. Callers must treat it
// as read-only; the dispatcher is the only thing that mutates it.
func (d *Dispatcher) State() *BridgeState { return d.state }

// LastCauseAt returns the wall-clock time Dispatch was last invoked,
// the zero Time if no cause has ever been dispatched. This is a
// dispatcher-local diagnostic, not part of BridgeState — it never
// feeds the hashed state and two nodes processing the same cause at
// different wall-clock times remain in consensus.
func (d *Dispatcher) LastCauseAt() time.Time { return d.lastSeen }

func (d *Dispatcher) metric(f func(MetricsSink)) {
	if d.metrics != nil {
		f(d.metrics)
	}
}

// Dispatch routes one cause through the dispatcher's gating rules, the
// fault barrier, and the per-cause handler, returning the effects to
// emit. The dispatcher's own state field is updated in place on
// success; on Stop it is updated only to set state.Stop (or, for a
// hold-gated rejection, left untouched entirely).
func (d *Dispatcher) Dispatch(cause Cause) (effects []Effect, err error) {
	d.lastSeen = d.clock.Time()
	defer func() {
		if r := recover(); r != nil {
			info := d.state.checkpoint()
			reason := fmt.Sprintf("fault barrier: %v", r)
			d.state.Stop = &info
			d.log.Error("bridge kernel fault barrier caught a panic", log.String("reason", reason))
			d.metric(func(m MetricsSink) { m.StopEmitted() })
			effects = []Effect{StopEffect{Reason: reason, Last: info}}
			err = nil
		}
	}()

	if d.state.Stop != nil && cause.Kind != CauseStart {
		d.log.Debug("cause dropped: kernel is stopped")
		return nil, nil
	}

	if d.state.HashState.NockHold != nil || d.state.HashState.BaseHold != nil {
		info := d.state.checkpoint()
		d.log.Warn("cause rejected: hold pending, this release treats holds as un-recoverable")
		d.metric(func(m MetricsSink) { m.StopEmitted() })
		return []Effect{StopEffect{Reason: "hold pending", Last: info}}, nil
	}

	fx, handlerErr := d.route(cause)
	if handlerErr != nil {
		info := d.state.checkpoint()
		d.state.Stop = &info
		d.log.Error("cause stopped the kernel", log.String("reason", handlerErr.Error()))
		d.metric(func(m MetricsSink) { m.StopEmitted() })
		return []Effect{StopEffect{Reason: handlerErr.Error(), Last: info}}, nil
	}
	return fx, nil
}

func (d *Dispatcher) route(cause Cause) ([]Effect, error) {
	switch cause.Kind {
	case CauseCfgLoad:
		return d.handleCfgLoad(cause)
	case CauseSetConstants:
		return d.handleSetConstants(cause)
	case CauseStop:
		return d.handleStop(cause)
	case CauseStart:
		return d.handleStart()
	case CauseBaseBlocks:
		return d.handleBaseBlocks(cause)
	case CauseNockchainBlock:
		return d.handleNockchainBlock(cause)
	case CauseProposedBaseCall:
		return d.handleProposedBaseCall(cause)
	case CauseProposedNockTx:
		return d.handleProposedNockTx()
	default:
		return nil, stopf("unknown cause kind %d", cause.Kind)
	}
}

func (d *Dispatcher) handleCfgLoad(cause Cause) ([]Effect, error) {
	if cause.CfgLoad != nil {
		d.state.Config = *cause.CfgLoad
		d.log.Info("loaded node config", log.Stringer("nodeID", cause.CfgLoad.NodeID))
	}
	return nil, nil
}

func (d *Dispatcher) handleSetConstants(cause Cause) ([]Effect, error) {
	next := cause.SetConstants
	if err := next.Validate(); err != nil {
		return nil, err
	}

	old := d.state.Constants
	unstarted := d.state.HashState.NockNextHeight == old.NockchainStartHeight &&
		d.state.HashState.BaseNextHeight == old.BaseStartHeight

	d.state.Constants = next
	if unstarted {
		d.state.HashState.NockNextHeight = next.NockchainStartHeight
		d.state.HashState.BaseNextHeight = next.BaseStartHeight
	}
	d.log.Info("accepted new bridge constants",
		log.Int32("minSigners", next.MinSigners),
		log.Int32("totalSigners", next.TotalSigners),
	)
	return nil, nil
}

func (d *Dispatcher) handleStop(cause Cause) ([]Effect, error) {
	info := cause.StopPayload
	d.state.Stop = &info
	d.metric(func(m MetricsSink) { m.StopEmitted() })
	return []Effect{StopEffect{Reason: "operator stop", Last: info}}, nil
}

func (d *Dispatcher) handleStart() ([]Effect, error) {
	d.state.Stop = nil
	d.log.Info("cleared stop")
	return nil, nil
}

func (d *Dispatcher) handleBaseBlocks(cause Cause) ([]Effect, error) {
	fx, newState, err := AdvanceBase(d.state, cause.BaseBlocks)
	if err != nil {
		return nil, err
	}
	if newState != d.state {
		if newState.HashState.BaseHold != nil && d.state.HashState.BaseHold == nil {
			d.metric(func(m MetricsSink) { m.HoldInstalled() })
		}
		if d.state.HashState.NockHold != nil && newState.HashState.NockHold == nil {
			d.metric(func(m MetricsSink) { m.HoldCleared() })
		}
		d.metric(func(m MetricsSink) { m.ChunkAccepted() })
		d.state = newState
	}
	return fx, nil
}

func (d *Dispatcher) handleNockchainBlock(cause Cause) ([]Effect, error) {
	fx, newState, err := AdvanceNock(d.state, cause.NockBlock, cause.NockTxs)
	if err != nil {
		return nil, err
	}
	if newState == d.state {
		return fx, nil
	}

	if d.state.HashState.BaseHold != nil && newState.HashState.BaseHold == nil {
		d.metric(func(m MetricsSink) { m.HoldCleared() })
	}
	d.metric(func(m MetricsSink) { m.BlockAccepted() })
	d.metric(func(m MetricsSink) { m.SetNextNonce(newState.NextNonce) })

	// System overview: "emits signature requests when this node is
	// proposer." AdvanceNock always advances the deterministic ledger
	// state (nonce assignment must be identical on every node); only
	// the actual broadcast effect is suppressed for non-proposers.
	isProposer := IsProposer(cause.NockBlock.Height, d.state.Config.Nodes, d.self)
	filtered := fx[:0]
	for _, e := range fx {
		if pe, ok := e.(ProposeBaseCallEffect); ok {
			if !isProposer {
				continue
			}
			for range pe.Requests {
				d.metric(func(m MetricsSink) { m.SignatureRequestEmitted() })
			}
		}
		filtered = append(filtered, e)
	}

	d.state = newState
	return filtered, nil
}

func (d *Dispatcher) handleProposedBaseCall(cause Cause) ([]Effect, error) {
	working := d.state.Clone()

	for _, req := range cause.ProposedBaseCall {
		if req.Nonce >= working.NextNonce {
			return nil, stopf("%s", ErrProposalNonceTooHigh)
		}
		k := depositKey(req.AsOf, req.Name)
		if _, ok := working.HashState.UnsettledDeposits.Get(k); !ok {
			return nil, stopf("%s", ErrProposalUnknownDeposit)
		}
		if _, ok := working.HashState.UnconfirmedSettledDeposits.Get(k); ok {
			return nil, stopf("%s", ErrDoubleProposal)
		}

		deposit, _ := working.HashState.UnsettledDeposits.Get(k)
		working.HashState.UnsettledDeposits.Del(k)
		working.HashState.UnconfirmedSettledDeposits.Put(k, deposit)
	}

	d.state = working
	return nil, nil
}

func (d *Dispatcher) handleProposedNockTx() ([]Effect, error) {
	// Open question #3: ProposedNockTx is a placeholder that always
	// aborts; the withdrawal gate stays closed in this release.
	return nil, stopf("ProposedNockTx rejected: withdrawal gate closed")
}

// --- Read path ---

// PeekCode is the tri-state result code a peek can return.
type PeekCode uint32

const (
	PeekOK       PeekCode = 0
	PeekSoftMiss PeekCode = 1 // "not-found-soft", e.g. node still syncing
	PeekReject   PeekCode = 2 // "False" / stop-signal
)

// PeekResult is the read-path response envelope.
type PeekResult struct {
	Code  PeekCode
	Value []byte
	Info  string
}

// PeekState returns the full BridgeState snapshot.
func (d *Dispatcher) PeekState() *BridgeState { return d.state }

// PeekConstants returns the current constants.
func (d *Dispatcher) PeekConstants() BridgeConstants { return d.state.Constants }

// PeekStopInfo returns the current stop checkpoint, if any.
func (d *Dispatcher) PeekStopInfo() *StopInfo { return d.state.Stop }

// PeekHold reports whether either hold is pending and, if so, whether
// its target has in fact already landed on its own chain's
// hashchain (a membership test against the hold target).
func (d *Dispatcher) PeekHold() PeekResult {
	if d.state.HashState.NockHold != nil {
		_, present := d.state.HashState.BaseHashchain[d.state.HashState.NockHold.Hash]
		if present {
			return PeekResult{Code: PeekOK, Info: "nock_hold target present in base hashchain"}
		}
		return PeekResult{Code: PeekSoftMiss, Info: "nock_hold pending, target not yet observed"}
	}
	if d.state.HashState.BaseHold != nil {
		_, present := d.state.HashState.NockHashchain[d.state.HashState.BaseHold.Hash]
		if present {
			return PeekResult{Code: PeekOK, Info: "base_hold target present in nock hashchain"}
		}
		return PeekResult{Code: PeekSoftMiss, Info: "base_hold pending, target not yet observed"}
	}
	return PeekResult{Code: PeekSoftMiss, Info: "no hold pending"}
}

// ProposedDepositQuery is the proposed_deposit peek's request shape:
// the driver asks the kernel to vet a peer's proposal before signing
// it.
type ProposedDepositQuery struct {
	TxId      TxId
	NockHash  NockHash
	Name      Name
	Recipient EvmAddr
	Amount    *uint256.Int
	Nonce     uint64
}

// PeekProposedDeposit implements the proposed_deposit query.
func (d *Dispatcher) PeekProposedDeposit(q ProposedDepositQuery) PeekResult {
	k := depositKey(q.NockHash, q.Name)

	if _, ok := d.state.HashState.UnconfirmedSettledDeposits.Get(k); ok {
		return PeekResult{Code: PeekReject, Info: "double proposal"}
	}

	deposit, ok := d.state.HashState.UnsettledDeposits.Get(k)
	if !ok {
		return PeekResult{Code: PeekSoftMiss, Info: "not found, node may be syncing"}
	}

	if q.Nonce >= d.state.NextNonce {
		return PeekResult{Code: PeekReject, Info: "nonce >= next_nonce"}
	}

	if deposit.Dest != nil && *deposit.Dest == q.Recipient &&
		deposit.AmountToMint != nil && q.Amount != nil && deposit.AmountToMint.Eq(q.Amount) &&
		deposit.TxId == q.TxId {
		return PeekResult{Code: PeekOK}
	}
	return PeekResult{Code: PeekReject, Info: "hard mismatch"}
}

// SortedUnsettledDeposits is a test/diagnostic helper returning the
// unsettled-deposit ledger's keys in tap order.
func (d *Dispatcher) SortedUnsettledDeposits() []string {
	keys := d.state.HashState.UnsettledDeposits.Keys()
	sort.Strings(keys)
	return keys
}
