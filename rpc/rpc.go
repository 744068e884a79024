// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpc exposes the bridge coordination kernel over JSON-RPC 2.0
// for the external driver process: one Args/Reply pair per cause or
// peek the dispatcher accepts.
package rpc

import (
	"encoding/hex"
	"fmt"
	"net/http"

	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/holiman/uint256"

	"github.com/luxfi/bridgekernel/kernel"
	jsonutil "github.com/luxfi/bridgekernel/utils/json"
)

// Service wraps a kernel.Dispatcher as a set of JSON-RPC endpoints
// under the "bridge" namespace. A nil store disables persistence.
type Service struct {
	d     *kernel.Dispatcher
	store *kernel.Store
}

// NewService returns a new Service over d, persisting through store
// after every cause that reaches the dispatcher.
func NewService(d *kernel.Dispatcher, store *kernel.Store) *Service {
	return &Service{d: d, store: store}
}

// RegisterService registers the bridge kernel's RPC handlers.
func RegisterService(server *gorillarpc.Server, d *kernel.Dispatcher, store *kernel.Store) error {
	return server.RegisterService(NewService(d, store), "bridge")
}

// persist saves the dispatcher's current state if a store is wired.
func (s *Service) persist() error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.d.State())
}

func hexTo32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func hexToAmount(s string) (*uint256.Int, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, fmt.Errorf("amount exceeds 32 bytes, got %d", len(b))
	}
	var padded [32]byte
	copy(padded[32-len(b):], b)
	return new(uint256.Int).SetBytes(padded[:]), nil
}

func hexToAddr(s string) ([20]byte, error) {
	var out [20]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 20 {
		return out, fmt.Errorf("expected 20 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// --- Stop / Start ---

type StopArgs struct {
	Reason     string          `json:"reason"`
	BaseHash   string          `json:"baseHash"`
	BaseHeight jsonutil.Uint64 `json:"baseHeight"`
	NockHash   string          `json:"nockHash"`
	NockHeight jsonutil.Uint64 `json:"nockHeight"`
}

type EffectsReply struct {
	Stopped bool   `json:"stopped"`
	Reason  string `json:"reason,omitempty"`
}

// Stop forces the kernel into a stopped state.
func (s *Service) Stop(_ *http.Request, args *StopArgs, reply *EffectsReply) error {
	var info kernel.StopInfo
	if bh, err := hexTo32(args.BaseHash); err == nil {
		info.BaseHash = kernel.BaseHash(kernel.DigestFromBytes(bh))
	}
	if nh, err := hexTo32(args.NockHash); err == nil {
		info.NockHash = kernel.NockHash(kernel.DigestFromBytes(nh))
	}
	info.BaseHeight = uint64(args.BaseHeight)
	info.NockHeight = uint64(args.NockHeight)

	fx, err := s.d.Dispatch(kernel.Cause{Kind: kernel.CauseStop, StopPayload: info})
	if err != nil {
		return err
	}
	reply.Stopped = len(fx) > 0
	return s.persist()
}

type EmptyArgs struct{}

// Start clears a prior Stop.
func (s *Service) Start(_ *http.Request, _ *EmptyArgs, reply *EffectsReply) error {
	if _, err := s.d.Dispatch(kernel.Cause{Kind: kernel.CauseStart}); err != nil {
		return err
	}
	return s.persist()
}

// --- SetConstants ---

type SetConstantsArgs struct {
	Version              uint32          `json:"version"`
	MinSigners           int             `json:"minSigners"`
	TotalSigners         int             `json:"totalSigners"`
	MinimumEventNocks    jsonutil.Uint64 `json:"minimumEventNocks"`
	NicksFeePerNock      jsonutil.Uint64 `json:"nicksFeePerNock"`
	BaseBlocksChunk      jsonutil.Uint64 `json:"baseBlocksChunk"`
	BaseStartHeight      jsonutil.Uint64 `json:"baseStartHeight"`
	NockchainStartHeight jsonutil.Uint64 `json:"nockchainStartHeight"`
}

// SetConstants submits new bridge constants for validation and
// acceptance.
func (s *Service) SetConstants(_ *http.Request, args *SetConstantsArgs, reply *EffectsReply) error {
	c := kernel.BridgeConstants{
		Version:              args.Version,
		MinSigners:           int32(args.MinSigners),
		TotalSigners:         int32(args.TotalSigners),
		MinimumEventNocks:    uint64(args.MinimumEventNocks),
		NicksFeePerNock:      uint64(args.NicksFeePerNock),
		BaseBlocksChunk:      uint64(args.BaseBlocksChunk),
		BaseStartHeight:      uint64(args.BaseStartHeight),
		NockchainStartHeight: uint64(args.NockchainStartHeight),
	}
	fx, err := s.d.Dispatch(kernel.Cause{Kind: kernel.CauseSetConstants, SetConstants: c})
	if err != nil {
		return err
	}
	reply.Stopped = len(fx) > 0
	return s.persist()
}

// --- Chain ingestion ---
//
// The driver submits raw block/tx bodies and proposal batches as a
// hex-encoded blob of the kernel's own wire codec (kernel.Codec),
// rather than a bespoke JSON schema per nested type.

type NockchainBlockArgs struct {
	// Block is a hex-encoded kernel.Codec-marshaled kernel.NockBlockIngest.
	Block string `json:"block"`
}

// NockchainBlock submits one Nock block for the advancer to validate
// and append.
func (s *Service) NockchainBlock(_ *http.Request, args *NockchainBlockArgs, reply *EffectsReply) error {
	raw, err := hex.DecodeString(args.Block)
	if err != nil {
		return err
	}
	var ing kernel.NockBlockIngest
	if _, err := kernel.Codec.Unmarshal(raw, &ing); err != nil {
		return err
	}
	block, txs := kernel.DecodeNockBlockIngest(&ing)

	fx, err := s.d.Dispatch(kernel.Cause{Kind: kernel.CauseNockchainBlock, NockBlock: block, NockTxs: txs})
	if err != nil {
		return err
	}
	reply.Stopped = len(fx) > 0
	return s.persist()
}

type BaseBlocksArgs struct {
	// Blocks is a hex-encoded kernel.Codec-marshaled kernel.BaseBlocksIngest.
	Blocks string `json:"blocks"`
}

// BaseBlocks submits one fixed-size Base block batch for settlement
// matching.
func (s *Service) BaseBlocks(_ *http.Request, args *BaseBlocksArgs, reply *EffectsReply) error {
	raw, err := hex.DecodeString(args.Blocks)
	if err != nil {
		return err
	}
	var ing kernel.BaseBlocksIngest
	if _, err := kernel.Codec.Unmarshal(raw, &ing); err != nil {
		return err
	}
	blocks := kernel.DecodeBaseBlocksIngest(&ing)

	fx, err := s.d.Dispatch(kernel.Cause{Kind: kernel.CauseBaseBlocks, BaseBlocks: blocks})
	if err != nil {
		return err
	}
	reply.Stopped = len(fx) > 0
	return s.persist()
}

type ProposedBaseCallArgs struct {
	// Requests is a hex-encoded kernel.Codec-marshaled kernel.SignatureRequestBatch.
	Requests string `json:"requests"`
}

// ProposedBaseCall submits a peer's proposed signature request batch
// for acceptance.
func (s *Service) ProposedBaseCall(_ *http.Request, args *ProposedBaseCallArgs, reply *EffectsReply) error {
	raw, err := hex.DecodeString(args.Requests)
	if err != nil {
		return err
	}
	var batch kernel.SignatureRequestBatch
	if _, err := kernel.Codec.Unmarshal(raw, &batch); err != nil {
		return err
	}
	reqs := kernel.DecodeSignatureRequests(&batch)

	fx, err := s.d.Dispatch(kernel.Cause{Kind: kernel.CauseProposedBaseCall, ProposedBaseCall: reqs})
	if err != nil {
		return err
	}
	reply.Stopped = len(fx) > 0
	return s.persist()
}

type ProposedNockTxArgs struct {
	Tx string `json:"tx"`
}

// ProposedNockTx submits a peer's proposed withdrawal transaction.
// This release always rejects it; the withdrawal gate stays closed.
func (s *Service) ProposedNockTx(_ *http.Request, args *ProposedNockTxArgs, reply *EffectsReply) error {
	raw, err := hex.DecodeString(args.Tx)
	if err != nil {
		return err
	}
	fx, err := s.d.Dispatch(kernel.Cause{Kind: kernel.CauseProposedNockTx, ProposedNockTx: raw})
	if err != nil {
		return err
	}
	reply.Stopped = len(fx) > 0
	return s.persist()
}

// --- Peeks ---

type PeekArgs struct{}

type StopInfoReply struct {
	Stopped    bool            `json:"stopped"`
	BaseHash   string          `json:"baseHash,omitempty"`
	BaseHeight jsonutil.Uint64 `json:"baseHeight,omitempty"`
	NockHash   string          `json:"nockHash,omitempty"`
	NockHeight jsonutil.Uint64 `json:"nockHeight,omitempty"`
}

// GetStopInfo peeks the kernel's stop checkpoint, if any.
func (s *Service) GetStopInfo(_ *http.Request, _ *PeekArgs, reply *StopInfoReply) error {
	info := s.d.PeekStopInfo()
	if info == nil {
		return nil
	}
	reply.Stopped = true
	reply.BaseHash = kernel.Digest(info.BaseHash).String()
	reply.BaseHeight = jsonutil.Uint64(info.BaseHeight)
	reply.NockHash = kernel.Digest(info.NockHash).String()
	reply.NockHeight = jsonutil.Uint64(info.NockHeight)
	return nil
}

type ConstantsReply struct {
	Version              uint32          `json:"version"`
	MinSigners           int             `json:"minSigners"`
	TotalSigners         int             `json:"totalSigners"`
	MinimumEventNocks    jsonutil.Uint64 `json:"minimumEventNocks"`
	NicksFeePerNock      jsonutil.Uint64 `json:"nicksFeePerNock"`
	BaseBlocksChunk      jsonutil.Uint64 `json:"baseBlocksChunk"`
	BaseStartHeight      jsonutil.Uint64 `json:"baseStartHeight"`
	NockchainStartHeight jsonutil.Uint64 `json:"nockchainStartHeight"`
}

// GetConstants peeks the kernel's active constants.
func (s *Service) GetConstants(_ *http.Request, _ *PeekArgs, reply *ConstantsReply) error {
	c := s.d.PeekConstants()
	reply.Version = c.Version
	reply.MinSigners = int(c.MinSigners)
	reply.TotalSigners = int(c.TotalSigners)
	reply.MinimumEventNocks = jsonutil.Uint64(c.MinimumEventNocks)
	reply.NicksFeePerNock = jsonutil.Uint64(c.NicksFeePerNock)
	reply.BaseBlocksChunk = jsonutil.Uint64(c.BaseBlocksChunk)
	reply.BaseStartHeight = jsonutil.Uint64(c.BaseStartHeight)
	reply.NockchainStartHeight = jsonutil.Uint64(c.NockchainStartHeight)
	return nil
}

type HoldReply struct {
	Code uint32 `json:"code"`
	Info string `json:"info"`
}

// GetHold peeks whether either hold is pending.
func (s *Service) GetHold(_ *http.Request, _ *PeekArgs, reply *HoldReply) error {
	r := s.d.PeekHold()
	reply.Code = uint32(r.Code)
	reply.Info = r.Info
	return nil
}

type ProposedDepositArgs struct {
	TxId      string          `json:"txId"`
	NockHash  string          `json:"nockHash"`
	NameFirst string          `json:"nameFirst"`
	NameLast  string          `json:"nameLast"`
	Recipient string          `json:"recipient"`
	Amount    string          `json:"amount"`
	Nonce     jsonutil.Uint64 `json:"nonce"`
}

type ProposedDepositReply struct {
	Code uint32 `json:"code"`
	Info string `json:"info"`
}

// ProposedDeposit vets a peer's deposit proposal before the driver
// signs off on it.
func (s *Service) ProposedDeposit(_ *http.Request, args *ProposedDepositArgs, reply *ProposedDepositReply) error {
	txID, err := hexTo32(args.TxId)
	if err != nil {
		return err
	}
	nockHash, err := hexTo32(args.NockHash)
	if err != nil {
		return err
	}
	first, err := hexTo32(args.NameFirst)
	if err != nil {
		return err
	}
	last, err := hexTo32(args.NameLast)
	if err != nil {
		return err
	}
	recipient, err := hexToAddr(args.Recipient)
	if err != nil {
		return err
	}
	amount, err := hexToAmount(args.Amount)
	if err != nil {
		return err
	}

	q := kernel.ProposedDepositQuery{
		TxId:      txID,
		NockHash:  kernel.NockHash(kernel.DigestFromBytes(nockHash)),
		Name:      kernel.Name{First: kernel.NockHash(kernel.DigestFromBytes(first)), Last: kernel.NockHash(kernel.DigestFromBytes(last))},
		Recipient: recipient,
		Amount:    amount,
		Nonce:     uint64(args.Nonce),
	}
	res := s.d.PeekProposedDeposit(q)
	reply.Code = uint32(res.Code)
	reply.Info = res.Info
	return nil
}
