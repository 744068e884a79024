// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

// Effect is anything the kernel asks its host driver to do. Effects
// produced by one cause are emitted atomically with the state
// transition that produced them: if the transition rolls back, no
// effect from it is ever returned.
type Effect interface{ isEffect() }

// StopEffect is terminal: once emitted, only a Start cause clears it.
type StopEffect struct {
	Reason string
	Last   StopInfo
}

func (StopEffect) isEffect() {}

// ProposeBaseCallEffect broadcasts a batch of signature requests to
// peers for signing.
type ProposeBaseCallEffect struct {
	Requests []SignatureRequest
}

func (ProposeBaseCallEffect) isEffect() {}

// BaseCallEffect is a submit-ready call against the Base bridge
// contract, once enough signatures have been aggregated (off-kernel).
type BaseCallEffect struct {
	Sigs [][]byte
	Data []byte
}

func (BaseCallEffect) isEffect() {}

// NockchainTxEffect is a submit-ready Nock transaction.
type NockchainTxEffect struct {
	Tx []byte
}

func (NockchainTxEffect) isEffect() {}

// GrpcPeekEffect asks the host to perform a read-only gRPC peek.
type GrpcPeekEffect struct {
	Pid  string
	Type string
	Path string
}

func (GrpcPeekEffect) isEffect() {}

// GrpcCallEffect asks the host to perform a gRPC call.
type GrpcCallEffect struct {
	IP     string
	Method string
	Data   []byte
}

func (GrpcCallEffect) isEffect() {}
