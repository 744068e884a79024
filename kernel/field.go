// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package kernel implements the bridge coordination kernel: a pure,
// deterministic state machine (cause, state) -> (effects, state') for
// a federated multisig bridge between a Nock chain and a Base chain.
package kernel

import "math/big"

// Prime is the Goldilocks prime p = 2^64 - 2^32 + 1, the modulus
// underlying every field element the hasher and based-list codec
// operate on.
const Prime uint64 = 0xFFFFFFFF00000001

var primeBig = new(big.Int).SetUint64(Prime)

// Felt is an element of GF(Prime). NewFelt and the arithmetic methods
// always return a reduced value (0 <= value < Prime); NewFelt reduces
// an out-of-range input rather than rejecting it. A Felt made by plain
// conversion (e.g. decoded off the wire) is not checked: see Valid.
type Felt uint64

// NewFelt reduces v into GF(Prime).
func NewFelt(v uint64) Felt {
	if v < Prime {
		return Felt(v)
	}
	return Felt(v - Prime)
}

// Valid reports whether f is in canonical reduced form, i.e. f < p.
// Callers decoding a Felt off the wire must check this before using
// it as a hash leaf or map key (per the based-list codec contract).
func (f Felt) Valid() bool {
	return uint64(f) < Prime
}

func (f Felt) big() *big.Int {
	return new(big.Int).SetUint64(uint64(f))
}

func fromBig(b *big.Int) Felt {
	r := new(big.Int).Mod(b, primeBig)
	return Felt(r.Uint64())
}

// Add returns f + g mod p.
func (f Felt) Add(g Felt) Felt {
	return fromBig(new(big.Int).Add(f.big(), g.big()))
}

// Sub returns f - g mod p.
func (f Felt) Sub(g Felt) Felt {
	return fromBig(new(big.Int).Sub(f.big(), g.big()))
}

// Mul returns f * g mod p.
func (f Felt) Mul(g Felt) Felt {
	return fromBig(new(big.Int).Mul(f.big(), g.big()))
}

// Pow returns f^n mod p.
func (f Felt) Pow(n uint64) Felt {
	return fromBig(new(big.Int).Exp(f.big(), new(big.Int).SetUint64(n), primeBig))
}
