// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"errors"
	"math/big"
)

// BasedList is a lossless little-endian radix-p encoding of an
// arbitrary-width integer as a sequence of field elements, each
// strictly less than Prime. It is the only representation in which a
// wide atom (a tx/event/block id wider than the Goldilocks field) may
// be used as a Hashable leaf or a ledger map key.
type BasedList []Felt

var (
	// ErrBasedListInvalid is returned when a BasedList contains an
	// element that is not in canonical reduced form.
	ErrBasedListInvalid = errors.New("based-list element >= p")
	// ErrEvmAddrOverflow is returned when an encoded integer does not
	// fit the three-chunk width reserved for EVM addresses.
	ErrEvmAddrOverflow = errors.New("based-list does not fit in 3 chunks for an EVM address")
)

// FromAtom repeatedly divides n by Prime, emitting little-endian
// remainders until the quotient is zero. FromAtom(0) == [0].
func FromAtom(n *big.Int) BasedList {
	if n.Sign() == 0 {
		return BasedList{0}
	}
	rem := new(big.Int).Set(n)
	var out BasedList
	for rem.Sign() > 0 {
		q, r := new(big.Int), new(big.Int)
		q.DivMod(rem, primeBig, r)
		out = append(out, Felt(r.Uint64()))
		rem = q
	}
	return out
}

// ToAtom computes sum(l[i] * p^i), the inverse of FromAtom.
func ToAtom(l BasedList) *big.Int {
	result := big.NewInt(0)
	pow := big.NewInt(1)
	for _, f := range l {
		term := new(big.Int).Mul(f.big(), pow)
		result.Add(result, term)
		pow.Mul(pow, primeBig)
	}
	return result
}

// Valid reports whether every element of l is a canonical field
// element, i.e. l[i] < p for all i.
func (l BasedList) Valid() bool {
	for _, f := range l {
		if !f.Valid() {
			return false
		}
	}
	return true
}

// EvmToBased encodes a 20-byte EVM address as exactly three based-list
// chunks (160 bits fits comfortably inside 3*log2(p) bits). It fails
// if the address's canonical based-list form needs more than three
// chunks, which would indicate the address does not actually fit in
// 160 bits.
func EvmToBased(addr EvmAddr) (BasedList, error) {
	n := new(big.Int).SetBytes(addr[:])
	l := FromAtom(n)
	if len(l) > 3 {
		return nil, ErrEvmAddrOverflow
	}
	for len(l) < 3 {
		l = append(l, 0)
	}
	return l, nil
}

// BasedToEvm is the inverse of EvmToBased.
func BasedToEvm(l BasedList) (EvmAddr, error) {
	var addr EvmAddr
	if len(l) > 3 || !l.Valid() {
		return addr, ErrEvmAddrOverflow
	}
	n := ToAtom(l)
	if n.BitLen() > 160 {
		return addr, ErrEvmAddrOverflow
	}
	b := n.Bytes()
	copy(addr[20-len(b):], b)
	return addr, nil
}
