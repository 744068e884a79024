// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"math/big"
	"sort"
)

// Hashable is the canonical recursive tree every domain struct
// flattens to before hashing: Leaf(atom) | Hash(digest) | Tuple(...).
// Two values with identical canonical trees hash equal; hash(x) is
// pure and total over any tree built from this package's
// constructors.
type Hashable interface {
	flatten() []Felt
}

type leafNode struct{ v Felt }

func (l leafNode) flatten() []Felt { return []Felt{0, l.v} }

type hashNode struct{ d Digest }

func (h hashNode) flatten() []Felt {
	out := make([]Felt, 0, 5)
	out = append(out, 1)
	out = append(out, h.d[:]...)
	return out
}

type tupleNode struct{ children []Hashable }

func (t tupleNode) flatten() []Felt {
	out := []Felt{2, Felt(len(t.children))}
	for _, c := range t.children {
		out = append(out, c.flatten()...)
	}
	return out
}

// Leaf wraps a single, already-reduced field element.
func Leaf(f Felt) Hashable { return leafNode{v: f} }

// HashRef embeds a precomputed digest (e.g. a previous block's hash)
// as an opaque subtree.
func HashRef(d Digest) Hashable { return hashNode{d: d} }

// Tuple combines an ordered sequence of children into one node.
func Tuple(children ...Hashable) Hashable { return tupleNode{children: children} }

// Atom encodes an arbitrary-width unsigned integer via the based-list
// codec and wraps the resulting chunks in a Tuple, so any atom wider
// than the field (tx ids, amounts, wide names) can be hashed safely.
func Atom(n *big.Int) Hashable {
	chunks := FromAtom(n)
	children := make([]Hashable, len(chunks))
	for i, c := range chunks {
		children[i] = Leaf(c)
	}
	return Tuple(children...)
}

// BytesAtom is a convenience wrapper for a big-endian byte string
// (e.g. a 32-byte hash-shaped Name component) treated as a wide atom.
func BytesAtom(b []byte) Hashable {
	return Atom(new(big.Int).SetBytes(b))
}

// mapEntry pairs a sortable key encoding with the Hashable built from
// its (key, value) pair, used to realize tap-order (key-ascending)
// iteration, the canonical choice documented in the design notes.
type mapEntry struct {
	keyBytes []byte
	node     Hashable
}

// HashableMap builds a Tuple over the entries of a map in key-
// ascending order. Callers supply the already-built (key, value)
// Hashable pair per entry plus the raw key bytes used only for
// sorting; this keeps HashableMap agnostic to the map's Go key type.
func HashableMap(entries []struct {
	KeyBytes []byte
	Node     Hashable
}) Hashable {
	sorted := make([]mapEntry, len(entries))
	for i, e := range entries {
		sorted[i] = mapEntry{keyBytes: e.KeyBytes, node: e.Node}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return lessBytes(sorted[i].keyBytes, sorted[j].keyBytes)
	})
	children := make([]Hashable, len(sorted))
	for i, e := range sorted {
		children[i] = e.node
	}
	return Tuple(children...)
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Hash computes the TIP5 digest of a canonical Hashable tree.
func Hash(h Hashable) Digest {
	return tip5(h.flatten())
}

// --- TIP5 sponge over GF(Prime) ---
//
// State width t=16, rate r=10, capacity c=6, digest length 4. This is
// a from-scratch sponge construction in the structural idiom of the
// teacher's poseidonHash/poseidonPermutation (absorb in rate-sized
// chunks, alternate full/partial degree-7 S-box rounds, then an MDS
// mix) but with correct modular reduction throughout — the teacher's
// own accel_go.go marks its field multiplication and its Poseidon
// round structure as "simplified" stand-ins, so this reimplements the
// arithmetic properly rather than inheriting that known shortcut. No
// ecosystem Go package implements TIP5 over Goldilocks, so round
// constants here are a deterministic, domain-separated PRG rather
// than the published Triton-VM constant table; determinism and
// injectivity of the canonical encoding (the properties this kernel
// relies on) do not depend on matching those published constants.
const (
	tipStateWidth = 16
	tipRate       = 10
)

var tipRoundConstants = generateRoundConstants(8 * tipStateWidth)

func generateRoundConstants(n int) []Felt {
	out := make([]Felt, n)
	var x Felt = 0x9E3779B97F4A7C15 % Felt(Prime)
	for i := range out {
		x = x.Mul(NewFelt(0xBF58476D1CE4E5B9)).Add(NewFelt(uint64(i) + 1))
		out[i] = x
	}
	return out
}

func tipPermutation(state [tipStateWidth]Felt, round int) [tipStateWidth]Felt {
	rc := tipRoundConstants[(round*tipStateWidth)%len(tipRoundConstants):]
	for i := range state {
		state[i] = state[i].Add(rc[i%len(rc)])
	}
	if round%7 != 3 {
		// full round: degree-7 S-box on every element
		for i := range state {
			state[i] = sbox7(state[i])
		}
	} else {
		// partial round: S-box on the first element only
		state[0] = sbox7(state[0])
	}
	return mdsMix(state)
}

func sbox7(x Felt) Felt {
	x2 := x.Mul(x)
	x4 := x2.Mul(x2)
	x6 := x4.Mul(x2)
	return x6.Mul(x)
}

func mdsMix(state [tipStateWidth]Felt) [tipStateWidth]Felt {
	var out [tipStateWidth]Felt
	for i := range state {
		var acc Felt
		for j := range state {
			coeff := NewFelt(uint64((i+1)*(j+2) + 3))
			acc = acc.Add(state[j].Mul(coeff))
		}
		out[i] = acc
	}
	return out
}

func tip5(input []Felt) Digest {
	var state [tipStateWidth]Felt

	padded := make([]Felt, len(input))
	copy(padded, input)
	padded = append(padded, NewFelt(1)) // domain-separating pad bit
	for len(padded)%tipRate != 0 {
		padded = append(padded, 0)
	}

	for i := 0; i < len(padded); i += tipRate {
		for j := 0; j < tipRate; j++ {
			state[j] = state[j].Add(padded[i+j])
		}
		for r := 0; r < 12; r++ {
			state = tipPermutation(state, r)
		}
	}

	var d Digest
	copy(d[:], state[:4])
	return d
}
