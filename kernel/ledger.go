// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"sort"

	"github.com/luxfi/bridgekernel/utils/wrappers"
)

// Ledger is the compound-key map described by the design notes'
// "z-mip" construct: a map keyed by (outer, inner) where both put and
// del accept the pair. This implementation takes the second of the
// two options the spec allows — a single map keyed by the pair,
// rather than a map-of-maps — since this kernel needs no range scan
// over the outer component.
type Ledger[V any] struct {
	m map[string]V
}

// NewLedger returns an empty Ledger.
func NewLedger[V any]() *Ledger[V] {
	return &Ledger[V]{m: make(map[string]V)}
}

// Put inserts or overwrites the value at key k.
func (l *Ledger[V]) Put(k string, v V) {
	l.m[k] = v
}

// Get retrieves the value at key k.
func (l *Ledger[V]) Get(k string) (V, bool) {
	v, ok := l.m[k]
	return v, ok
}

// Has reports whether key k is present.
func (l *Ledger[V]) Has(k string) bool {
	_, ok := l.m[k]
	return ok
}

// Del removes key k, if present.
func (l *Ledger[V]) Del(k string) {
	delete(l.m, k)
}

// Count returns the number of entries.
func (l *Ledger[V]) Count() int {
	return len(l.m)
}

// Keys returns every key in ascending byte order — the tap order this
// kernel uses for any map that must be canonically hashed or
// deterministically iterated.
func (l *Ledger[V]) Keys() []string {
	keys := make([]string, 0, len(l.m))
	for k := range l.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy whose backing map is independent of
// the receiver's, so a failed advance can discard its working copy
// and leave the original ledger untouched (full rollback on Stop).
func (l *Ledger[V]) Clone() *Ledger[V] {
	out := NewLedger[V]()
	for k, v := range l.m {
		out.m[k] = v
	}
	return out
}

// depositKey builds the compound ledger key for a deposit indexed by
// (Nock block structural hash, note name).
func depositKey(block NockHash, name Name) string {
	bb := Digest(block).Bytes()
	fb := Digest(name.First).Bytes()
	lb := Digest(name.Last).Bytes()
	size := len(bb) + len(fb) + len(lb)
	p := wrappers.Packer{Bytes: make([]byte, 0, size), MaxSize: size}
	p.PackFixedBytes(bb)
	p.PackFixedBytes(fb)
	p.PackFixedBytes(lb)
	return string(p.Bytes)
}

// withdrawalKey builds the compound ledger key for a withdrawal
// indexed by (Base block batch hash, Base event id).
func withdrawalKey(block BaseHash, event BaseEventId) string {
	bb := Digest(block).Bytes()
	eb := basedListKeyBytes(BasedList(event))
	size := len(bb) + len(eb)
	p := wrappers.Packer{Bytes: make([]byte, 0, size), MaxSize: size}
	p.PackFixedBytes(bb)
	p.PackFixedBytes(eb)
	return string(p.Bytes)
}
