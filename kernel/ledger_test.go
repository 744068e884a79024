// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerPutGetHasDel(t *testing.T) {
	require := require.New(t)

	l := NewLedger[int]()
	require.False(l.Has("a"))

	l.Put("a", 1)
	v, ok := l.Get("a")
	require.True(ok)
	require.Equal(1, v)
	require.Equal(1, l.Count())

	l.Del("a")
	require.False(l.Has("a"))
	require.Equal(0, l.Count())
}

func TestLedgerKeysAreAscending(t *testing.T) {
	require := require.New(t)

	l := NewLedger[int]()
	l.Put("c", 3)
	l.Put("a", 1)
	l.Put("b", 2)

	require.Equal([]string{"a", "b", "c"}, l.Keys())
}

func TestLedgerCloneIsIndependent(t *testing.T) {
	require := require.New(t)

	l := NewLedger[int]()
	l.Put("a", 1)

	clone := l.Clone()
	clone.Put("b", 2)

	require.Equal(1, l.Count())
	require.Equal(2, clone.Count())
}
