// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFeltReducesOutOfRangeValues(t *testing.T) {
	require := require.New(t)

	require.Equal(Felt(0), NewFelt(Prime))
	require.Equal(Felt(5), NewFelt(Prime+5))
	require.True(NewFelt(Prime + 5).Valid())
}

func TestFeltArithmeticWrapsModPrime(t *testing.T) {
	require := require.New(t)

	a := NewFelt(Prime - 1)
	b := NewFelt(2)

	require.Equal(Felt(1), a.Add(b))
	require.Equal(Felt(Prime-3), a.Sub(b))
	require.True(a.Mul(b).Valid())
}

func TestFeltPowMatchesRepeatedMul(t *testing.T) {
	require := require.New(t)

	f := NewFelt(12345)
	want := f.Mul(f).Mul(f)
	require.Equal(want, f.Pow(3))
}
