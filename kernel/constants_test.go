// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConstantsValidate(t *testing.T) {
	require := require.New(t)
	require.NoError(DefaultConstants().Validate())
}

func TestValidateRejectsBadVersion(t *testing.T) {
	require := require.New(t)
	c := DefaultConstants()
	c.Version = 1
	require.ErrorIs(c.Validate(), ErrBadVersion)
}

func TestValidateRejectsBadSignerThresholds(t *testing.T) {
	require := require.New(t)

	c := DefaultConstants()
	c.MinSigners = 0
	require.ErrorIs(c.Validate(), ErrBadSignerThresholds)

	c = DefaultConstants()
	c.MinSigners = c.TotalSigners + 1
	require.ErrorIs(c.Validate(), ErrBadSignerThresholds)
}

func TestValidateRejectsZeroMinimumEventOrChunk(t *testing.T) {
	require := require.New(t)

	c := DefaultConstants()
	c.MinimumEventNocks = 0
	require.ErrorIs(c.Validate(), ErrBadMinimumEvent)

	c = DefaultConstants()
	c.BaseBlocksChunk = 0
	require.ErrorIs(c.Validate(), ErrBadChunkSize)
}

func TestCalculateFeeRoundsUpToWholeNockUnits(t *testing.T) {
	require := require.New(t)

	require.Equal(uint64(195), CalculateFee(1, DefaultNicksFeePerNock))
	require.Equal(uint64(195), CalculateFee(NicksPerNock, DefaultNicksFeePerNock))
	require.Equal(uint64(390), CalculateFee(NicksPerNock+1, DefaultNicksFeePerNock))
}
