// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSignatureRequestPreimageIsDeterministic(t *testing.T) {
	require := require.New(t)

	req := SignatureRequest{
		TxId:        TxId{1, 2, 3},
		Recipient:   EvmAddr{4, 5, 6},
		Amount:      uint256.NewInt(1_000_000),
		BlockHeight: 42,
		Nonce:       1,
	}

	require.Equal(req.Preimage(), req.Preimage())
}

func TestSignatureRequestPreimageChangesWithAmountAndHeight(t *testing.T) {
	require := require.New(t)

	base := SignatureRequest{
		TxId:        TxId{1, 2, 3},
		Recipient:   EvmAddr{4, 5, 6},
		Amount:      uint256.NewInt(1_000_000),
		BlockHeight: 42,
		Nonce:       1,
	}
	changedAmount := base
	changedAmount.Amount = uint256.NewInt(1_000_001)

	changedHeight := base
	changedHeight.BlockHeight = 43

	require.NotEqual(base.Preimage(), changedAmount.Preimage())
	require.NotEqual(base.Preimage(), changedHeight.Preimage())
}
