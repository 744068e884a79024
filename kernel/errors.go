// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import "fmt"

// StopError is the one shape every fatal condition in the kernel
// takes: a human-readable reason. The dispatcher attaches the current
// checkpoint when it turns the error into a Stop effect. It is never
// recovered from inside the kernel once surfaced — only an explicit
// Start cause clears the resulting stop.
type StopError struct {
	Reason string
}

func (e *StopError) Error() string { return e.Reason }

func stopf(format string, args ...any) *StopError {
	return &StopError{Reason: fmt.Sprintf(format, args...)}
}

// Error taxonomy. Each sentinel corresponds to one row of the
// table; handlers pass these through stopf, and the height check also
// appends the expected and received heights.
var (
	// Driver malfunction
	ErrTxIDMismatch     = "tx-ids mismatch"
	ErrHeightMismatch   = "received block with height not equal to next height"
	ErrChunkSizeWrong   = "base chunk size does not match configured chunk size"
	ErrBatchHeightWrong = "base batch first_height does not equal base_next_height"

	// Reorg
	ErrNockReorg = "hashchain reorg"
	ErrBaseReorg = "base batch parent does not match prior batch's last block"

	// Policy violation
	ErrWithdrawalDetected      = "fatal: withdrawal tx detected on nock chain"
	ErrWithdrawalSettlement    = "withdrawal settlement detected but withdrawals are not permitted"
	ErrBridgeNodeUpdatedUnsupp = "BridgeNodeUpdated base event is not yet implemented"

	// Proposal malfeasance
	ErrProposalNonceTooHigh  = "nonce in proposed base call is greater than or equal to next-nonce"
	ErrProposalUnknownDeposit = "proposed deposit not in unsettled-deposits"
	ErrDoubleProposal         = "encountered double proposal for deposit"

	// Settlement malfeasance
	ErrSettlementNonceTooHigh = "nonce in deposit settlement is not less than next nonce"
	ErrSettlementAbsentDeposit = "deposit settlement references a deposit absent from either ledger quadrant"
	ErrSettlementMismatch      = "deposit settlement amount or destination does not match the recorded deposit"

	// Internal invariant failure
	ErrInvariantViolation = "internal invariant violation"
)
