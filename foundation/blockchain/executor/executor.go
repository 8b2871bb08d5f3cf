// Package executor runs the transactions of a block against the account
// state of its parent and produces the new state and the receipts.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// Executor represents the behavior required to execute the transactions
// of a block. The parent state must not be changed.
type Executor interface {
	Execute(ctx context.Context, parent *accounts.Accounts, header database.BlockHeader, trans []database.BlockTx) (Result, error)
}

// Result is the outcome of executing a block.
type Result struct {
	StateRoot string
	Accounts  *accounts.Accounts
	Infos     []database.TxInfo
}

// TxError is returned when a transaction can't be part of any block, which
// makes the whole block invalid.
type TxError struct {
	Index  int
	TxHash string
	Err    error
}

// Error implements the error interface.
func (te *TxError) Error() string {
	return fmt.Sprintf("tx[%d] %s: %s", te.Index, te.TxHash, te.Err)
}

// Unwrap provides access to the underlying error.
func (te *TxError) Unwrap() error {
	return te.Err
}

// AsTxError returns the TxError found in the error chain.
func AsTxError(err error) (*TxError, bool) {
	var te *TxError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// =============================================================================

// Transfer executes value transfer transactions. The gas fee is charged
// for every transaction, and a transaction that breaks an accounting rule
// is recorded as failed rather than rejecting the block.
type Transfer struct {
	chainID uint16
}

// NewTransfer constructs a transfer executor for the specified chain.
func NewTransfer(chainID uint16) *Transfer {
	return &Transfer{
		chainID: chainID,
	}
}

// Execute applies the transactions and the mining reward to a copy of the
// parent state.
func (t *Transfer) Execute(ctx context.Context, parent *accounts.Accounts, header database.BlockHeader, trans []database.BlockTx) (Result, error) {
	act := parent.Clone()
	infos := make([]database.TxInfo, 0, len(trans))

	seen := make(map[string]struct{}, len(trans))
	for i, tx := range trans {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		txHash := tx.ID()

		if _, exists := seen[txHash]; exists {
			return Result{}, &TxError{Index: i, TxHash: txHash, Err: errors.New("duplicate transaction in block")}
		}
		seen[txHash] = struct{}{}

		if err := tx.Validate(t.chainID); err != nil {
			return Result{}, &TxError{Index: i, TxHash: txHash, Err: err}
		}

		info := database.TxInfo{
			TxHash:      txHash,
			BlockNumber: header.Number,
			Index:       uint64(i),
			Status:      database.TxApplied,
		}

		gasFee, err := act.ApplyTransaction(header.BeneficiaryID, tx)
		info.GasFee = gasFee
		if err != nil {
			info.Status = database.TxFailed
			info.Reason = err.Error()
		}

		infos = append(infos, info)
	}

	act.ApplyMiningReward(header.BeneficiaryID, header.MiningReward)

	res := Result{
		StateRoot: act.Root(),
		Accounts:  act,
		Infos:     infos,
	}

	return res, nil
}
