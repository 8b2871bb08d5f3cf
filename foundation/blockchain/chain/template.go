package chain

import (
	"context"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/executor"
)

// BlockTemplate is a proposed next block for a branch. The header still
// needs to be sealed by the consensus strategy before it can be applied.
type BlockTemplate struct {
	Block database.Block
	Infos []database.TxInfo
}

// CreateBlockTemplate builds a block on top of the tip from the candidate
// transactions without changing the branch or the store. Transactions
// that can't be part of any block are left out.
func (b *Branch) CreateBlockTemplate(ctx context.Context, beneficiaryID database.AccountID, trans []database.BlockTx) (BlockTemplate, error) {
	parent, found, err := b.cfg.Store.GetState(b.tip.StateRoot)
	if err != nil {
		return BlockTemplate{}, &StorageError{Op: "load state", Err: err}
	}
	if !found {
		return BlockTemplate{}, &StorageError{Op: "load state", Err: errNotPersisted(b.tip.StateRoot)}
	}

	header := database.BlockHeader{
		Number:        b.tip.Number + 1,
		PrevBlockHash: b.hash,
		TimeStamp:     max(uint64(time.Now().UTC().UnixMilli()), b.tip.TimeStamp+1),
		BeneficiaryID: beneficiaryID,
		Difficulty:    b.cfg.Consensus.Difficulty(b.tip),
		MiningReward:  b.cfg.MiningReward,
	}

	candidates := append([]database.BlockTx(nil), trans...)

	var res executor.Result
	for {
		res, err = b.cfg.Executor.Execute(ctx, parent, header, candidates)
		if err == nil {
			break
		}

		txErr, ok := executor.AsTxError(err)
		if !ok {
			return BlockTemplate{}, &ExecutionError{Hash: b.hash, Err: err}
		}

		b.cfg.EvHandler("chain: CreateBlockTemplate: drop tx[%s]: %s", txErr.TxHash, txErr.Err)
		candidates = append(candidates[:txErr.Index], candidates[txErr.Index+1:]...)
	}

	header.StateRoot = res.StateRoot

	block, err := database.NewBlock(header, candidates)
	if err != nil {
		return BlockTemplate{}, &ExecutionError{Hash: b.hash, Err: err}
	}

	tmpl := BlockTemplate{
		Block: block,
		Infos: res.Infos,
	}

	return tmpl, nil
}
