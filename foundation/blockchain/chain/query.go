package chain

import (
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// CurrentHeader returns the header of the tip.
func (b *Branch) CurrentHeader() database.BlockHeader {
	return b.tip
}

// HeadBlock returns the tip block.
func (b *Branch) HeadBlock() (database.Block, error) {
	block, found, err := b.GetBlock(b.hash)
	if err != nil {
		return database.Block{}, err
	}
	if !found {
		return database.Block{}, &StorageError{Op: "head block", Err: errNotPersisted(b.hash)}
	}

	return block, nil
}

// GetHeader returns the header for the specified block hash.
func (b *Branch) GetHeader(hash string) (database.BlockHeader, bool, error) {
	header, found, err := b.cfg.Store.GetHeader(hash)
	if err != nil {
		return database.BlockHeader{}, false, &StorageError{Op: "get header", Err: err}
	}

	return header, found, nil
}

// GetBlock returns the block for the specified hash.
func (b *Branch) GetBlock(hash string) (database.Block, bool, error) {
	block, found, err := b.cfg.Store.GetBlockByHash(hash)
	if err != nil {
		return database.Block{}, false, &StorageError{Op: "get block", Err: err}
	}

	return block, found, nil
}

// GetHeaderByNumber returns the header at the specified number along
// this branch's ancestry. The walk stops at the first block that is on the
// head chain, from there the number index answers.
func (b *Branch) GetHeaderByNumber(number uint64) (database.BlockHeader, bool, error) {
	if number > b.tip.Number {
		return database.BlockHeader{}, false, nil
	}

	header, hash := b.tip, b.hash
	for header.Number > number {
		canonical, onHead, err := b.cfg.Store.CanonicalHash(hash, header.Number, number)
		if err != nil {
			return database.BlockHeader{}, false, &StorageError{Op: "canonical hash", Err: err}
		}
		if onHead {
			return b.headerByHash(canonical)
		}

		hash = header.PrevBlockHash
		if header, err = b.parent(header); err != nil {
			return database.BlockHeader{}, false, err
		}
	}

	return header, true, nil
}

// GetBlockByNumber returns the block at the specified number along this
// branch's ancestry.
func (b *Branch) GetBlockByNumber(number uint64) (database.Block, bool, error) {
	header, found, err := b.GetHeaderByNumber(number)
	if err != nil || !found {
		return database.Block{}, false, err
	}

	return b.GetBlock(header.Hash())
}

// Contains reports if the block with the specified hash is part of this
// branch's ancestry.
func (b *Branch) Contains(hash string) (bool, error) {
	header, found, err := b.GetHeader(hash)
	if err != nil || !found {
		return false, err
	}

	onBranch, found, err := b.GetHeaderByNumber(header.Number)
	if err != nil || !found {
		return false, err
	}

	return onBranch.Hash() == hash, nil
}

// GetTransactionInfo returns the receipt for the specified transaction from
// the block on this branch that includes it.
func (b *Branch) GetTransactionInfo(txHash string) (database.TxInfo, bool, error) {
	infos, err := b.cfg.Store.GetTxInfos(txHash)
	if err != nil {
		return database.TxInfo{}, false, &StorageError{Op: "get tx infos", Err: err}
	}

	for _, info := range infos {
		onBranch, err := b.Contains(info.BlockHash)
		if err != nil {
			return database.TxInfo{}, false, err
		}

		if onBranch {
			return info, true, nil
		}
	}

	return database.TxInfo{}, false, nil
}

// GetTransaction returns the specified transaction if it's included in a
// block on this branch.
func (b *Branch) GetTransaction(txHash string) (database.BlockTx, bool, error) {
	info, found, err := b.GetTransactionInfo(txHash)
	if err != nil || !found {
		return database.BlockTx{}, false, err
	}

	block, found, err := b.GetBlock(info.BlockHash)
	if err != nil || !found {
		return database.BlockTx{}, false, err
	}

	if info.Index >= uint64(len(block.Trans)) {
		return database.BlockTx{}, false, nil
	}

	return block.Trans[info.Index], true, nil
}

// ChainStateReader returns a view of the account state at the tip.
func (b *Branch) ChainStateReader() StateView {
	return NewStateView(b.cfg.Store, b.tip.StateRoot)
}
