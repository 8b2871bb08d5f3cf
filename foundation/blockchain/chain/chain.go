// Package chain provides the branch abstraction. A branch is an immutable
// view of the blocks from genesis to a tip, backed by the shared store.
// Applying a block produces a new view and leaves the original untouched.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/executor"
	"github.com/ardanlabs/forkchain/foundation/blockchain/storage"
)

// EventHandler defines a function that is called when events occur in the
// processing of a branch.
type EventHandler func(v string, args ...any)

// Config represents the collaborators every branch shares.
type Config struct {
	Store        *storage.Store
	Consensus    consensus.Consensus
	Executor     executor.Executor
	MiningReward uint64
	EvHandler    EventHandler
}

// Branch represents the chain of blocks ending at a tip.
type Branch struct {
	cfg  Config
	tip  database.BlockHeader
	hash string
}

// New constructs a branch view whose tip is the specified persisted block.
func New(cfg Config, tipHash string) (*Branch, error) {
	if cfg.EvHandler == nil {
		cfg.EvHandler = func(v string, args ...any) {}
	}

	tip, found, err := cfg.Store.GetHeader(tipHash)
	if err != nil {
		return nil, &StorageError{Op: "load tip", Err: err}
	}
	if !found {
		return nil, fmt.Errorf("branch tip %s not found", tipHash)
	}

	b := Branch{
		cfg:  cfg,
		tip:  tip,
		hash: tipHash,
	}

	return &b, nil
}

// TipHash returns the hash of the tip block.
func (b *Branch) TipHash() string {
	return b.hash
}

// Apply validates and executes the block on top of the tip and persists
// it. On success a new branch whose tip is the block is returned. On
// failure nothing is persisted.
func (b *Branch) Apply(ctx context.Context, block database.Block) (*Branch, error) {
	hash := block.Hash()
	ev := b.cfg.EvHandler

	ev("chain: Apply: validate: blk[%d]: check: parent hash does match tip", block.Header.Number)

	if block.Header.PrevBlockHash != b.hash {
		return nil, &ValidationError{Hash: hash, Err: fmt.Errorf("parent block hash doesn't match tip, got %s, exp %s", block.Header.PrevBlockHash, b.hash)}
	}

	ev("chain: Apply: validate: blk[%d]: check: block number is the next number", block.Header.Number)

	if nextNumber := b.tip.Number + 1; block.Header.Number != nextNumber {
		return nil, &ValidationError{Hash: hash, Err: fmt.Errorf("this block is not the next number, got %d, exp %d", block.Header.Number, nextNumber)}
	}

	ev("chain: Apply: validate: blk[%d]: check: merkle root does match transactions", block.Header.Number)

	if err := block.ValidateTransRoot(); err != nil {
		return nil, &ValidationError{Hash: hash, Err: err}
	}

	ev("chain: Apply: validate: blk[%d]: check: consensus[%s]", block.Header.Number, b.cfg.Consensus.Name())

	if err := b.cfg.Consensus.ValidateHeader(block.Header, b.tip); err != nil {
		return nil, &ValidationError{Hash: hash, Err: err}
	}

	parent, found, err := b.cfg.Store.GetState(b.tip.StateRoot)
	if err != nil {
		return nil, &StorageError{Op: "load state", Err: err}
	}
	if !found {
		return nil, &StorageError{Op: "load state", Err: fmt.Errorf("state root %s not found", b.tip.StateRoot)}
	}

	ev("chain: Apply: execute: blk[%d]: trans[%d]", block.Header.Number, len(block.Trans))

	res, err := b.cfg.Executor.Execute(ctx, parent, block.Header, block.Trans)
	if err != nil {
		return nil, &ExecutionError{Hash: hash, Err: err}
	}

	if res.StateRoot != block.Header.StateRoot {
		return nil, &ExecutionError{Hash: hash, Err: fmt.Errorf("state root does not match execution, got %s, exp %s", res.StateRoot, block.Header.StateRoot)}
	}

	for i := range res.Infos {
		res.Infos[i].BlockHash = hash
	}

	ev("chain: Apply: commit: blk[%d]: %s", block.Header.Number, hash)

	if err := b.cfg.Store.CommitBlock(block, res.Infos, res.Accounts); err != nil {
		return nil, &StorageError{Op: "commit block", Err: err}
	}

	nb := Branch{
		cfg:  b.cfg,
		tip:  block.Header,
		hash: hash,
	}

	return &nb, nil
}

// CommonAncestor walks back both branches to the most recent block they
// share.
func CommonAncestor(a *Branch, b *Branch) (database.BlockHeader, error) {
	ah, bh := a.tip, b.tip

	for ah.Hash() != bh.Hash() {
		var err error
		switch {
		case ah.Number >= bh.Number:
			ah, err = a.parent(ah)
		default:
			bh, err = b.parent(bh)
		}

		if err != nil {
			return database.BlockHeader{}, err
		}
	}

	return ah, nil
}

// BlocksAfter returns the blocks of the branch with a number greater than
// the specified number, ordered from the oldest to the tip.
func (b *Branch) BlocksAfter(number uint64) ([]database.Block, error) {
	if number >= b.tip.Number {
		return nil, nil
	}

	blocks := make([]database.Block, b.tip.Number-number)
	hash := b.hash
	for i := len(blocks) - 1; i >= 0; i-- {
		block, found, err := b.cfg.Store.GetBlockByHash(hash)
		if err != nil {
			return nil, &StorageError{Op: "load block", Err: err}
		}
		if !found {
			return nil, &StorageError{Op: "load block", Err: fmt.Errorf("block %s missing from ancestry", hash)}
		}

		blocks[i] = block
		hash = block.Header.PrevBlockHash
	}

	return blocks, nil
}

// HeadersAfter returns the headers of the branch with a number greater
// than the specified number, ordered from the oldest to the tip.
func (b *Branch) HeadersAfter(number uint64) ([]database.BlockHeader, error) {
	if number >= b.tip.Number {
		return nil, nil
	}

	headers := make([]database.BlockHeader, b.tip.Number-number)
	header := b.tip
	for i := len(headers) - 1; i >= 0; i-- {
		headers[i] = header
		if i == 0 {
			break
		}

		var err error
		if header, err = b.parent(header); err != nil {
			return nil, err
		}
	}

	return headers, nil
}

// parent returns the header of the parent of the specified header.
func (b *Branch) parent(header database.BlockHeader) (database.BlockHeader, error) {
	if header.IsGenesis() {
		return database.BlockHeader{}, errors.New("walked past genesis")
	}

	parent, found, err := b.cfg.Store.GetHeader(header.PrevBlockHash)
	if err != nil {
		return database.BlockHeader{}, &StorageError{Op: "load header", Err: err}
	}
	if !found {
		return database.BlockHeader{}, &StorageError{Op: "load header", Err: fmt.Errorf("header %s missing from ancestry", header.PrevBlockHash)}
	}

	return parent, nil
}

// headerByHash returns the header of a block that must be persisted.
func (b *Branch) headerByHash(hash string) (database.BlockHeader, bool, error) {
	header, found, err := b.cfg.Store.GetHeader(hash)
	if err != nil {
		return database.BlockHeader{}, false, &StorageError{Op: "load header", Err: err}
	}
	if !found {
		return database.BlockHeader{}, false, &StorageError{Op: "load header", Err: errNotPersisted(hash)}
	}

	return header, true, nil
}
