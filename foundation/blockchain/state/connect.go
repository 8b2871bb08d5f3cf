package state

import (
	"context"

	"github.com/ardanlabs/forkchain/foundation/blockchain/chain"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// TryConnect takes a block from the network or a miner and tries to add it
// to the chain. A block that is already known is ignored. A block whose
// parent is unknown is kept in the orphan pool when one is configured.
// Otherwise the block is applied to the branch it extends and fork choice
// decides if that branch becomes the head.
func (s *State) TryConnect(ctx context.Context, block database.Block) (Outcome, error) {
	outcome, err := s.connect(ctx, block)
	recordOutcome(outcome, err)

	if err != nil {
		return outcome, err
	}

	switch outcome {
	case OutcomeOrphan:
		// The parent may have been persisted after the check in connect
		// and before the block was pooled.
		if exists, err := s.store.HasBlock(block.Header.PrevBlockHash); err == nil && exists {
			s.connectOrphans(ctx, block.Header.PrevBlockHash)
		}

	default:
		// A duplicate can still be the parent of pooled blocks when its
		// child reached fork choice first.
		s.connectOrphans(ctx, block.Hash())
	}

	return outcome, nil
}

// connect does the work for a single block.
func (s *State) connect(ctx context.Context, block database.Block) (Outcome, error) {
	hash := block.Hash()

	s.evHandler("state: connect: blk[%d]: %s", block.Header.Number, hash)

	exists, err := s.store.HasBlock(hash)
	if err != nil {
		return OutcomeDuplicate, &chain.StorageError{Op: "has block", Err: err}
	}
	if exists {
		s.evHandler("state: connect: blk[%d]: duplicate", block.Header.Number)
		return OutcomeDuplicate, nil
	}

	parentExists, err := s.store.HasBlock(block.Header.PrevBlockHash)
	if err != nil {
		return OutcomeDuplicate, &chain.StorageError{Op: "has block", Err: err}
	}
	if !parentExists {
		s.addOrphan(block)
		return OutcomeOrphan, nil
	}

	branch, err := s.findOrFork(block.Header)
	if err != nil {
		return OutcomeDuplicate, err
	}

	// Once started the apply runs to completion or failure. A cancelled
	// caller must not turn into a failed execution.
	next, err := branch.Apply(context.WithoutCancel(ctx), block)
	if err != nil {
		s.evHandler("state: connect: blk[%d]: ERROR: %s", block.Header.Number, err)
		return OutcomeDuplicate, err
	}

	// The block is persisted so fork choice must run even if the caller
	// gives up now.
	return s.selectHead(context.WithoutCancel(ctx), next, block, true)
}

// findOrFork returns the branch whose tip is the parent of the header. The
// head is searched first, then the side branches. When the parent is in
// the middle of a branch, a new branch is forked at the parent.
func (s *State) findOrFork(header database.BlockHeader) (*chain.Branch, error) {
	snap := s.current()
	parent := header.PrevBlockHash

	if snap.head.TipHash() == parent {
		return snap.head, nil
	}
	if branch, exists := snap.branches[parent]; exists {
		return branch, nil
	}

	onHead, err := snap.head.Contains(parent)
	if err != nil {
		return nil, err
	}
	if onHead {
		s.evHandler("state: findOrFork: blk[%d]: fork from head at %s", header.Number, parent)
		return chain.New(s.chainCfg, parent)
	}

	for tip, branch := range snap.branches {
		onBranch, err := branch.Contains(parent)
		if err != nil {
			return nil, err
		}
		if onBranch {
			s.evHandler("state: findOrFork: blk[%d]: fork from branch %s at %s", header.Number, tip, parent)
			return chain.New(s.chainCfg, parent)
		}
	}

	// The parent is persisted but no tracked branch leads to it. That's a
	// branch that lost fork choice earlier and is growing again.
	s.evHandler("state: findOrFork: blk[%d]: fork from untracked block %s", header.Number, parent)
	return chain.New(s.chainCfg, parent)
}

// =============================================================================

// addOrphan keeps a block whose parent hasn't arrived yet.
func (s *State) addOrphan(block database.Block) {
	if s.orphans == nil {
		s.evHandler("state: addOrphan: blk[%d]: parent %s unknown: dropped", block.Header.Number, block.Header.PrevBlockHash)
		return
	}

	s.orphans.Add(block.Hash(), block)
	orphanPool.Set(float64(s.orphans.Len()))

	s.evHandler("state: addOrphan: blk[%d]: parent %s unknown: pooled[%d]", block.Header.Number, block.Header.PrevBlockHash, s.orphans.Len())
}

// connectOrphans retries every pooled block that was waiting for the
// specified block, and then the blocks waiting for those.
func (s *State) connectOrphans(ctx context.Context, hash string) {
	if s.orphans == nil {
		return
	}

	parents := []string{hash}
	for len(parents) > 0 {
		parent := parents[0]
		parents = parents[1:]

		for _, key := range s.orphans.Keys() {
			block, exists := s.orphans.Peek(key)
			if !exists || block.Header.PrevBlockHash != parent {
				continue
			}
			s.orphans.Remove(key)

			outcome, err := s.connect(ctx, block)
			recordOutcome(outcome, err)
			if err != nil {
				s.evHandler("state: connectOrphans: blk[%d]: ERROR: %s", block.Header.Number, err)
				continue
			}

			parents = append(parents, key)
		}
	}

	orphanPool.Set(float64(s.orphans.Len()))
}
