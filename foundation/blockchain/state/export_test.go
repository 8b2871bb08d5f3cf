package state

import (
	"context"

	"github.com/ardanlabs/forkchain/foundation/blockchain/chain"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// ApplyOnly persists the block on the branch it extends without running
// fork choice, leaving the node the way it is between the two steps of
// TryConnect.
func (s *State) ApplyOnly(ctx context.Context, block database.Block) (*chain.Branch, error) {
	branch, err := s.findOrFork(block.Header)
	if err != nil {
		return nil, err
	}

	return branch.Apply(ctx, block)
}

// SelectHead runs the second step of TryConnect for a branch returned by
// ApplyOnly.
func (s *State) SelectHead(ctx context.Context, candidate *chain.Branch, block database.Block) (Outcome, error) {
	return s.selectHead(ctx, candidate, block, true)
}
