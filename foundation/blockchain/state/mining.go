package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be mined
// and there are no transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// MineNewBlock builds a template on the head from the mempool, seals it
// with the configured consensus and connects it like any other block. The
// broadcaster learns about the block through the head change.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	tmpl, err := s.CreateBlockTemplate(ctx)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: seal blk[%d]: trans[%d]", tmpl.Block.Header.Number, len(tmpl.Block.Trans))

	header, err := s.chainCfg.Consensus.Seal(ctx, tmpl.Block.Header, consensus.EventHandler(s.evHandler))
	if err != nil {
		return database.Block{}, err
	}

	block := database.Block{
		Header: header,
		Trans:  tmpl.Block.Trans,
	}

	outcome, err := s.TryConnect(ctx, block)
	if err != nil {
		return database.Block{}, err
	}

	if !outcome.HeadChanged() {
		return database.Block{}, fmt.Errorf("mined blk[%d] didn't become the head: %s", header.Number, outcome)
	}

	s.evHandler("viewer: mined: blk[%d]: %s", header.Number, block.Hash())

	return block, nil
}
